package services

import (
	"fmt"
	"strings"

	"fincore-assistant/models"
)

// DefaultContextCharLimit is the soft cap on assembled context, sized to the
// completion model's prompt budget.
const DefaultContextCharLimit = 12000

// LiveBlock is one pre-rendered piece of live financial-core data.
type LiveBlock struct {
	Label   string
	Content string
}

// BuildContext merges ranked retrieval results and live data into the single
// text blob handed to the completion model. When the cap is exceeded, the
// lowest-ranked search results are dropped whole; records are never cut
// mid-block and live data always survives.
func BuildContext(results []models.SearchResult, live []LiveBlock, charLimit int) string {
	if charLimit <= 0 {
		charLimit = DefaultContextCharLimit
	}

	docBlocks := make([]string, 0, len(results))
	for i, r := range results {
		docBlocks = append(docBlocks, fmt.Sprintf("Document %d: %s\n%s", i+1, r.Document.Title, r.Document.Content))
	}

	liveBlocks := make([]string, 0, len(live))
	for i, l := range live {
		liveBlocks = append(liveBlocks, fmt.Sprintf("Live Data %d (%s):\n%s", i+1, l.Label, l.Content))
	}

	for len(docBlocks) > 0 && totalLen(docBlocks)+totalLen(liveBlocks) > charLimit {
		docBlocks = docBlocks[:len(docBlocks)-1]
	}

	var b strings.Builder
	for _, block := range docBlocks {
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	for _, block := range liveBlocks {
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func totalLen(blocks []string) int {
	n := 0
	for _, b := range blocks {
		n += len(b) + 2 // separator
	}
	return n
}
