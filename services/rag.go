package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fincore-assistant/internal/logger"
	"fincore-assistant/internal/store"
	"fincore-assistant/internal/telemetry"
	"fincore-assistant/models"
)

const systemPrompt = `You are the assistant of a loan management platform. Answer questions about accounts, loan products, active loans and portfolio performance using only the provided context. Be concise and factual. If the context does not contain the information needed, say so instead of guessing. Amounts must be quoted exactly as given in the context.`

// liveFetchLimit bounds how many records a query-time live fetch pulls.
const liveFetchLimit = 10

// Completer generates a natural-language answer from a prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LiveSource is the slice of the financial-core client used for query-time
// augmentation.
type LiveSource interface {
	EntitySource
	FetchOverdue(ctx context.Context) ([]models.Entity, error)
	PortfolioSummary(ctx context.Context) (*models.PortfolioSummary, error)
}

// RAGService answers natural-language queries by combining retrieved mirror
// documents with freshly fetched financial-core data.
type RAGService struct {
	search    *SearchEngine
	source    LiveSource
	completer Completer
	store     store.Store
	rdb       *redis.Client
	metrics   *telemetry.Metrics

	topK         int
	contextLimit int
	cacheTTL     time.Duration
}

func NewRAGService(search *SearchEngine, source LiveSource, completer Completer, st store.Store, rdb *redis.Client, metrics *telemetry.Metrics, topK, contextLimit int, cacheTTL time.Duration) *RAGService {
	if topK <= 0 {
		topK = 5
	}
	if contextLimit <= 0 {
		contextLimit = DefaultContextCharLimit
	}
	return &RAGService{
		search:       search,
		source:       source,
		completer:    completer,
		store:        st,
		rdb:          rdb,
		metrics:      metrics,
		topK:         topK,
		contextLimit: contextLimit,
		cacheTTL:     cacheTTL,
	}
}

// Answer runs the full retrieval-augmentation pipeline for one query.
// A completion failure is fatal to the call; everything else degrades.
func (r *RAGService) Answer(ctx context.Context, query, userID string) (*models.QueryResponse, error) {
	start := time.Now()

	if cached := r.cacheLookup(ctx, query); cached != nil {
		if r.metrics != nil {
			r.metrics.RecordQuery(time.Since(start).Seconds(), "ok", true)
		}
		return cached, nil
	}

	// Retrieval is best-effort: with the mirror unavailable the model still
	// sees the live data and the question itself.
	results, err := r.search.Search(ctx, query, r.topK)
	if err != nil {
		logger.Warn("Similarity search failed, answering without retrieval", "error", err)
		results = nil
	}

	liveBlocks, liveData := r.fetchLiveData(ctx, ClassifyIntents(query))

	contextText := BuildContext(results, liveBlocks, r.contextLimit)

	userPrompt := buildUserPrompt(contextText, query)
	answer, err := r.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordQuery(time.Since(start).Seconds(), "error", false)
		}
		return nil, fmt.Errorf("could not generate a response: %w", err)
	}

	elapsed := time.Since(start)

	resp := &models.QueryResponse{
		Answer:         answer,
		Sources:        sourceRefs(results),
		LiveData:       liveData,
		ResponseTimeMs: elapsed.Milliseconds(),
		Timestamp:      time.Now(),
	}

	r.logQuery(ctx, userID, query, resp)
	r.cacheStore(ctx, query, resp)

	if r.metrics != nil {
		r.metrics.RecordQuery(elapsed.Seconds(), "ok", false)
	}
	return resp, nil
}

func buildUserPrompt(contextText, query string) string {
	var b strings.Builder
	if contextText != "" {
		b.WriteString("Context:\n\n")
		b.WriteString(contextText)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

func sourceRefs(results []models.SearchResult) []models.SourceRef {
	refs := make([]models.SourceRef, 0, len(results))
	for _, res := range results {
		refs = append(refs, models.SourceRef{
			ExternalID:   res.Document.ExternalID,
			DocumentType: res.Document.DocumentType,
			Title:        res.Document.Title,
			Score:        res.Score,
		})
	}
	return refs
}

// fetchLiveData executes the router's directives. Each failed fetch is
// logged and skipped; the remaining directives still contribute.
func (r *RAGService) fetchLiveData(ctx context.Context, directives []LiveFetch) ([]LiveBlock, map[string]any) {
	if len(directives) == 0 {
		return nil, nil
	}

	var blocks []LiveBlock
	liveData := make(map[string]any)

	for _, directive := range directives {
		switch directive {
		case FetchAccounts:
			r.appendEntities(ctx, directive, "Accounts", &blocks, liveData, func(ctx context.Context) ([]models.Entity, error) {
				return r.source.FetchPage(ctx, models.CategoryAccounts, 0, liveFetchLimit)
			})
		case FetchProducts:
			r.appendEntities(ctx, directive, "Loan Products", &blocks, liveData, func(ctx context.Context) ([]models.Entity, error) {
				return r.source.FetchPage(ctx, models.CategoryProducts, 0, liveFetchLimit)
			})
		case FetchActiveLoans:
			r.appendEntities(ctx, directive, "Active Loans", &blocks, liveData, func(ctx context.Context) ([]models.Entity, error) {
				return r.source.FetchPage(ctx, models.CategoryLoans, 0, liveFetchLimit)
			})
		case FetchOverdueLoans:
			r.appendEntities(ctx, directive, "Overdue Loans", &blocks, liveData, r.source.FetchOverdue)
		case FetchPortfolioSummary:
			summary, err := r.source.PortfolioSummary(ctx)
			if err != nil {
				logger.Warn("Live fetch failed", "directive", string(directive), "error", err)
				continue
			}
			blocks = append(blocks, LiveBlock{Label: "Portfolio Summary", Content: RenderPortfolioSummary(summary)})
			liveData[string(directive)] = summary
		}
	}

	if len(liveData) == 0 {
		return blocks, nil
	}
	return blocks, liveData
}

func (r *RAGService) appendEntities(ctx context.Context, directive LiveFetch, label string, blocks *[]LiveBlock, liveData map[string]any, fetch func(context.Context) ([]models.Entity, error)) {
	entities, err := fetch(ctx)
	if err != nil {
		logger.Warn("Live fetch failed", "directive", string(directive), "error", err)
		return
	}

	var b strings.Builder
	raw := make([]map[string]any, 0, len(entities))
	for i, entity := range entities {
		_, content, err := RenderEntity(entity)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, content)
		raw = append(raw, entity.Raw)
	}
	if b.Len() == 0 {
		return
	}

	*blocks = append(*blocks, LiveBlock{Label: label, Content: strings.TrimRight(b.String(), "\n")})
	liveData[string(directive)] = raw
}

// logQuery writes the analytics record. A failure here must never surface
// to the caller.
func (r *RAGService) logQuery(ctx context.Context, userID, query string, resp *models.QueryResponse) {
	entry := &models.QueryLog{
		CorrelationID:  uuid.NewString(),
		UserID:         userID,
		Query:          query,
		LiveData:       resp.LiveData,
		Answer:         resp.Answer,
		ResponseTimeMs: resp.ResponseTimeMs,
		CreatedAt:      time.Now(),
	}
	if err := r.store.AppendQueryLog(ctx, entry); err != nil {
		logger.Error("Failed to write query log", "error", err)
	}
}

func answerCacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "assistant:answer:" + hex.EncodeToString(sum[:])
}

func (r *RAGService) cacheLookup(ctx context.Context, query string) *models.QueryResponse {
	if r.rdb == nil || r.cacheTTL <= 0 {
		return nil
	}

	payload, err := r.rdb.Get(ctx, answerCacheKey(query)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Answer cache lookup failed", "error", err)
		}
		return nil
	}

	var resp models.QueryResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil
	}
	resp.Cached = true
	return &resp
}

func (r *RAGService) cacheStore(ctx context.Context, query string, resp *models.QueryResponse) {
	if r.rdb == nil || r.cacheTTL <= 0 {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, answerCacheKey(query), payload, r.cacheTTL).Err(); err != nil {
		logger.Warn("Answer cache store failed", "error", err)
	}
}
