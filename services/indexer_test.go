package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fincore-assistant/internal/store"
	"fincore-assistant/models"
)

func TestIndexAllSkipsEntitiesWithoutIdentifier(t *testing.T) {
	broken := accountEntity("", "No ID")
	broken.ID = ""

	source := &fakeSource{
		pages: map[string][][]models.Entity{
			models.CategoryAccounts: {{accountEntity("a1", "Alice"), broken, accountEntity("a2", "Bob")}},
		},
	}
	st := store.NewMemoryStore()
	ix := NewIndexer(source, &fakeEmbedder{}, st, 100, nil)

	report, err := ix.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("index run failed: %v", err)
	}
	if report.Indexed != 2 {
		t.Errorf("expected 2 indexed, got %d", report.Indexed)
	}
	if report.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", report.Skipped)
	}
	if st.DocumentCount() != 2 {
		t.Errorf("expected 2 documents in store, got %d", st.DocumentCount())
	}
}

func TestIndexAllCategoryFailureIsolation(t *testing.T) {
	source := &fakeSource{
		pages: map[string][][]models.Entity{
			models.CategoryAccounts: {{accountEntity("a1", "Alice")}},
			models.CategoryLoans:    {{loanEntity("l1", 0)}},
		},
		errs: map[string]error{
			models.CategoryProducts: errors.New("fincore: 503"),
		},
	}
	st := store.NewMemoryStore()
	ix := NewIndexer(source, &fakeEmbedder{}, st, 100, nil)

	report, err := ix.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("run must survive a single category failure: %v", err)
	}
	if len(report.FailedCategories) != 1 || report.FailedCategories[0] != models.CategoryProducts {
		t.Errorf("expected products category reported failed, got %v", report.FailedCategories)
	}
	if report.Indexed != 2 {
		t.Errorf("expected the other categories indexed, got %d", report.Indexed)
	}
}

func TestIndexAllAllCategoriesFailed(t *testing.T) {
	source := &fakeSource{
		errs: map[string]error{
			models.CategoryAccounts: errors.New("down"),
			models.CategoryProducts: errors.New("down"),
			models.CategoryLoans:    errors.New("down"),
		},
	}
	ix := NewIndexer(source, &fakeEmbedder{}, store.NewMemoryStore(), 100, nil)

	if _, err := ix.IndexAll(context.Background()); err == nil {
		t.Fatal("expected error when every category fails")
	}
}

func TestIndexAllUpsertsInPlace(t *testing.T) {
	source := &fakeSource{
		pages: map[string][][]models.Entity{
			models.CategoryAccounts: {{accountEntity("a1", "Alice")}},
		},
	}
	st := store.NewMemoryStore()
	ix := NewIndexer(source, &fakeEmbedder{}, st, 100, nil)

	if _, err := ix.IndexAll(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Same entity comes back renamed; the mirror must update, not duplicate.
	source.pages[models.CategoryAccounts] = [][]models.Entity{{accountEntity("a1", "Alice Renamed")}}
	if _, err := ix.IndexAll(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if st.DocumentCount() != 1 {
		t.Fatalf("expected 1 document after re-index, got %d", st.DocumentCount())
	}
	docs, _ := st.ListWithEmbeddings(context.Background())
	if !strings.Contains(docs[0].Content, "Alice Renamed") {
		t.Errorf("content not updated on re-index: %q", docs[0].Content)
	}
}

func TestIndexAllPaginates(t *testing.T) {
	source := &fakeSource{
		pages: map[string][][]models.Entity{
			models.CategoryAccounts: {
				{accountEntity("a1", "One"), accountEntity("a2", "Two")},
				{accountEntity("a3", "Three")},
			},
		},
	}
	st := store.NewMemoryStore()
	ix := NewIndexer(source, &fakeEmbedder{}, st, 2, nil)

	report, err := ix.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("index run failed: %v", err)
	}
	if report.Indexed != 3 {
		t.Errorf("expected all pages consumed (3 indexed), got %d", report.Indexed)
	}
}

func TestIndexAllEmbeddingFailureContinuesBatch(t *testing.T) {
	failing := &fakeEmbedder{
		vectors: map[string][]float32{},
	}
	// Fail only the entity whose content mentions Bob.
	failingWrapper := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Bob") {
			return nil, errors.New("embedding provider error")
		}
		return failing.Embed(ctx, text)
	})

	source := &fakeSource{
		pages: map[string][][]models.Entity{
			models.CategoryAccounts: {{accountEntity("a1", "Alice"), accountEntity("a2", "Bob"), accountEntity("a3", "Carol")}},
		},
	}
	st := store.NewMemoryStore()
	ix := NewIndexer(source, failingWrapper, st, 100, nil)

	report, err := ix.IndexAll(context.Background())
	if err != nil {
		t.Fatalf("index run failed: %v", err)
	}
	if report.Indexed != 2 || report.Failed != 1 {
		t.Errorf("expected 2 indexed / 1 failed, got %d / %d", report.Indexed, report.Failed)
	}
}

func TestIndexNowRefusesOverlap(t *testing.T) {
	ix := NewIndexer(&fakeSource{}, &fakeEmbedder{}, store.NewMemoryStore(), 100, nil)

	ix.running.Lock()
	defer ix.running.Unlock()

	if _, err := ix.IndexNow(context.Background()); !errors.Is(err, ErrIndexInProgress) {
		t.Fatalf("expected ErrIndexInProgress, got %v", err)
	}
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
