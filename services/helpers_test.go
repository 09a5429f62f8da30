package services

import (
	"context"
	"errors"
	"fmt"

	"fincore-assistant/internal/store"
	"fincore-assistant/models"
)

// fakeEmbedder returns canned vectors for known texts and a fallback vector
// for everything else.
type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	if f.fallback != nil {
		return f.fallback, nil
	}
	return []float32{1, 0, 0}, nil
}

// fakeSource serves scripted entity pages per category.
type fakeSource struct {
	pages   map[string][][]models.Entity
	errs    map[string]error
	overdue []models.Entity
	summary *models.PortfolioSummary
	healthy bool
}

func (f *fakeSource) FetchPage(ctx context.Context, category string, offset, limit int) ([]models.Entity, error) {
	if err := f.errs[category]; err != nil {
		return nil, err
	}
	pages := f.pages[category]
	page := offset / limit
	if page >= len(pages) {
		return nil, nil
	}
	return pages[page], nil
}

func (f *fakeSource) FetchOverdue(ctx context.Context) ([]models.Entity, error) {
	if err := f.errs["overdue"]; err != nil {
		return nil, err
	}
	return f.overdue, nil
}

func (f *fakeSource) PortfolioSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	if f.summary == nil {
		return nil, errors.New("no summary")
	}
	return f.summary, nil
}

func (f *fakeSource) HealthCheck(ctx context.Context) bool {
	return f.healthy
}

// fakeCompleter echoes a canned answer or fails.
type fakeCompleter struct {
	answer string
	err    error

	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// failingLogStore wraps a Store and fails every query log write.
type failingLogStore struct {
	store.Store
}

func (f *failingLogStore) AppendQueryLog(ctx context.Context, entry *models.QueryLog) error {
	return errors.New("log sink down")
}

func accountEntity(id, name string) models.Entity {
	return models.Entity{
		ID:       id,
		Category: models.CategoryAccounts,
		Account: &models.Account{
			ID:            id,
			DisplayName:   name,
			AccountNumber: "AC-" + id,
			Status:        "active",
			Balance:       100,
		},
		Raw: map[string]any{"id": id, "displayName": name},
	}
}

func loanEntity(id string, arrears int) models.Entity {
	return models.Entity{
		ID:       id,
		Category: models.CategoryLoans,
		Loan: &models.Loan{
			ID:            id,
			AccountName:   "Holder " + id,
			ProductName:   "Working Capital",
			Principal:     5000,
			Outstanding:   2500,
			InterestRate:  12.5,
			Status:        "active",
			DaysInArrears: arrears,
		},
		Raw: map[string]any{"id": id},
	}
}

func seedDocument(st *store.MemoryStore, externalID, docType, title string, embedding []float32) {
	doc := &models.IndexedDocument{
		ExternalID:   externalID,
		DocumentType: docType,
		Title:        title,
		Content:      fmt.Sprintf("Content for %s", title),
		Embedding:    embedding,
	}
	if err := st.UpsertDocument(context.Background(), doc); err != nil {
		panic(err)
	}
}
