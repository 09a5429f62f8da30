// Package fincore is the HTTP client for the external financial core system.
// It is the entity source of the document mirror and of query-time live
// fetches. Transport errors are returned as-is; retry policy is owned by the
// callers (the next scheduled run, not inline).
package fincore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"fincore-assistant/internal/config"
	"fincore-assistant/internal/logger"
	"fincore-assistant/models"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.FincoreTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "FincoreAPI",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: cfg.FincoreBaseURL,
		apiKey:  cfg.FincoreAPIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

func categoryPath(category string) (string, error) {
	switch category {
	case models.CategoryAccounts:
		return "/accounts", nil
	case models.CategoryProducts:
		return "/loan-products", nil
	case models.CategoryLoans:
		return "/loans", nil
	}
	return "", fmt.Errorf("unknown entity category: %s", category)
}

// FetchPage returns one page of entities for the given category.
func (c *Client) FetchPage(ctx context.Context, category string, offset, limit int) ([]models.Entity, error) {
	path, err := categoryPath(category)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s%s?offset=%d&limit=%d", c.baseURL, path, offset, limit)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page failed: %w", category, err)
	}

	return decodeEntities(category, body)
}

// FetchOverdue returns loans currently in arrears, regardless of paging.
func (c *Client) FetchOverdue(ctx context.Context) ([]models.Entity, error) {
	body, err := c.get(ctx, c.baseURL+"/loans/overdue")
	if err != nil {
		return nil, fmt.Errorf("fetch overdue loans failed: %w", err)
	}
	return decodeEntities(models.CategoryLoans, body)
}

// PortfolioSummary returns the aggregate portfolio report.
func (c *Client) PortfolioSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	body, err := c.get(ctx, c.baseURL+"/reports/portfolio")
	if err != nil {
		return nil, fmt.Errorf("fetch portfolio summary failed: %w", err)
	}

	var summary models.PortfolioSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio summary: %v", err)
	}
	return &summary, nil
}

// HealthCheck reports whether the financial core is reachable.
func (c *Client) HealthCheck(ctx context.Context) bool {
	_, err := c.get(ctx, c.baseURL+"/health")
	return err == nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %v", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %v", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncateBody(body))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// decodeEntities decodes a JSON array into typed entities while keeping the
// raw payload of each record as opaque metadata.
func decodeEntities(category string, body []byte) ([]models.Entity, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		// Some endpoints wrap the list in {"data": [...]}.
		var wrapped struct {
			Data []json.RawMessage `json:"data"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to decode %s response: %v", category, err)
		}
		items = wrapped.Data
	}

	entities := make([]models.Entity, 0, len(items))
	for _, item := range items {
		entity := models.Entity{Category: category}

		if err := json.Unmarshal(item, &entity.Raw); err != nil {
			logger.Warn("Skipping undecodable entity", "category", category, "error", err)
			continue
		}

		switch category {
		case models.CategoryAccounts:
			var account models.Account
			if err := json.Unmarshal(item, &account); err == nil {
				entity.Account = &account
				entity.ID = account.ID
			}
		case models.CategoryProducts:
			var product models.LoanProduct
			if err := json.Unmarshal(item, &product); err == nil {
				entity.Product = &product
				entity.ID = product.ID
			}
		case models.CategoryLoans:
			var loan models.Loan
			if err := json.Unmarshal(item, &loan); err == nil {
				entity.Loan = &loan
				entity.ID = loan.ID
			}
		}

		entities = append(entities, entity)
	}
	return entities, nil
}
