package services

import "strings"

// LiveFetch directives produced by the intent router. Each one triggers a
// fresh fetch from the financial core at query time, independent of the
// possibly stale mirror.
type LiveFetch string

const (
	FetchAccounts         LiveFetch = "accounts"
	FetchProducts         LiveFetch = "products"
	FetchActiveLoans      LiveFetch = "active_loans"
	FetchOverdueLoans     LiveFetch = "overdue_loans"
	FetchPortfolioSummary LiveFetch = "portfolio_summary"
)

var accountKeywords = []string{"account", "customer", "client", "member", "borrower"}
var loanKeywords = []string{"loan", "credit", "borrow", "lending"}
var productKeywords = []string{"product", "offer", "catalog", "catalogue"}
var overdueKeywords = []string{"overdue", "late", "arrears", "delinquent", "past due", "missed"}
var rateKeywords = []string{"interest", "rate", "apr"}
var portfolioKeywords = []string{"portfolio", "summary", "report", "overview", "total"}

// ClassifyIntents maps a raw query to the live data worth refreshing for it.
// Best-effort keyword heuristic: no match means the answer falls back to the
// indexed documents alone, which is valid.
func ClassifyIntents(query string) []LiveFetch {
	q := strings.ToLower(query)

	var directives []LiveFetch
	add := func(d LiveFetch) {
		for _, existing := range directives {
			if existing == d {
				return
			}
		}
		directives = append(directives, d)
	}

	if containsAny(q, accountKeywords) {
		add(FetchAccounts)
	}

	if containsAny(q, loanKeywords) {
		switch {
		case containsAny(q, productKeywords):
			add(FetchProducts)
		case containsAny(q, overdueKeywords):
			add(FetchOverdueLoans)
		default:
			add(FetchActiveLoans)
		}
	}

	if containsAny(q, rateKeywords) {
		add(FetchProducts)
	}

	if containsAny(q, portfolioKeywords) {
		add(FetchPortfolioSummary)
	}

	return directives
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
