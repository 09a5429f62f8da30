package services

import (
	"fmt"
	"strings"

	"fincore-assistant/models"
)

// Canonical text rendering of financial-core entities. The indexer embeds
// these blocks, so the shape must be stable: optional fields render as "N/A"
// instead of being omitted, keeping embeddings comparable across partially
// populated records.

const notAvailable = "N/A"

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func money(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

// RenderEntity returns the title and canonical content block for an entity.
func RenderEntity(entity models.Entity) (title, content string, err error) {
	switch entity.Category {
	case models.CategoryAccounts:
		if entity.Account == nil {
			return "", "", fmt.Errorf("account payload missing for entity %s", entity.ID)
		}
		return renderAccount(entity.Account)
	case models.CategoryProducts:
		if entity.Product == nil {
			return "", "", fmt.Errorf("product payload missing for entity %s", entity.ID)
		}
		return renderProduct(entity.Product)
	case models.CategoryLoans:
		if entity.Loan == nil {
			return "", "", fmt.Errorf("loan payload missing for entity %s", entity.ID)
		}
		return renderLoan(entity.Loan)
	}
	return "", "", fmt.Errorf("unknown entity category: %s", entity.Category)
}

func renderAccount(a *models.Account) (string, string, error) {
	title := fmt.Sprintf("Account: %s", orNA(a.DisplayName))

	var b strings.Builder
	fmt.Fprintf(&b, "Account Name: %s\n", orNA(a.DisplayName))
	fmt.Fprintf(&b, "Account Number: %s\n", orNA(a.AccountNumber))
	fmt.Fprintf(&b, "Status: %s\n", orNA(a.Status))
	fmt.Fprintf(&b, "Phone: %s\n", orNA(a.Phone))
	fmt.Fprintf(&b, "Email: %s\n", orNA(a.Email))
	fmt.Fprintf(&b, "Branch: %s\n", orNA(a.Branch))
	fmt.Fprintf(&b, "Balance: %s", money(a.Balance, a.Currency))
	return title, b.String(), nil
}

func renderProduct(p *models.LoanProduct) (string, string, error) {
	title := fmt.Sprintf("Loan Product: %s", orNA(p.Name))

	var b strings.Builder
	fmt.Fprintf(&b, "Product Name: %s\n", orNA(p.Name))
	fmt.Fprintf(&b, "Short Name: %s\n", orNA(p.ShortName))
	fmt.Fprintf(&b, "Description: %s\n", orNA(p.Description))
	fmt.Fprintf(&b, "Interest Rate: %.2f%% %s\n", p.InterestRate, orNA(p.InterestPeriod))
	fmt.Fprintf(&b, "Principal Range: %s to %s\n", money(p.MinPrincipal, p.Currency), money(p.MaxPrincipal, p.Currency))
	if p.TermMonths > 0 {
		fmt.Fprintf(&b, "Term: %d months\n", p.TermMonths)
	} else {
		fmt.Fprintf(&b, "Term: %s\n", notAvailable)
	}
	fmt.Fprintf(&b, "Repayment Period: %s", orNA(p.RepaymentPeriod))
	return title, b.String(), nil
}

func renderLoan(l *models.Loan) (string, string, error) {
	title := fmt.Sprintf("Loan %s - %s", orNA(l.ID), orNA(l.AccountName))

	var b strings.Builder
	fmt.Fprintf(&b, "Loan ID: %s\n", orNA(l.ID))
	fmt.Fprintf(&b, "Account: %s\n", orNA(l.AccountName))
	fmt.Fprintf(&b, "Product: %s\n", orNA(l.ProductName))
	fmt.Fprintf(&b, "Principal: %s\n", money(l.Principal, l.Currency))
	fmt.Fprintf(&b, "Outstanding: %s\n", money(l.Outstanding, l.Currency))
	fmt.Fprintf(&b, "Interest Rate: %.2f%%\n", l.InterestRate)
	fmt.Fprintf(&b, "Status: %s\n", orNA(l.Status))
	fmt.Fprintf(&b, "Days In Arrears: %d\n", l.DaysInArrears)
	fmt.Fprintf(&b, "Disbursed On: %s\n", orNA(l.DisbursedOn))
	fmt.Fprintf(&b, "Maturity Date: %s", orNA(l.MaturityDate))
	return title, b.String(), nil
}

// RenderPortfolioSummary renders the aggregate report for live context.
func RenderPortfolioSummary(s *models.PortfolioSummary) string {
	var b strings.Builder
	b.WriteString("Portfolio Summary:\n")
	fmt.Fprintf(&b, "Total Accounts: %d\n", s.TotalAccounts)
	fmt.Fprintf(&b, "Active Loans: %d\n", s.ActiveLoans)
	fmt.Fprintf(&b, "Overdue Loans: %d\n", s.OverdueLoans)
	fmt.Fprintf(&b, "Total Outstanding: %s\n", money(s.TotalOutstanding, s.Currency))
	fmt.Fprintf(&b, "Total Disbursed: %s\n", money(s.TotalDisbursed, s.Currency))
	fmt.Fprintf(&b, "Portfolio At Risk: %.2f%%", s.PortfolioAtRisk)
	return b.String()
}
