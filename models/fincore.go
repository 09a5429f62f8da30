package models

// Entity categories understood by the financial-core client. They map 1:1
// onto the document types of the mirror.
const (
	CategoryAccounts = "accounts"
	CategoryProducts = "products"
	CategoryLoans    = "loans"
)

// DocTypeForCategory returns the document type tag used when mirroring
// entities of the given category.
func DocTypeForCategory(category string) string {
	switch category {
	case CategoryAccounts:
		return DocTypeAccount
	case CategoryProducts:
		return DocTypeLoanProduct
	case CategoryLoans:
		return DocTypeLoan
	}
	return category
}

// Account is a client account in the financial core.
type Account struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"displayName"`
	AccountNumber string  `json:"accountNumber"`
	Status        string  `json:"status"`
	Phone         string  `json:"phone,omitempty"`
	Email         string  `json:"email,omitempty"`
	Branch        string  `json:"branch,omitempty"`
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency,omitempty"`
}

// LoanProduct is one entry of the loan product catalog.
type LoanProduct struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ShortName       string  `json:"shortName,omitempty"`
	Description     string  `json:"description,omitempty"`
	InterestRate    float64 `json:"interestRate"`
	InterestPeriod  string  `json:"interestPeriod,omitempty"`
	MinPrincipal    float64 `json:"minPrincipal"`
	MaxPrincipal    float64 `json:"maxPrincipal"`
	TermMonths      int     `json:"termMonths"`
	RepaymentPeriod string  `json:"repaymentPeriod,omitempty"`
	Currency        string  `json:"currency,omitempty"`
}

// Loan is an active loan contract.
type Loan struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"accountId"`
	AccountName   string  `json:"accountName,omitempty"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName,omitempty"`
	Principal     float64 `json:"principal"`
	Outstanding   float64 `json:"outstanding"`
	InterestRate  float64 `json:"interestRate"`
	Status        string  `json:"status"`
	DaysInArrears int     `json:"daysInArrears,omitempty"`
	DisbursedOn   string  `json:"disbursedOn,omitempty"`
	MaturityDate  string  `json:"maturityDate,omitempty"`
	Currency      string  `json:"currency,omitempty"`
}

// Entity is one record returned by the financial core, decoded into the
// category-specific struct plus the raw payload. The raw snapshot travels
// into the mirror as opaque metadata.
type Entity struct {
	ID       string
	Category string
	Account  *Account
	Product  *LoanProduct
	Loan     *Loan
	Raw      map[string]any
}

// PortfolioSummary is the aggregate view served by the financial core's
// reporting endpoint.
type PortfolioSummary struct {
	TotalAccounts    int     `json:"totalAccounts"`
	ActiveLoans      int     `json:"activeLoans"`
	OverdueLoans     int     `json:"overdueLoans"`
	TotalOutstanding float64 `json:"totalOutstanding"`
	TotalDisbursed   float64 `json:"totalDisbursed"`
	PortfolioAtRisk  float64 `json:"portfolioAtRisk"`
	Currency         string  `json:"currency,omitempty"`
}
