package entity

import "time"

// ClaimType distinguishes general expense claims from travel claims.
type ClaimType string

const (
	ClaimTypeGeneral ClaimType = "general"
	ClaimTypeTravel  ClaimType = "travel"
)

// ReimbursementClaim is the assembled output of one reconciliation pass,
// consumed directly by the form renderer. PayableAmount is derived from
// TotalAmount and PrepaidAmount and must be refreshed via Recompute after
// any amount mutation; it may be negative and is not clamped. EventSummary
// is stored so itemized line names can be rebuilt after selection toggles.
type ReimbursementClaim struct {
	ID            string       `json:"id"`
	Type          ClaimType    `json:"type"`
	Title         string       `json:"title"`
	EventSummary  string       `json:"event_summary,omitempty"`
	ApplicantName string       `json:"applicant_name,omitempty"`
	Department    string       `json:"department,omitempty"`
	Invoices      []InvoiceLine `json:"invoices,omitempty"`
	Items         []ExpenseItem `json:"items,omitempty"`
	Legs          []TripLeg     `json:"legs,omitempty"`
	TaxiDetails   []TaxiDetail  `json:"taxi_details,omitempty"`
	MatchedLoans  []MatchedLoan `json:"matched_loans,omitempty"`
	TotalAmount   float64      `json:"total_amount"`
	PrepaidAmount float64      `json:"prepaid_amount"`
	PayableAmount float64      `json:"payable_amount"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Recompute refreshes PayableAmount from TotalAmount and PrepaidAmount.
func (c *ReimbursementClaim) Recompute() {
	c.PayableAmount = c.TotalAmount - c.PrepaidAmount
}
