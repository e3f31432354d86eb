package entity

// LoanStatus is the lifecycle state of a loan record.
type LoanStatus string

const (
	LoanStatusDraft     LoanStatus = "draft"
	LoanStatusSubmitted LoanStatus = "submitted"
	LoanStatusPaid      LoanStatus = "paid"
	LoanStatusCancelled LoanStatus = "cancelled"
)

// Eligible reports whether a loan in this status may be offered as an
// offset against a new claim. Paid and cancelled loans are excluded from
// matching regardless of how well they would score.
func (s LoanStatus) Eligible() bool {
	return s != LoanStatusPaid && s != LoanStatusCancelled
}

// LoanRecord is an existing loan the matching engine reads and ranks.
// The engine never writes loan records.
type LoanRecord struct {
	ID             string     `json:"id"`
	Amount         float64    `json:"amount"`
	Reason         string     `json:"reason,omitempty"`
	ApprovalNumber string     `json:"approval_number,omitempty"`
	Status         LoanStatus `json:"status"`
	BorrowDate     string     `json:"borrow_date,omitempty"`
	BorrowerName   string     `json:"borrower_name,omitempty"`
}

// MatchType classifies the dominant signal behind a loan suggestion.
type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypeFuzzy   MatchType = "fuzzy"
	MatchTypeAmount  MatchType = "amount"
	MatchTypeKeyword MatchType = "keyword"
)

// MatchedLoan decorates a LoanRecord with a similarity score and the
// human-readable reasons that produced it. Matches are recomputed on every
// analysis pass and never persisted.
type MatchedLoan struct {
	LoanRecord
	MatchScore   float64   `json:"match_score"`
	MatchReasons []string  `json:"match_reasons"`
	MatchType    MatchType `json:"match_type"`
}
