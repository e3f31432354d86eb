package entity

// InvoiceLine represents one recognized invoice (发票) within a claim.
// A line is created once at analysis time; only its Selected flag is
// mutated afterwards, when the user includes or excludes it from the
// claim total.
type InvoiceLine struct {
	ID            string  `json:"id"`
	ProjectName   string  `json:"project_name"`
	Amount        float64 `json:"amount"`
	InvoiceDate   string  `json:"invoice_date"` // YYYY-MM-DD
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	Selected      bool    `json:"selected"`
}

// ExpenseItem is a flattened, user-editable expense line on the final form.
type ExpenseItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"` // YYYY-MM-DD
}

// LedgerEntry is a pre-recorded expense awaiting reimbursement. Entries are
// suggested for inclusion in a claim when their text overlaps the claim's
// search terms.
type LedgerEntry struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Reimbursed  bool    `json:"reimbursed"`
}

// ApprovalInfo carries the fields extracted from an approval document
// (审批单) that the reconciliation pass needs.
type ApprovalInfo struct {
	ApprovalNumber string `json:"approval_number"`
	EventSummary   string `json:"event_summary"`
	EventDetail    string `json:"event_detail"`
	ApplicantName  string `json:"applicant_name"`
	Department     string `json:"department"`
}
