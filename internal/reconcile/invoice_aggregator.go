package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// LineItemMode selects how selected invoices flatten into expense lines.
type LineItemMode string

const (
	// LineItemMerged collapses all selected invoices into a single expense
	// line whose amount is the sum of selected amounts and whose date is the
	// first selected invoice's date.
	LineItemMerged LineItemMode = "merged"
	// LineItemItemized emits one expense line per selected invoice.
	LineItemItemized LineItemMode = "itemized"
)

// invoiceShape is one recognized AI response shape: a predicate over the
// raw payload and the extractor to run when it matches. Shapes are tried
// in priority order and the first match wins.
type invoiceShape struct {
	match   func(raw any) bool
	extract func(raw any, now time.Time) []entity.InvoiceLine
}

var invoiceShapes = []invoiceShape{
	{
		// Bare array of invoice objects.
		match: func(raw any) bool {
			_, ok := raw.([]any)
			return ok
		},
		extract: func(raw any, now time.Time) []entity.InvoiceLine {
			return linesFromBags(entity.AsBags(raw.([]any)), now)
		},
	},
	{
		// Object carrying an invoices[] key. Matching on key presence keeps
		// an empty invoices array from falling through to the flat shape:
		// "no invoices found" is an empty result, not a document to scan.
		match: func(raw any) bool {
			return entity.AsBag(raw).Has("invoices")
		},
		extract: func(raw any, now time.Time) []entity.InvoiceLine {
			return linesFromBags(entity.AsBag(raw).Bags("invoices"), now)
		},
	},
	{
		// Single document with line items[]: one invoice whose amount is the
		// grand total when present and non-zero, else the sum of item
		// amounts (some providers omit a grand total). An empty items array
		// is an empty result here too.
		match: func(raw any) bool {
			return entity.AsBag(raw).Has("items")
		},
		extract: func(raw any, now time.Time) []entity.InvoiceLine {
			bag := entity.AsBag(raw)
			items := bag.Bags("items")
			if len(items) == 0 {
				return nil
			}
			line := lineFromBag(bag, now)
			if total := AmountField(bag, "totalAmount", "total", "amount"); total != 0 {
				line.Amount = total
			} else {
				var sum float64
				for _, item := range items {
					sum += AmountField(item)
				}
				line.Amount = sum
			}
			return []entity.InvoiceLine{line}
		},
	},
	{
		// Flat single document, amounts via the default fallback chain.
		// An entirely empty object is an absent document, not an invoice.
		match: func(raw any) bool {
			return len(entity.AsBag(raw)) > 0
		},
		extract: func(raw any, now time.Time) []entity.InvoiceLine {
			return []entity.InvoiceLine{lineFromBag(entity.AsBag(raw), now)}
		},
	},
}

// ParseInvoices parses raw AI invoice-recognition output, whose shape is
// unknown ahead of time, into a uniform list of invoice lines. All lines
// start selected. An unrecognized or empty payload yields an empty list,
// never an error.
func ParseInvoices(raw any, now time.Time) []entity.InvoiceLine {
	if raw == nil {
		return nil
	}
	for _, shape := range invoiceShapes {
		if shape.match(raw) {
			return shape.extract(raw, now)
		}
	}
	return nil
}

func linesFromBags(bags []entity.FieldBag, now time.Time) []entity.InvoiceLine {
	lines := make([]entity.InvoiceLine, 0, len(bags))
	for _, bag := range bags {
		lines = append(lines, lineFromBag(bag, now))
	}
	return lines
}

func lineFromBag(bag entity.FieldBag, now time.Time) entity.InvoiceLine {
	return entity.InvoiceLine{
		ID:            uuid.NewString(),
		ProjectName:   TextField(bag, "projectName", "itemName", "name", "sellerName", "title"),
		Amount:        AmountField(bag),
		InvoiceDate:   DateField(bag, now),
		InvoiceNumber: TextField(bag, "invoiceNumber", "invoiceNo", "number"),
		Selected:      true,
	}
}

// BuildTitle constructs the human-auditable claim title. A single invoice
// contributes its project name; otherwise the first 3 distinct project
// names are joined by "、" with an "等" suffix when more exist. An approval
// event summary, when supplied, is appended parenthetically.
func BuildTitle(lines []entity.InvoiceLine, approval *entity.ApprovalInfo) string {
	var title string
	switch len(lines) {
	case 0:
		title = ""
	case 1:
		title = lines[0].ProjectName
	default:
		seen := make(map[string]bool)
		var names []string
		for _, line := range lines {
			name := strings.TrimSpace(line.ProjectName)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		if len(names) > 3 {
			title = strings.Join(names[:3], "、") + "等"
		} else {
			title = strings.Join(names, "、")
		}
	}

	if approval != nil && approval.EventSummary != "" {
		if title == "" {
			title = approval.EventSummary
		} else {
			title = fmt.Sprintf("%s（%s）", title, approval.EventSummary)
		}
	}
	return title
}

// SelectedTotal sums the amounts of the selected invoices. Deselecting
// every invoice is a valid state and yields exactly 0.
func SelectedTotal(lines []entity.InvoiceLine) float64 {
	var total float64
	for _, line := range lines {
		if line.Selected {
			total += line.Amount
		}
	}
	return total
}

// BuildExpenseItems flattens the selected invoices into expense lines
// according to mode. In merged mode one collapsed line carries the sum of
// selected amounts and the first selected invoice's date; in itemized mode
// each selected invoice yields one line, tagged with the event summary
// when available. No selected invoices yields an empty set.
func BuildExpenseItems(lines []entity.InvoiceLine, mode LineItemMode, title, eventSummary string) []entity.ExpenseItem {
	selected := make([]entity.InvoiceLine, 0, len(lines))
	for _, line := range lines {
		if line.Selected {
			selected = append(selected, line)
		}
	}
	if len(selected) == 0 {
		return nil
	}

	if mode == LineItemMerged {
		return []entity.ExpenseItem{{
			Name:   title,
			Amount: SelectedTotal(lines),
			Date:   selected[0].InvoiceDate,
		}}
	}

	items := make([]entity.ExpenseItem, 0, len(selected))
	for _, line := range selected {
		name := line.ProjectName
		if eventSummary != "" {
			name = fmt.Sprintf("%s（%s）", name, eventSummary)
		}
		items = append(items, entity.ExpenseItem{
			Name:   name,
			Amount: line.Amount,
			Date:   line.InvoiceDate,
		})
	}
	return items
}

// SearchTerms collects the claim-side terms used for ledger auto-matching:
// the claim title, each invoice project name, and the approval event
// summary, deduplicated and with blanks dropped.
func SearchTerms(title string, lines []entity.InvoiceLine, approval *entity.ApprovalInfo) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	add(title)
	for _, line := range lines {
		add(line.ProjectName)
	}
	if approval != nil {
		add(approval.EventSummary)
	}
	return terms
}

// MatchLedgerEntries suggests pending ledger entries for inclusion in the
// claim. An entry matches when its description or category contains, or is
// contained by, any search term, case-insensitively. User-entered ledger
// text and AI-extracted titles rarely match verbatim, so containment is
// checked in both directions.
func MatchLedgerEntries(entries []entity.LedgerEntry, terms []string) []entity.LedgerEntry {
	var matched []entity.LedgerEntry
	for _, entry := range entries {
		if entry.Reimbursed {
			continue
		}
		if ledgerEntryMatches(entry, terms) {
			matched = append(matched, entry)
		}
	}
	return matched
}

func ledgerEntryMatches(entry entity.LedgerEntry, terms []string) bool {
	fields := []string{entry.Description, entry.Category}
	for _, term := range terms {
		lowTerm := strings.ToLower(term)
		for _, field := range fields {
			lowField := strings.ToLower(strings.TrimSpace(field))
			if lowField == "" {
				continue
			}
			if strings.Contains(lowField, lowTerm) || strings.Contains(lowTerm, lowField) {
				return true
			}
		}
	}
	return false
}
