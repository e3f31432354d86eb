package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

func TestParseInvoicesArrayShape(t *testing.T) {
	raw := []any{
		map[string]any{"projectName": "餐饮", "totalAmount": "1,200.50", "invoiceDate": "2024-01-05"},
		map[string]any{"projectName": "交通", "amount": 300.0, "invoiceDate": "2024-01-06"},
	}

	lines := ParseInvoices(raw, testNow)
	require.Len(t, lines, 2)
	assert.Equal(t, "餐饮", lines[0].ProjectName)
	assert.Equal(t, 1200.50, lines[0].Amount)
	assert.Equal(t, "2024-01-05", lines[0].InvoiceDate)
	assert.Equal(t, 300.0, lines[1].Amount)
	assert.True(t, lines[0].Selected)
	assert.True(t, lines[1].Selected)
}

func TestParseInvoicesWrappedArrayShape(t *testing.T) {
	raw := map[string]any{
		"invoices": []any{
			map[string]any{"projectName": "办公用品", "amount": 99.9},
		},
	}

	lines := ParseInvoices(raw, testNow)
	require.Len(t, lines, 1)
	assert.Equal(t, "办公用品", lines[0].ProjectName)
	assert.Equal(t, 99.9, lines[0].Amount)
}

func TestParseInvoicesItemsShape(t *testing.T) {
	t.Run("grand total wins when non-zero", func(t *testing.T) {
		raw := map[string]any{
			"projectName": "设备采购",
			"totalAmount": 500.0,
			"items": []any{
				map[string]any{"amount": 100.0},
				map[string]any{"amount": 200.0},
			},
		}
		lines := ParseInvoices(raw, testNow)
		require.Len(t, lines, 1)
		assert.Equal(t, 500.0, lines[0].Amount)
	})

	t.Run("item sum when grand total absent", func(t *testing.T) {
		raw := map[string]any{
			"projectName": "设备采购",
			"items": []any{
				map[string]any{"amount": 100.0},
				map[string]any{"amount": "200"},
			},
		}
		lines := ParseInvoices(raw, testNow)
		require.Len(t, lines, 1)
		assert.Equal(t, 300.0, lines[0].Amount)
	})
}

func TestParseInvoicesFlatShape(t *testing.T) {
	raw := map[string]any{"projectName": "住宿费", "price": "350", "invoiceNumber": "INV-9"}
	lines := ParseInvoices(raw, testNow)
	require.Len(t, lines, 1)
	assert.Equal(t, 350.0, lines[0].Amount)
	assert.Equal(t, "INV-9", lines[0].InvoiceNumber)
}

func TestParseInvoicesDegradesToEmpty(t *testing.T) {
	assert.Empty(t, ParseInvoices(nil, testNow))
	assert.Empty(t, ParseInvoices("not a document", testNow))
	assert.Empty(t, ParseInvoices([]any{}, testNow))
}

// An empty invoices[] or items[] array means "no invoices found"; it must
// not be scanned as a flat document and yield a phantom zero-value line.
func TestParseInvoicesEmptyArrayYieldsNoLines(t *testing.T) {
	assert.Empty(t, ParseInvoices(map[string]any{"invoices": []any{}}, testNow))
	assert.Empty(t, ParseInvoices(map[string]any{"items": []any{}}, testNow))
}

func TestBuildTitle(t *testing.T) {
	line := func(name string) entity.InvoiceLine {
		return entity.InvoiceLine{ProjectName: name, Selected: true}
	}

	tests := []struct {
		name     string
		lines    []entity.InvoiceLine
		approval *entity.ApprovalInfo
		expected string
	}{
		{
			name:     "single invoice uses its project name",
			lines:    []entity.InvoiceLine{line("餐饮")},
			expected: "餐饮",
		},
		{
			name:     "up to three distinct names joined",
			lines:    []entity.InvoiceLine{line("餐饮"), line("交通"), line("住宿")},
			expected: "餐饮、交通、住宿",
		},
		{
			name:     "more than three gets suffix",
			lines:    []entity.InvoiceLine{line("餐饮"), line("交通"), line("住宿"), line("会务")},
			expected: "餐饮、交通、住宿等",
		},
		{
			name:     "duplicates collapse before counting",
			lines:    []entity.InvoiceLine{line("餐饮"), line("餐饮"), line("交通")},
			expected: "餐饮、交通",
		},
		{
			name:     "event summary appended parenthetically",
			lines:    []entity.InvoiceLine{line("餐饮"), line("交通")},
			approval: &entity.ApprovalInfo{EventSummary: "客户拜访"},
			expected: "餐饮、交通（客户拜访）",
		},
		{
			name:     "no invoices falls back to event summary",
			lines:    nil,
			approval: &entity.ApprovalInfo{EventSummary: "客户拜访"},
			expected: "客户拜访",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildTitle(tt.lines, tt.approval))
		})
	}
}

func TestBuildExpenseItemsMerged(t *testing.T) {
	lines := []entity.InvoiceLine{
		{ProjectName: "餐饮", Amount: 1200.50, InvoiceDate: "2024-01-05", Selected: true},
		{ProjectName: "交通", Amount: 300, InvoiceDate: "2024-01-06", Selected: true},
	}

	items := BuildExpenseItems(lines, LineItemMerged, "餐饮、交通", "")
	require.Len(t, items, 1)
	assert.Equal(t, 1500.50, items[0].Amount)
	assert.Equal(t, "2024-01-05", items[0].Date, "merged line takes the first selected invoice's date")
}

func TestBuildExpenseItemsItemized(t *testing.T) {
	lines := []entity.InvoiceLine{
		{ProjectName: "餐饮", Amount: 100, InvoiceDate: "2024-01-05", Selected: true},
		{ProjectName: "交通", Amount: 200, InvoiceDate: "2024-01-06", Selected: false},
		{ProjectName: "住宿", Amount: 300, InvoiceDate: "2024-01-07", Selected: true},
	}

	items := BuildExpenseItems(lines, LineItemItemized, "", "项目验收")
	require.Len(t, items, 2, "one line per selected invoice")
	assert.Equal(t, "餐饮（项目验收）", items[0].Name)
	assert.Equal(t, "住宿（项目验收）", items[1].Name)
}

func TestToggleRecomputesMergedLine(t *testing.T) {
	lines := []entity.InvoiceLine{
		{ProjectName: "餐饮", Amount: 100, InvoiceDate: "2024-01-05", Selected: true},
		{ProjectName: "交通", Amount: 200, InvoiceDate: "2024-01-06", Selected: true},
	}

	// Deselect the first: the collapsed line follows.
	lines[0].Selected = false
	items := BuildExpenseItems(lines, LineItemMerged, "t", "")
	require.Len(t, items, 1)
	assert.Equal(t, 200.0, items[0].Amount)
	assert.Equal(t, "2024-01-06", items[0].Date)
}

func TestDeselectingEverythingIsValid(t *testing.T) {
	lines := []entity.InvoiceLine{
		{Amount: 100, Selected: false},
		{Amount: 200, Selected: false},
	}

	assert.Equal(t, 0.0, SelectedTotal(lines))
	assert.Empty(t, BuildExpenseItems(lines, LineItemMerged, "t", ""))
	assert.Empty(t, BuildExpenseItems(lines, LineItemItemized, "t", ""))
}

func TestMatchLedgerEntries(t *testing.T) {
	entries := []entity.LedgerEntry{
		{ID: "1", Description: "团队聚餐餐饮费用", Category: "餐饮"},
		{ID: "2", Description: "Office Supplies", Category: "办公"},
		{ID: "3", Description: "高铁票", Category: "交通", Reimbursed: true},
		{ID: "4", Description: "楼下停车", Category: "停车"},
	}

	matched := MatchLedgerEntries(entries, []string{"餐饮", "office supplies purchase"})

	require.Len(t, matched, 2)
	assert.Equal(t, "1", matched[0].ID, "term contained in description")
	assert.Equal(t, "2", matched[1].ID, "description contained in term, case-insensitive")
}

func TestMatchLedgerEntriesSkipsReimbursed(t *testing.T) {
	entries := []entity.LedgerEntry{
		{ID: "1", Description: "交通", Reimbursed: true},
	}
	assert.Empty(t, MatchLedgerEntries(entries, []string{"交通"}))
}
