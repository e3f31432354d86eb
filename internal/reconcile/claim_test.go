package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

func TestAssembleGeneralClaim(t *testing.T) {
	lines := []entity.InvoiceLine{
		{ProjectName: "餐饮", Amount: 1200.50, InvoiceDate: "2024-01-05", Selected: true},
		{ProjectName: "交通", Amount: 300, InvoiceDate: "2024-01-06", Selected: true},
	}
	approval := &entity.ApprovalInfo{
		EventSummary:  "客户拜访",
		ApplicantName: "张伟",
		Department:    "销售部",
	}

	claim := AssembleGeneralClaim(lines, LineItemMerged, approval, 500, testNow)

	assert.Equal(t, entity.ClaimTypeGeneral, claim.Type)
	assert.Equal(t, "餐饮、交通（客户拜访）", claim.Title)
	assert.Equal(t, 1500.50, claim.TotalAmount)
	assert.InDelta(t, 1000.50, claim.PayableAmount, 0.01)
	assert.Equal(t, "张伟", claim.ApplicantName)
	require.Len(t, claim.Items, 1)
}

func TestPayableMayGoNegative(t *testing.T) {
	lines := []entity.InvoiceLine{{Amount: 100, Selected: true}}

	claim := AssembleGeneralClaim(lines, LineItemMerged, nil, 500, testNow)

	assert.InDelta(t, -400.0, claim.PayableAmount, 0.01, "payable amount is not clamped")
}

func TestRefreshGeneralClaimKeepsEventSummarySuffix(t *testing.T) {
	lines := []entity.InvoiceLine{
		{ProjectName: "餐饮", Amount: 100, InvoiceDate: "2024-01-05", Selected: true},
		{ProjectName: "交通", Amount: 200, InvoiceDate: "2024-01-06", Selected: true},
	}
	approval := &entity.ApprovalInfo{EventSummary: "客户拜访"}
	claim := AssembleGeneralClaim(lines, LineItemItemized, approval, 0, testNow)
	require.Len(t, claim.Items, 2)
	require.Equal(t, "餐饮（客户拜访）", claim.Items[0].Name)

	claim.Invoices[1].Selected = false
	RefreshGeneralClaim(claim, LineItemItemized)

	require.Len(t, claim.Items, 1)
	assert.Equal(t, "餐饮（客户拜访）", claim.Items[0].Name,
		"remaining itemized lines keep their event-summary suffix")
}

func TestRefreshGeneralClaimAfterToggle(t *testing.T) {
	lines := []entity.InvoiceLine{
		{ProjectName: "餐饮", Amount: 100, InvoiceDate: "2024-01-05", Selected: true},
		{ProjectName: "交通", Amount: 200, InvoiceDate: "2024-01-06", Selected: true},
	}
	claim := AssembleGeneralClaim(lines, LineItemItemized, nil, 0, testNow)
	require.Len(t, claim.Items, 2)

	claim.Invoices[1].Selected = false
	RefreshGeneralClaim(claim, LineItemItemized)

	assert.Len(t, claim.Items, 1, "toggling off removes exactly one itemized line")
	assert.Equal(t, 100.0, claim.TotalAmount)
	assert.InDelta(t, claim.TotalAmount-claim.PrepaidAmount, claim.PayableAmount, 0.01)

	claim.Invoices[0].Selected = false
	RefreshGeneralClaim(claim, LineItemItemized)

	assert.Empty(t, claim.Items)
	assert.Zero(t, claim.TotalAmount, "deselecting everything is a valid state")
}

func TestAssembleTravelClaim(t *testing.T) {
	tickets := []entity.FieldBag{
		{"departure": "北京", "destination": "上海", "date": "2024-01-10", "amount": 500.0},
		{"departure": "上海", "destination": "北京", "date": "2024-01-15", "amount": 480.0},
	}
	hotels := []entity.FieldBag{{"city": "上海", "amount": 660.0, "days": 3.0}}
	legs := PairTickets(tickets, hotels, testNow)

	taxis := ParseTaxiDetails([]any{
		map[string]any{"date": "2024-01-10", "amount": 35.5},
		map[string]any{"date": "2024-01-11", "amount": 24.5},
	}, TaxiContext{UserName: "张伟", Now: testNow})

	claim := AssembleTravelClaim(legs, taxis, &entity.ApprovalInfo{EventSummary: "上海出差"}, 1000, testNow)

	assert.Equal(t, entity.ClaimTypeTravel, claim.Type)
	require.Len(t, claim.Legs, 1)
	assert.Equal(t, 60.0, claim.Legs[0].CityTrafficFee)
	assert.InDelta(t, 500+480+660+60, claim.Legs[0].SubTotal, 0.001)
	assert.InDelta(t, claim.Legs[0].SubTotal, claim.TotalAmount, 0.001)
	assert.InDelta(t, claim.TotalAmount-1000, claim.PayableAmount, 0.01)
	assert.Equal(t, "上海出差", claim.Title)
}

func TestAssembleTravelClaimEmptyDocuments(t *testing.T) {
	claim := AssembleTravelClaim(nil, nil, nil, 0, testNow)

	assert.Empty(t, claim.Legs)
	assert.Zero(t, claim.TotalAmount)
	assert.Zero(t, claim.PayableAmount)
}
