package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// AssembleGeneralClaim builds a general expense claim from parsed invoice
// lines. TotalAmount follows the selected invoices and PayableAmount is
// derived from it; both are recomputed here and again after any selection
// toggle via RefreshGeneralClaim.
func AssembleGeneralClaim(lines []entity.InvoiceLine, mode LineItemMode, approval *entity.ApprovalInfo, prepaid float64, now time.Time) *entity.ReimbursementClaim {
	title := BuildTitle(lines, approval)
	var eventSummary string
	if approval != nil {
		eventSummary = approval.EventSummary
	}

	claim := &entity.ReimbursementClaim{
		ID:            uuid.NewString(),
		Type:          entity.ClaimTypeGeneral,
		Title:         title,
		EventSummary:  eventSummary,
		Invoices:      lines,
		Items:         BuildExpenseItems(lines, mode, title, eventSummary),
		TotalAmount:   SelectedTotal(lines),
		PrepaidAmount: prepaid,
		CreatedAt:     now,
	}
	if approval != nil {
		claim.ApplicantName = approval.ApplicantName
		claim.Department = approval.Department
	}
	claim.Recompute()
	return claim
}

// RefreshGeneralClaim re-derives the expense items, total, and payable
// amount after an invoice selection toggle. In merged mode the single
// collapsed line is rebuilt; in itemized mode exactly the selected lines
// remain, each keeping its event-summary suffix. Deselecting everything
// yields an empty item set and a total of zero, which is a valid state.
func RefreshGeneralClaim(claim *entity.ReimbursementClaim, mode LineItemMode) {
	claim.Items = BuildExpenseItems(claim.Invoices, mode, claim.Title, claim.EventSummary)
	claim.TotalAmount = SelectedTotal(claim.Invoices)
	claim.Recompute()
}

// AssembleTravelClaim builds a travel claim from paired trip legs and
// normalized taxi details. The aggregate taxi total is allocated to the
// first leg before totals are derived.
func AssembleTravelClaim(legs []entity.TripLeg, taxis []entity.TaxiDetail, approval *entity.ApprovalInfo, prepaid float64, now time.Time) *entity.ReimbursementClaim {
	legs = AllocateCityTraffic(legs, TaxiTotal(taxis))

	claim := &entity.ReimbursementClaim{
		ID:            uuid.NewString(),
		Type:          entity.ClaimTypeTravel,
		Legs:          legs,
		TaxiDetails:   taxis,
		TotalAmount:   TravelTotal(legs),
		PrepaidAmount: prepaid,
		CreatedAt:     now,
	}
	if approval != nil {
		claim.Title = approval.EventSummary
		claim.ApplicantName = approval.ApplicantName
		claim.Department = approval.Department
	}
	claim.Recompute()
	return claim
}
