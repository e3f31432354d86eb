package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// TaxiContext carries the ambient defaults a taxi record may be missing.
// They are passed explicitly so the processor stays pure and testable.
type TaxiContext struct {
	UserName     string    // passenger fallback when absent from a record
	EventSummary string    // reason fallback from the approval document
	Now          time.Time // date fallback
}

// defaultTaxiReason is used when neither the record nor the approval
// document supplies a reason.
const defaultTaxiReason = "市内交通"

// taxiListKeys are the object keys probed, in priority order, for an array
// of ride records.
var taxiListKeys = []string{"details", "trips", "rides", "records", "items"}

// ParseTaxiDetails normalizes raw AI taxi-recognition output, which arrives
// in one of several shapes, into a uniform detail list. Shapes are tried in
// a fixed priority order: bare array, a known list key, a single receipt
// object, then a generic scan of object properties for an array whose first
// element plausibly looks like a receipt. A totally unrecognized shape
// degrades to an empty list, never an error.
func ParseTaxiDetails(raw any, tctx TaxiContext) []entity.TaxiDetail {
	if raw == nil {
		return nil
	}

	if items, ok := raw.([]any); ok {
		return detailsFromBags(entity.AsBags(items), tctx)
	}

	bag := entity.AsBag(raw)
	if bag == nil {
		return nil
	}

	for _, key := range taxiListKeys {
		if bags := bag.Bags(key); len(bags) > 0 {
			return detailsFromBags(bags, tctx)
		}
	}

	if looksLikeReceipt(bag) {
		return detailsFromBags([]entity.FieldBag{bag}, tctx)
	}

	// Generic fallback: scan properties for a nested array of receipts.
	// Only the first element is probed, which guards against treating
	// metadata arrays as ride records.
	for _, v := range bag {
		items, ok := v.([]any)
		if !ok || len(items) == 0 {
			continue
		}
		first := entity.AsBag(items[0])
		if first != nil && looksLikeReceipt(first) {
			return detailsFromBags(entity.AsBags(items), tctx)
		}
	}

	return nil
}

// looksLikeReceipt reports whether a bag plausibly represents a ride
// receipt, i.e. carries an amount-like or date-like field.
func looksLikeReceipt(bag entity.FieldBag) bool {
	if _, ok := bag.First(amountKeys...); ok {
		return true
	}
	if _, ok := bag.First(dateKeys...); ok {
		return true
	}
	return false
}

func detailsFromBags(bags []entity.FieldBag, tctx TaxiContext) []entity.TaxiDetail {
	details := make([]entity.TaxiDetail, 0, len(bags))
	for _, bag := range bags {
		details = append(details, detailFromBag(bag, tctx))
	}
	return details
}

func detailFromBag(bag entity.FieldBag, tctx TaxiContext) entity.TaxiDetail {
	start := TextField(bag, "startPoint", "start", "pickup", "from")
	end := TextField(bag, "endPoint", "end", "dropoff", "to")

	route := TextField(bag, "route", "itinerary")
	if route == "" && start != "" && end != "" {
		route = fmt.Sprintf("%s-%s", start, end)
	}

	reason := TextField(bag, "reason", "purpose")
	if reason == "" {
		reason = tctx.EventSummary
	}
	if reason == "" {
		reason = defaultTaxiReason
	}

	employee := TextField(bag, "employeeName", "passenger", "name")
	if employee == "" {
		employee = tctx.UserName
	}

	return entity.TaxiDetail{
		ID:           uuid.NewString(),
		Date:         DateField(bag, tctx.Now),
		Reason:       reason,
		Route:        route,
		StartPoint:   start,
		EndPoint:     end,
		Amount:       AmountField(bag),
		EmployeeName: employee,
	}
}

// TaxiTotal sums all detail amounts. The total is reconciled against a trip
// leg's CityTrafficFee as a cross-check; the processor never mutates legs.
func TaxiTotal(details []entity.TaxiDetail) float64 {
	var total float64
	for _, d := range details {
		total += d.Amount
	}
	return total
}
