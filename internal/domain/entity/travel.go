package entity

// TripLeg is one outbound-plus-optional-return segment of a travel claim.
// SubTotal is derived from the five fee fields and must be refreshed via
// Recompute after any fee mutation; it is never set directly.
type TripLeg struct {
	StartDate      string  `json:"start_date"` // YYYY-MM-DD
	EndDate        string  `json:"end_date"`   // YYYY-MM-DD
	Route          string  `json:"route"`      // origin-destination
	TransportFee   float64 `json:"transport_fee"`
	HotelLocation  string  `json:"hotel_location,omitempty"`
	HotelDays      int     `json:"hotel_days"`
	HotelFee       float64 `json:"hotel_fee"`
	CityTrafficFee float64 `json:"city_traffic_fee"`
	MealFee        float64 `json:"meal_fee"`
	OtherFee       float64 `json:"other_fee"`
	SubTotal       float64 `json:"sub_total"`
}

// Recompute refreshes SubTotal from the fee fields. Every construction and
// mutation site must call it before the leg is observed elsewhere.
func (l *TripLeg) Recompute() {
	l.SubTotal = l.TransportFee + l.HotelFee + l.CityTrafficFee + l.MealFee + l.OtherFee
}

// TaxiDetail is one normalized taxi/ride receipt. Details are independent
// of trip legs; their aggregate total is reconciled against a leg's
// CityTrafficFee as a cross-check, not a structural merge.
type TaxiDetail struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"` // YYYY-MM-DD
	Reason       string  `json:"reason"`
	Route        string  `json:"route"`
	StartPoint   string  `json:"start_point,omitempty"`
	EndPoint     string  `json:"end_point,omitempty"`
	Amount       float64 `json:"amount"`
	EmployeeName string  `json:"employee_name"`
}
