package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// ticket is a transport ticket reduced to the fields pairing needs.
type ticket struct {
	Departure   string
	Destination string
	Date        string
	Fare        float64
}

var (
	departureKeys   = []string{"departure", "origin", "from", "startStation", "start"}
	destinationKeys = []string{"destination", "arrival", "to", "endStation", "end"}
	hotelCityKeys   = []string{"city", "location", "hotelLocation", "address", "hotelName"}
)

func ticketFromBag(bag entity.FieldBag, now time.Time) ticket {
	return ticket{
		Departure:   TextField(bag, departureKeys...),
		Destination: TextField(bag, destinationKeys...),
		Date:        DateField(bag, now),
		Fare:        AmountField(bag),
	}
}

// PairTickets matches outbound/return transport tickets into trip legs and
// merges hotel costs per leg. Tickets are scanned in recognition order; for
// each unconsumed ticket the remaining tickets are searched for the exact
// reverse route, and the first hit forms a round trip. A ticket with no
// reverse counterpart becomes a single-leg trip on its own. Output order
// follows input order. Only exact reverse routes pair: a false pair
// silently sums two unrelated costs into one leg, so missed pairs are the
// safer failure.
func PairTickets(tickets []entity.FieldBag, hotels []entity.FieldBag, now time.Time) []entity.TripLeg {
	parsed := make([]ticket, 0, len(tickets))
	for _, bag := range tickets {
		parsed = append(parsed, ticketFromBag(bag, now))
	}

	used := make([]bool, len(parsed))
	var legs []entity.TripLeg

	for i, out := range parsed {
		if used[i] {
			continue
		}
		used[i] = true

		leg := entity.TripLeg{
			StartDate:    out.Date,
			EndDate:      out.Date,
			Route:        routeString(out.Departure, out.Destination),
			TransportFee: out.Fare,
		}

		if out.Departure != "" && out.Destination != "" {
			for j := i + 1; j < len(parsed); j++ {
				if used[j] {
					continue
				}
				ret := parsed[j]
				if ret.Departure == out.Destination && ret.Destination == out.Departure {
					used[j] = true
					leg.TransportFee += ret.Fare
					leg.EndDate = ret.Date
					break
				}
			}
		}

		attachHotel(&leg, out.Destination, hotels, now)
		leg.Recompute()
		legs = append(legs, leg)
	}

	return legs
}

// attachHotel merges the first hotel record whose city/location field and
// the leg's destination contain one another (either direction). Unmatched
// legs keep zero hotel cost.
func attachHotel(leg *entity.TripLeg, destination string, hotels []entity.FieldBag, now time.Time) {
	if destination == "" {
		return
	}
	for _, hotel := range hotels {
		city := TextField(hotel, hotelCityKeys...)
		if city == "" {
			continue
		}
		if strings.Contains(city, destination) || strings.Contains(destination, city) {
			leg.HotelLocation = city
			leg.HotelFee = AmountField(hotel)
			leg.HotelDays = IntField(hotel, "days", "nights", "hotelDays")
			return
		}
	}
}

// AllocateCityTraffic assigns the aggregate taxi cost to the first trip
// leg's CityTrafficFee. Costs are not distributed across legs: the source
// data does not say which leg a ride belongs to, so multi-leg trips
// attribute all local transport to leg 1.
func AllocateCityTraffic(legs []entity.TripLeg, taxiTotal float64) []entity.TripLeg {
	if len(legs) == 0 || taxiTotal == 0 {
		return legs
	}
	legs[0].CityTrafficFee = taxiTotal
	legs[0].Recompute()
	return legs
}

// TravelTotal sums the subtotals of all legs.
func TravelTotal(legs []entity.TripLeg) float64 {
	var total float64
	for _, leg := range legs {
		total += leg.SubTotal
	}
	return total
}

func routeString(departure, destination string) string {
	if departure == "" && destination == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s", departure, destination)
}
