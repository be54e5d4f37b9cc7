package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type TripType string

const (
	TripTypeOneWay    TripType = "ONE_WAY"
	TripTypeRoundTrip TripType = "ROUND_TRIP"
)

func (t TripType) Valid() bool {
	return t == TripTypeOneWay || t == TripTypeRoundTrip
}

type MealType string

const (
	MealVeg    MealType = "VEG"
	MealNonVeg MealType = "NON_VEG"
	MealVegan  MealType = "VEGAN"
	MealJain   MealType = "JAIN"
)

// ParseMeal maps a free-form meal code ("Veg", "non_veg") onto a known meal type.
func ParseMeal(s string) (MealType, bool) {
	m := MealType(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MealVeg, MealNonVeg, MealVegan, MealJain:
		return m, true
	}
	return "", false
}

type Booking struct {
	ID               int64         `json:"booking_id"`
	TripType         TripType      `json:"trip_type"`
	OutboundFlightID int64         `json:"outbound_flight_id"`
	ReturnFlightID   *int64        `json:"return_flight_id,omitempty"`
	PNROutbound      string        `json:"pnr_outbound"`
	PNRReturn        *string       `json:"pnr_return,omitempty"`
	ContactName      string        `json:"contact_name"`
	ContactEmail     string        `json:"contact_email"`
	TotalPassengers  int           `json:"total_passengers"`
	Status           BookingStatus `json:"status"`
	Passengers       []Passenger   `json:"passengers,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (b *Booking) HasReturn() bool {
	return b.ReturnFlightID != nil
}

// FlightIDs returns the outbound flight followed by the return flight, if any.
func (b *Booking) FlightIDs() []int64 {
	ids := []int64{b.OutboundFlightID}
	if b.ReturnFlightID != nil {
		ids = append(ids, *b.ReturnFlightID)
	}
	return ids
}

type Passenger struct {
	ID           int64     `json:"passenger_id"`
	BookingID    int64     `json:"booking_id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Meal         *MealType `json:"meal,omitempty"`
	SeatOutbound string    `json:"seat_outbound"`
	SeatReturn   *string   `json:"seat_return,omitempty"`
}
