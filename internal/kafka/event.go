package kafka

import (
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	Type             string    `json:"type"`
	BookingID        int64     `json:"booking_id"`
	PNR              string    `json:"pnr"`
	ReturnPNR        string    `json:"return_pnr,omitempty"`
	TripType         string    `json:"trip_type"`
	OutboundFlightID int64     `json:"outbound_flight_id"`
	ReturnFlightID   int64     `json:"return_flight_id,omitempty"`
	ContactName      string    `json:"contact_name"`
	ContactEmail     string    `json:"contact_email"`
	Passengers       int       `json:"passengers"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

func (e BookingEvent) EventType() string { return e.Type }

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	event := BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		PNR:              b.PNROutbound,
		TripType:         string(b.TripType),
		OutboundFlightID: b.OutboundFlightID,
		ContactName:      b.ContactName,
		ContactEmail:     b.ContactEmail,
		Passengers:       b.TotalPassengers,
		Status:           string(b.Status),
		OccurredAt:       time.Now().UTC(),
	}
	if b.PNRReturn != nil {
		event.ReturnPNR = *b.PNRReturn
	}
	if b.ReturnFlightID != nil {
		event.ReturnFlightID = *b.ReturnFlightID
	}
	return event
}
