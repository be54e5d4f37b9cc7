package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type SeatLedgerRepository interface {
	ListSeatLedger(ctx context.Context) ([]domain.SeatLedger, error)
}

type PGSeatLedgerRepository struct {
	db DB
}

func NewSeatLedgerRepository(db DB) SeatLedgerRepository {
	return &PGSeatLedgerRepository{db: db}
}

// ListSeatLedger reports, per flight, the seat counters next to the number of
// passengers held by confirmed bookings on either leg.
func (r *PGSeatLedgerRepository) ListSeatLedger(ctx context.Context) ([]domain.SeatLedger, error) {
	rows, err := r.db.Query(ctx, `SELECT f.id, f.flight_number, f.total_seats, f.available_seats,
			COALESCE((SELECT SUM(b.total_passengers) FROM bookings b
				WHERE b.status=$1 AND b.outbound_flight_id=f.id), 0)
			+ COALESCE((SELECT SUM(b.total_passengers) FROM bookings b
				WHERE b.status=$1 AND b.return_flight_id=f.id), 0) AS booked
		FROM flights f
		ORDER BY f.id`, string(domain.BookingStatusConfirmed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledger []domain.SeatLedger
	for rows.Next() {
		var l domain.SeatLedger
		if err := rows.Scan(&l.FlightID, &l.FlightNumber, &l.TotalSeats, &l.AvailableSeats, &l.BookedPassengers); err != nil {
			return nil, err
		}
		ledger = append(ledger, l)
	}
	return ledger, rows.Err()
}

var _ SeatLedgerRepository = (*PGSeatLedgerRepository)(nil)
