package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

// PassengerRepository reads manifests. Passengers are written only by
// BookingRepository.Create, inside the booking transaction.
type PassengerRepository interface {
	ListByBookingID(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
}

type PGPassengerRepository struct {
	db DB
}

func NewPassengerRepository(db DB) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func insertPassenger(ctx context.Context, q querier, p *domain.Passenger) error {
	var meal *string
	if p.Meal != nil {
		m := string(*p.Meal)
		meal = &m
	}
	return q.QueryRow(ctx, `INSERT INTO passengers (booking_id, name, age, gender, meal, seat_outbound, seat_return)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.BookingID, p.Name, p.Age, p.Gender, meal, p.SeatOutbound, p.SeatReturn).Scan(&p.ID)
}

func (r *PGPassengerRepository) ListByBookingID(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, name, age, gender, meal, seat_outbound, seat_return FROM passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var (
			p    domain.Passenger
			meal *string
		)
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Age, &p.Gender, &meal, &p.SeatOutbound, &p.SeatReturn); err != nil {
			return nil, err
		}
		if meal != nil {
			m := domain.MealType(*meal)
			p.Meal = &m
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
