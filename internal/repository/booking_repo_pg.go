package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByOutboundPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	GetByReturnPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByContactEmail(ctx context.Context, email string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, trip_type, outbound_flight_id, return_flight_id, pnr_outbound, pnr_return, contact_name, contact_email, total_passengers, status, created_at, updated_at`

func scanBooking(row scanner) (domain.Booking, error) {
	var (
		b                domain.Booking
		tripType, status string
	)
	err := row.Scan(&b.ID, &tripType, &b.OutboundFlightID, &b.ReturnFlightID, &b.PNROutbound, &b.PNRReturn,
		&b.ContactName, &b.ContactEmail, &b.TotalPassengers, &status, &b.CreatedAt, &b.UpdatedAt)
	b.TripType = domain.TripType(tripType)
	b.Status = domain.BookingStatus(status)
	return b, err
}

// Create takes the seats on every flight of the booking, then stores the
// booking and its passengers, all in one transaction. A flight without enough
// seats left aborts the whole unit with ErrInsufficientSeats.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, flightID := range booking.FlightIDs() {
		res, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`,
			flightID, booking.TotalPassengers)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return fmt.Errorf("flight %d: %w", flightID, ErrInsufficientSeats)
		}
	}

	booking.Status = domain.BookingStatusConfirmed
	err = tx.QueryRow(ctx, `INSERT INTO bookings (trip_type, outbound_flight_id, return_flight_id, pnr_outbound, pnr_return, contact_name, contact_email, total_passengers, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		string(booking.TripType), booking.OutboundFlightID, booking.ReturnFlightID, booking.PNROutbound, booking.PNRReturn,
		booking.ContactName, booking.ContactEmail, booking.TotalPassengers, string(booking.Status)).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return ErrDuplicatePNR
		}
		return err
	}

	for i := range booking.Passengers {
		booking.Passengers[i].BookingID = booking.ID
		if err := insertPassenger(ctx, tx, &booking.Passengers[i]); err != nil {
			return fmt.Errorf("insert passenger %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetByOutboundPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr_outbound=$1`, pnr)
}

func (r *PGBookingRepository) GetByReturnPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr_return=$1`, pnr)
}

func (r *PGBookingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (r *PGBookingRepository) ListByContactEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE contact_email=$1 ORDER BY created_at DESC, id DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// Cancel flips a confirmed booking to CANCELLED and gives its seats back to
// every flight it holds, in one transaction. The status guard makes a second
// cancel, concurrent or not, fail with ErrAlreadyCancelled.
func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3
		RETURNING `+bookingColumns,
		string(domain.BookingStatusCancelled), id, string(domain.BookingStatusConfirmed)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyCancelled
		}
		return nil, err
	}

	for _, flightID := range booking.FlightIDs() {
		res, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1`,
			flightID, booking.TotalPassengers)
		if err != nil {
			return nil, err
		}
		if res.RowsAffected() == 0 {
			return nil, fmt.Errorf("flight %d: %w", flightID, ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &booking, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
