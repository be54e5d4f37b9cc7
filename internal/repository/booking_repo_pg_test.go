package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{"id", "trip_type", "outbound_flight_id", "return_flight_id", "pnr_outbound", "pnr_return", "contact_name", "contact_email", "total_passengers", "status", "created_at", "updated_at"}

const (
	takeSeats    = `UPDATE flights SET available_seats = available_seats - \$2`
	releaseSeats = `UPDATE flights SET available_seats = available_seats \+ \$2`
)

func oneWayBooking() *domain.Booking {
	meal := domain.MealVeg
	return &domain.Booking{
		TripType:         domain.TripTypeOneWay,
		OutboundFlightID: 1,
		PNROutbound:      "ABC123",
		ContactName:      "Asha",
		ContactEmail:     "asha@example.com",
		TotalPassengers:  2,
		Passengers: []domain.Passenger{
			{Name: "Asha", Age: 30, SeatOutbound: "1A", Meal: &meal},
			{Name: "Ravi", Age: 32, SeatOutbound: "1B"},
		},
	}
}

func TestBookingRepository_Create(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(takeSeats).WithArgs(int64(1), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs("ONE_WAY", int64(1), pgxmock.AnyArg(), "ABC123", pgxmock.AnyArg(), "Asha", "asha@example.com", 2, "CONFIRMED").
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectQuery(`INSERT INTO passengers`).
		WithArgs(int64(7), "Asha", 30, "", pgxmock.AnyArg(), "1A", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(`INSERT INTO passengers`).
		WithArgs(int64(7), "Ravi", 32, "", pgxmock.AnyArg(), "1B", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectCommit()

	booking := oneWayBooking()
	err := NewBookingRepository(mock).Create(context.Background(), booking)

	require.NoError(t, err)
	assert.Equal(t, int64(7), booking.ID)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, int64(7), booking.Passengers[1].BookingID)
	assert.Equal(t, int64(101), booking.Passengers[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CreateRoundTripTakesBothFlights(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	ret := int64(2)
	pnrReturn := "RET001"

	mock.ExpectBegin()
	mock.ExpectExec(takeSeats).WithArgs(int64(1), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(takeSeats).WithArgs(int64(2), 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs("ROUND_TRIP", int64(1), pgxmock.AnyArg(), "OUT001", pgxmock.AnyArg(), "", "", 1, "CONFIRMED").
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(8), now, now))
	mock.ExpectQuery(`INSERT INTO passengers`).
		WithArgs(int64(8), "A", 3, "", pgxmock.AnyArg(), "1A", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(200)))
	mock.ExpectCommit()

	seatReturn := "9C"
	err := NewBookingRepository(mock).Create(context.Background(), &domain.Booking{
		TripType:         domain.TripTypeRoundTrip,
		OutboundFlightID: 1,
		ReturnFlightID:   &ret,
		PNROutbound:      "OUT001",
		PNRReturn:        &pnrReturn,
		TotalPassengers:  1,
		Passengers:       []domain.Passenger{{Name: "A", Age: 3, SeatOutbound: "1A", SeatReturn: &seatReturn}},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CreateInsufficientSeatsRollsBack(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(takeSeats).WithArgs(int64(1), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := NewBookingRepository(mock).Create(context.Background(), oneWayBooking())

	assert.ErrorIs(t, err, ErrInsufficientSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CreateDuplicatePNRRollsBack(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(takeSeats).WithArgs(int64(1), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(anyArgs(9)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_pnr_outbound_key"})
	mock.ExpectRollback()

	err := NewBookingRepository(mock).Create(context.Background(), oneWayBooking())

	assert.ErrorIs(t, err, ErrDuplicatePNR)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CreatePassengerFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(takeSeats).WithArgs(int64(1), 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(anyArgs(9)...).
		WillReturnRows(mock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectQuery(`INSERT INTO passengers`).
		WithArgs(anyArgs(7)...).
		WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	err := NewBookingRepository(mock).Create(context.Background(), oneWayBooking())

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByOutboundPNR(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`FROM bookings WHERE pnr_outbound=\$1`).
		WithArgs("ABC123").
		WillReturnRows(mock.NewRows(bookingCols).
			AddRow(int64(7), "ONE_WAY", int64(1), (*int64)(nil), "ABC123", (*string)(nil), "Asha", "asha@example.com", 2, "CONFIRMED", now, now))

	booking, err := NewBookingRepository(mock).GetByOutboundPNR(context.Background(), "ABC123")

	require.NoError(t, err)
	assert.Equal(t, domain.TripTypeOneWay, booking.TripType)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.False(t, booking.HasReturn())
}

func TestBookingRepository_GetByReturnPNRNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM bookings WHERE pnr_return=\$1`).
		WithArgs("RET001").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewBookingRepository(mock).GetByReturnPNR(context.Background(), "RET001")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepository_ListByContactEmail(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	ret := int64(2)
	pnr := "RET001"
	mock.ExpectQuery(`FROM bookings WHERE contact_email=\$1`).
		WithArgs("asha@example.com").
		WillReturnRows(mock.NewRows(bookingCols).
			AddRow(int64(8), "ROUND_TRIP", int64(1), &ret, "OUT001", &pnr, "Asha", "asha@example.com", 1, "CANCELLED", now, now).
			AddRow(int64(7), "ONE_WAY", int64(1), (*int64)(nil), "ABC123", (*string)(nil), "Asha", "asha@example.com", 2, "CONFIRMED", now, now))

	bookings, err := NewBookingRepository(mock).ListByContactEmail(context.Background(), "asha@example.com")

	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.NotNil(t, bookings[0].ReturnFlightID)
	assert.Equal(t, int64(2), *bookings[0].ReturnFlightID)
	assert.Equal(t, domain.BookingStatusCancelled, bookings[0].Status)
}

func TestBookingRepository_Cancel(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	ret := int64(2)
	pnr := "RET001"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE bookings SET status=\$1`).
		WithArgs("CANCELLED", int64(8), "CONFIRMED").
		WillReturnRows(mock.NewRows(bookingCols).
			AddRow(int64(8), "ROUND_TRIP", int64(1), &ret, "OUT001", &pnr, "Asha", "asha@example.com", 3, "CANCELLED", now, now))
	mock.ExpectExec(releaseSeats).WithArgs(int64(1), 3).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(releaseSeats).WithArgs(int64(2), 3).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	booking, err := NewBookingRepository(mock).Cancel(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CancelTwice(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE bookings SET status=\$1`).
		WithArgs("CANCELLED", int64(8), "CONFIRMED").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewBookingRepository(mock).Cancel(context.Background(), 8)

	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
