package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type FlightRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, source, destination domain.City, date time.Time) ([]domain.Flight, error)
	ExistsByNumberAndDate(ctx context.Context, flightNumber string, date time.Time) (bool, error)
	Create(ctx context.Context, flight *domain.Flight) error
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, airline_id, flight_number, source_city, destination_city, departure_at, arrival_at, meal_available, total_seats, available_seats, price, created_at, updated_at`

func scanFlight(row scanner) (domain.Flight, error) {
	var (
		f           domain.Flight
		source, dst string
	)
	err := row.Scan(&f.ID, &f.AirlineID, &f.FlightNumber, &source, &dst, &f.DepartureAt, &f.ArrivalAt,
		&f.MealAvailable, &f.TotalSeats, &f.AvailableSeats, &f.Price, &f.CreatedAt, &f.UpdatedAt)
	f.SourceCity = domain.City(source)
	f.DestinationCity = domain.City(dst)
	return f, err
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, source, destination domain.City, date time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE source_city=$1 AND destination_city=$2 AND departure_date=$3
		ORDER BY departure_at`, string(source), string(destination), domain.DateOf(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) ExistsByNumberAndDate(ctx context.Context, flightNumber string, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE flight_number=$1 AND departure_date=$2)`,
		flightNumber, domain.DateOf(date)).Scan(&exists)
	return exists, err
}

// Create inserts the flight with every seat available. The unique key on
// (flight_number, departure_date) backs up the caller's duplicate check.
func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	flight.AvailableSeats = flight.TotalSeats
	err := r.db.QueryRow(ctx, `INSERT INTO flights (airline_id, flight_number, source_city, destination_city, departure_date, departure_at, arrival_at, meal_available, total_seats, available_seats, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		flight.AirlineID, flight.FlightNumber, string(flight.SourceCity), string(flight.DestinationCity),
		flight.DepartureDate(), flight.DepartureAt, flight.ArrivalAt, flight.MealAvailable,
		flight.TotalSeats, flight.AvailableSeats, flight.Price).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if _, ok := uniqueConstraint(err); ok {
		return ErrDuplicateFlight
	}
	return err
}

var _ FlightRepository = (*PGFlightRepository)(nil)
