package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type InventoryUseCase interface {
	AddInventory(ctx context.Context, input AddInventoryInput) (*domain.Flight, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context, flights ...domain.Flight) error
}

// AddInventoryInput carries dates as YYYY-MM-DD and times as HH:MM or HH:MM:SS,
// both in the service's location.
type AddInventoryInput struct {
	AirlineID       int64
	FlightNumber    string
	SourceCity      domain.City
	DestinationCity domain.City
	DepartureDate   string
	DepartureTime   string
	ArrivalDate     string
	ArrivalTime     string
	TotalSeats      int
	Price           *float64
	MealAvailable   bool
}

type InventoryService struct {
	airlines repository.AirlineRepository
	flights  repository.FlightRepository
	cache    Cache
	logger   *logrus.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewInventoryService(
	airlines repository.AirlineRepository,
	flights repository.FlightRepository,
	cache Cache,
	logger *logrus.Logger,
) *InventoryService {
	return &InventoryService{
		airlines: airlines,
		flights:  flights,
		cache:    cache,
		logger:   logger,
		loc:      time.Local,
		now:      time.Now,
	}
}

func (s *InventoryService) AddInventory(ctx context.Context, input AddInventoryInput) (*domain.Flight, error) {
	if _, err := s.airlines.GetByID(ctx, input.AirlineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("airline", "Airline not found")
		}
		return nil, fmt.Errorf("get airline %d: %w", input.AirlineID, err)
	}

	departure, arrival, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(input.FlightNumber)
	exists, err := s.flights.ExistsByNumberAndDate(ctx, number, departure)
	if err != nil {
		return nil, fmt.Errorf("check duplicate flight: %w", err)
	}
	if exists {
		return nil, duplicateFlight(number)
	}

	flight := &domain.Flight{
		AirlineID:       input.AirlineID,
		FlightNumber:    number,
		SourceCity:      input.SourceCity,
		DestinationCity: input.DestinationCity,
		DepartureAt:     departure,
		ArrivalAt:       arrival,
		MealAvailable:   input.MealAvailable,
		TotalSeats:      input.TotalSeats,
		Price:           *input.Price,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		if errors.Is(err, repository.ErrDuplicateFlight) {
			return nil, duplicateFlight(number)
		}
		return nil, fmt.Errorf("create flight: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"flight_id":     flight.ID,
		"flight_number": flight.FlightNumber,
	}).Info("flight inventory added")

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx, *flight); err != nil {
			s.logger.WithError(err).WithField("flight_id", flight.ID).Warn("search cache invalidation failed")
		}
	}
	return flight, nil
}

func (s *InventoryService) validate(input AddInventoryInput) (time.Time, time.Time, error) {
	var zero time.Time
	if input.Price == nil {
		return zero, zero, domain.NewValidationError("price", "Price is a required field")
	}
	if *input.Price <= 0 {
		return zero, zero, domain.NewValidationError("price", "Price must be greater than 0")
	}
	if input.TotalSeats <= 0 {
		return zero, zero, domain.NewValidationError("totalSeats", "Seats must be greater than zero")
	}
	if input.SourceCity == "" {
		return zero, zero, domain.NewValidationError("sourceCity", "Source is a required field")
	}
	if input.DestinationCity == "" {
		return zero, zero, domain.NewValidationError("destinationCity", "Destination is a required field")
	}
	if !input.SourceCity.Valid() {
		return zero, zero, domain.NewValidationError("sourceCity", "Unknown city %s", input.SourceCity)
	}
	if !input.DestinationCity.Valid() {
		return zero, zero, domain.NewValidationError("destinationCity", "Unknown city %s", input.DestinationCity)
	}
	if input.SourceCity == input.DestinationCity {
		return zero, zero, domain.NewValidationError("destinationCity", "Source and destination cities cannot be same")
	}
	if strings.TrimSpace(input.FlightNumber) == "" {
		return zero, zero, domain.NewValidationError("flightNumber", "Flight no is a required field")
	}

	departure, err := s.dateTime("departure", input.DepartureDate, input.DepartureTime)
	if err != nil {
		return zero, zero, err
	}
	arrival, err := s.dateTime("arrival", input.ArrivalDate, input.ArrivalTime)
	if err != nil {
		return zero, zero, err
	}

	if !departure.After(s.now()) {
		return zero, zero, domain.NewValidationError("departureDate", "Departure date & time must be in the future")
	}
	if !arrival.After(departure) {
		return zero, zero, domain.NewValidationError("arrivalDate", "Arrival date & time must be AFTER departure date & time")
	}
	return departure, arrival, nil
}

func (s *InventoryService) dateTime(prefix, date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	dateField, timeField := prefix+"Date", prefix+"Time"
	label := strings.ToUpper(prefix[:1]) + prefix[1:]

	if date == "" {
		return time.Time{}, domain.NewValidationError(dateField, "%s date is a required field", label)
	}
	if clock == "" {
		return time.Time{}, domain.NewValidationError(timeField, "%s time is a required field", label)
	}

	day, err := time.ParseInLocation(time.DateOnly, date, s.loc)
	if err != nil {
		return time.Time{}, domain.NewValidationError(dateField, "%s date must be YYYY-MM-DD", label)
	}

	layout := "15:04"
	if strings.Count(clock, ":") == 2 {
		layout = time.TimeOnly
	}
	tod, err := time.ParseInLocation(layout, clock, s.loc)
	if err != nil {
		return time.Time{}, domain.NewValidationError(timeField, "%s time must be HH:MM", label)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, s.loc), nil
}

func duplicateFlight(number string) error {
	return domain.NewValidationError("flightNumber", "Flight %s is already scheduled on this date", number)
}

var _ InventoryUseCase = (*InventoryService)(nil)
