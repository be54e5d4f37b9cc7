package search

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sirupsen/logrus"
)

type SearchUseCase interface {
	Search(ctx context.Context, input SearchInput) ([]domain.Flight, error)
}

type FlightFinder interface {
	Search(ctx context.Context, source, destination domain.City, date time.Time) ([]domain.Flight, error)
}

type Cache interface {
	GetSearch(ctx context.Context, source, destination domain.City, date time.Time) ([]domain.Flight, error)
	SetSearch(ctx context.Context, source, destination domain.City, date time.Time, flights []domain.Flight) error
}

type SearchInput struct {
	SourceCity      domain.City
	DestinationCity domain.City
	TravelDate      time.Time
	TripType        domain.TripType
	ReturnDate      *time.Time
}

type SearchService struct {
	flights FlightFinder
	cache   Cache
	logger  *logrus.Logger
	now     func() time.Time
}

// NewSearchService accepts a nil cache; searches then always hit the store.
func NewSearchService(flights FlightFinder, cache Cache, logger *logrus.Logger) *SearchService {
	return &SearchService{flights: flights, cache: cache, logger: logger, now: time.Now}
}

// Search returns the outbound flights on the exact travel date. For a round
// trip the return date is only validated.
//
// A result read before a booking commits can be cached after that booking's
// invalidation, so cached seat counts may lag by up to the cache TTL. Seat
// availability is always rechecked against the database when booking.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]domain.Flight, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	date := domain.DateOf(input.TravelDate)
	if s.cache != nil {
		cached, err := s.cache.GetSearch(ctx, input.SourceCity, input.DestinationCity, date)
		if err != nil {
			s.logger.WithError(err).Warn("search cache read failed")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	flights, err := s.flights.Search(ctx, input.SourceCity, input.DestinationCity, date)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	if len(flights) == 0 {
		return nil, domain.NewNotFoundError("flight", "No outbound flights found")
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, input.SourceCity, input.DestinationCity, date, flights); err != nil {
			s.logger.WithError(err).Warn("search cache write failed")
		}
	}
	return flights, nil
}

func (s *SearchService) validate(input SearchInput) error {
	if input.SourceCity == "" || input.DestinationCity == "" {
		return domain.NewValidationError("sourceCity", "Source and destination are required")
	}
	if !input.SourceCity.Valid() {
		return domain.NewValidationError("sourceCity", "Unknown city %s", input.SourceCity)
	}
	if !input.DestinationCity.Valid() {
		return domain.NewValidationError("destinationCity", "Unknown city %s", input.DestinationCity)
	}
	if input.SourceCity == input.DestinationCity {
		return domain.NewValidationError("destinationCity", "Source and destination cannot be the same")
	}
	if input.TravelDate.IsZero() {
		return domain.NewValidationError("travelDate", "Travel date is required")
	}

	travel := domain.DateOf(input.TravelDate)
	if travel.Before(domain.DateOf(s.now())) {
		return domain.NewValidationError("travelDate", "Travel date cannot be in the past")
	}

	if input.TripType == domain.TripTypeRoundTrip {
		if input.ReturnDate == nil || input.ReturnDate.IsZero() {
			return domain.NewValidationError("returnDate", "Return date is required for round-trip")
		}
		if domain.DateOf(*input.ReturnDate).Before(travel) {
			return domain.NewValidationError("returnDate", "Return date cannot be before travel date")
		}
	}
	return nil
}

var _ SearchUseCase = (*SearchService)(nil)
