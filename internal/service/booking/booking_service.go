package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error)
	GetTicket(ctx context.Context, pnr string) (*domain.Booking, error)
	GetTicketByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	CancelTicket(ctx context.Context, pnr string) error
	GetHistory(ctx context.Context, email string) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateFlights(ctx context.Context, flights ...domain.Flight) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PassengerInput struct {
	Name         string
	Age          int
	Gender       string
	Meal         string
	SeatOutbound string
	SeatReturn   string
}

type BookFlightInput struct {
	OutboundFlightID int64
	ReturnFlightID   *int64
	TripType         domain.TripType
	ContactName      string
	ContactEmail     string
	Passengers       []PassengerInput
}

const (
	pnrLength          = 6
	defaultPNRAttempts = 5
)

var pnrPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

type BookingService struct {
	bookings    repository.BookingRepository
	flights     repository.FlightRepository
	passengers  repository.PassengerRepository
	cache       Cache
	producer    Producer
	logger      *logrus.Logger
	eventsTopic string
	pnrAttempts int
	newPNR      func() string
}

type BookingServiceOption func(*BookingService)

// WithEvents publishes booking_created and booking_cancelled events to topic.
func WithEvents(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

// WithPNRAttempts bounds how often a booking is retried with a fresh PNR
// after hitting one that is already taken.
func WithPNRAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.pnrAttempts = n
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	passengers repository.PassengerRepository,
	logger *logrus.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		flights:     flights,
		passengers:  passengers,
		logger:      logger,
		pnrAttempts: defaultPNRAttempts,
		newPNR:      generatePNR,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// generatePNR takes the first six hex digits of a random UUID, upper-cased.
func generatePNR() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:pnrLength])
}

func (s *BookingService) BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error) {
	count := len(input.Passengers)
	if count == 0 {
		return nil, domain.NewValidationError("passengers", "At least one passenger is required")
	}

	tripType := input.TripType
	if tripType == "" {
		tripType = domain.TripTypeOneWay
		if input.ReturnFlightID != nil {
			tripType = domain.TripTypeRoundTrip
		}
	}
	if !tripType.Valid() {
		return nil, domain.NewValidationError("tripType", "Unknown trip type %s", input.TripType)
	}
	if tripType == domain.TripTypeRoundTrip && input.ReturnFlightID == nil {
		return nil, domain.NewValidationError("returnFlightId", "Return flight ID is required for round-trip booking")
	}

	outbound, err := s.loadFlight(ctx, input.OutboundFlightID, "Outbound")
	if err != nil {
		return nil, err
	}
	if outbound.AvailableSeats < count {
		return nil, domain.NewValidationError("passengers", "Not enough seats available in outbound flight")
	}

	affected := []domain.Flight{*outbound}
	if input.ReturnFlightID != nil {
		returning, err := s.loadFlight(ctx, *input.ReturnFlightID, "Return")
		if err != nil {
			return nil, err
		}
		if returning.AvailableSeats < count {
			return nil, domain.NewValidationError("passengers", "Not enough seats available in return flight")
		}
		affected = append(affected, *returning)
	}

	passengers, err := buildPassengers(input.Passengers, input.ReturnFlightID != nil)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, domain.NewValidationError("contactName", "Contact name is required")
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, domain.NewValidationError("contactEmail", "Contact email is required")
	}

	booking := &domain.Booking{
		TripType:         tripType,
		OutboundFlightID: input.OutboundFlightID,
		ReturnFlightID:   input.ReturnFlightID,
		ContactName:      strings.TrimSpace(input.ContactName),
		ContactEmail:     strings.TrimSpace(input.ContactEmail),
		TotalPassengers:  count,
		Passengers:       passengers,
	}
	if err := s.create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"pnr":        booking.PNROutbound,
		"booking_id": booking.ID,
		"flight_id":  booking.OutboundFlightID,
		"passengers": count,
	}).Info("booking confirmed")

	s.invalidate(ctx, affected...)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// create stores the booking under a fresh PNR, drawing a new one whenever the
// store reports a collision.
func (s *BookingService) create(ctx context.Context, booking *domain.Booking) error {
	for attempt := 1; ; attempt++ {
		booking.PNROutbound = s.newPNR()
		booking.PNRReturn = nil
		if booking.HasReturn() {
			pnr := s.newPNR()
			booking.PNRReturn = &pnr
		}

		err := s.bookings.Create(ctx, booking)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrDuplicatePNR) && attempt < s.pnrAttempts:
			s.logger.WithField("pnr", booking.PNROutbound).Warn("pnr collision, regenerating")
		case errors.Is(err, repository.ErrInsufficientSeats):
			return domain.NewValidationError("passengers", "Not enough seats available")
		default:
			return fmt.Errorf("create booking: %w", err)
		}
	}
}

func (s *BookingService) loadFlight(ctx context.Context, id int64, leg string) (*domain.Flight, error) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("flight", "%s flight not found", leg)
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return flight, nil
}

func buildPassengers(inputs []PassengerInput, withReturn bool) ([]domain.Passenger, error) {
	passengers := make([]domain.Passenger, 0, len(inputs))
	for i, in := range inputs {
		if in.Age <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].age", i), "Passenger age must be greater than 0")
		}
		seatOut := strings.TrimSpace(in.SeatOutbound)
		if seatOut == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].seatOutbound", i), "Passenger seatOutbound is required")
		}

		p := domain.Passenger{
			Name:         strings.TrimSpace(in.Name),
			Age:          in.Age,
			Gender:       in.Gender,
			SeatOutbound: seatOut,
		}

		if withReturn {
			seatRet := strings.TrimSpace(in.SeatReturn)
			if seatRet == "" {
				return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].seatReturn", i), "Passenger seatReturn is required for round trip bookings")
			}
			p.SeatReturn = &seatRet
		}

		if in.Meal != "" {
			meal, ok := domain.ParseMeal(in.Meal)
			if !ok {
				return nil, domain.NewValidationError(fmt.Sprintf("passengers[%d].meal", i), "Invalid meal type: %s", in.Meal)
			}
			p.Meal = &meal
		}
		passengers = append(passengers, p)
	}
	return passengers, nil
}

// GetTicket looks a booking up by its outbound PNR only.
func (s *BookingService) GetTicket(ctx context.Context, pnr string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByOutboundPNR(ctx, pnr)
	if err != nil {
		return nil, pnrLookupError(pnr, err)
	}
	return s.withPassengers(ctx, booking)
}

// GetTicketByPNR checks the PNR format first and accepts either leg's PNR.
func (s *BookingService) GetTicketByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	if strings.TrimSpace(pnr) == "" {
		return nil, domain.NewValidationError("pnr", "PNR cannot be empty")
	}
	if len(pnr) != pnrLength {
		return nil, domain.NewValidationError("pnr", "PNR must be exactly %d characters", pnrLength)
	}
	if !pnrPattern.MatchString(pnr) {
		return nil, domain.NewValidationError("pnr", "PNR must be alphanumeric")
	}

	booking, err := s.bookings.GetByOutboundPNR(ctx, pnr)
	if errors.Is(err, repository.ErrNotFound) {
		booking, err = s.bookings.GetByReturnPNR(ctx, pnr)
	}
	if err != nil {
		return nil, pnrLookupError(pnr, err)
	}
	return s.withPassengers(ctx, booking)
}

func (s *BookingService) withPassengers(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	passengers, err := s.passengers.ListByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("list passengers of booking %d: %w", booking.ID, err)
	}
	booking.Passengers = passengers
	return booking, nil
}

func (s *BookingService) CancelTicket(ctx context.Context, pnr string) error {
	current, err := s.bookings.GetByOutboundPNR(ctx, pnr)
	if err != nil {
		return pnrLookupError(pnr, err)
	}
	if current.Status == domain.BookingStatusCancelled {
		return alreadyCancelled()
	}

	cancelled, err := s.bookings.Cancel(ctx, current.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCancelled) {
			return alreadyCancelled()
		}
		return fmt.Errorf("cancel booking %d: %w", current.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"pnr":        cancelled.PNROutbound,
		"booking_id": cancelled.ID,
		"passengers": cancelled.TotalPassengers,
	}).Info("booking cancelled")

	var affected []domain.Flight
	for _, id := range cancelled.FlightIDs() {
		flight, err := s.flights.GetByID(ctx, id)
		if err != nil {
			s.logger.WithError(err).WithField("flight_id", id).Warn("load flight for cache invalidation failed")
			continue
		}
		affected = append(affected, *flight)
	}
	s.invalidate(ctx, affected...)
	s.publish(ctx, kafka.EventBookingCancelled, cancelled)
	return nil
}

func (s *BookingService) GetHistory(ctx context.Context, email string) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByContactEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if len(bookings) == 0 {
		return nil, domain.NewNotFoundError("booking", "No bookings found for this email")
	}
	return bookings, nil
}

func (s *BookingService) invalidate(ctx context.Context, flights ...domain.Flight) {
	if s.cache == nil || len(flights) == 0 {
		return
	}
	if err := s.cache.InvalidateFlights(ctx, flights...); err != nil {
		s.logger.WithError(err).Warn("search cache invalidation failed")
	}
}

// publish never fails the request; the booking is already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking)
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.PNROutbound, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"pnr":   booking.PNROutbound,
			"topic": s.eventsTopic,
		}).Warn("failed to publish booking event")
	}
}

func pnrLookupError(pnr string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NewNotFoundError("booking", "PNR not found")
	}
	return fmt.Errorf("get booking %s: %w", pnr, err)
}

func alreadyCancelled() error {
	return domain.NewValidationError("pnr", "Ticket is already cancelled")
}

var _ BookingUseCase = (*BookingService)(nil)
