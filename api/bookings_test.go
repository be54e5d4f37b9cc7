package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) BookFlight(ctx context.Context, input booking.BookFlightInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetTicket(ctx context.Context, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetTicketByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelTicket(ctx context.Context, pnr string) error {
	args := m.Called(ctx, pnr)
	return args.Error(0)
}

func (m *MockBookingUseCase) GetHistory(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func bookingRouter(t *testing.T, service booking.BookingUseCase, limit gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())
	logger, _ := test.NewNullLogger()

	r := gin.New()
	NewBookingHandler(service, logger, limit).Register(r.Group("/api/v1.0/flight"))
	return r
}

func TestBookingHandler_bookFlight(t *testing.T) {
	service := new(MockBookingUseCase)
	returnID := int64(8)
	service.On("BookFlight", mock.Anything, booking.BookFlightInput{
		OutboundFlightID: 3,
		ReturnFlightID:   &returnID,
		TripType:         domain.TripTypeRoundTrip,
		ContactName:      "Asha Rao",
		ContactEmail:     "asha@example.com",
		Passengers: []booking.PassengerInput{
			{Name: "Asha", Age: 30, Gender: "F", Meal: "veg", SeatOutbound: "12A", SeatReturn: "14C"},
		},
	}).Return(&domain.Booking{ID: 1, PNROutbound: "ABC123", Status: domain.BookingStatusConfirmed, TotalPassengers: 1}, nil)

	w := postJSON(bookingRouter(t, service, nil), "/api/v1.0/flight/booking/3", map[string]any{
		"returnFlightId": 8,
		"tripType":       "ROUND_TRIP",
		"contactName":    "Asha Rao",
		"contactEmail":   "asha@example.com",
		"passengers": []map[string]any{
			{"name": "Asha", "age": 30, "gender": "F", "meal": "veg", "seatOutbound": "12A", "seatReturn": "14C"},
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var got domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ABC123", got.PNROutbound)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	service.AssertExpectations(t)
}

func TestBookingHandler_bookFlightBadRequests(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"contactName":  "Asha",
			"contactEmail": "asha@example.com",
			"passengers":   []map[string]any{{"name": "Asha", "age": 30, "seatOutbound": "1A"}},
		}
	}

	tests := []struct {
		name   string
		path   string
		mutate func(map[string]any)
		want   string
	}{
		{"non numeric flight id", "/api/v1.0/flight/booking/abc", func(map[string]any) {}, `"field":"flightId"`},
		{"bad email", "/api/v1.0/flight/booking/3", func(b map[string]any) { b["contactEmail"] = "nope" }, `"contactEmail":"must be a valid email address"`},
		{"unknown meal", "/api/v1.0/flight/booking/3", func(b map[string]any) {
			b["passengers"] = []map[string]any{{"name": "A", "age": 3, "seatOutbound": "1A", "meal": "pizza"}}
		}, `"passengers[0].meal":"unknown meal type pizza"`},
		{"bad trip type", "/api/v1.0/flight/booking/3", func(b map[string]any) { b["tripType"] = "MULTI" }, `"tripType"`},
		{"outbound id mismatch", "/api/v1.0/flight/booking/3", func(b map[string]any) { b["outboundFlightId"] = 4 }, `"field":"outboundFlightId"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockBookingUseCase)
			body := valid()
			tt.mutate(body)

			w := postJSON(bookingRouter(t, service, nil), tt.path, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			service.AssertNotCalled(t, "BookFlight", mock.Anything, mock.Anything)
		})
	}
}

func TestBookingHandler_bookFlightNoSeats(t *testing.T) {
	service := new(MockBookingUseCase)
	service.On("BookFlight", mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("passengers", "Not enough seats available in outbound flight"))

	w := postJSON(bookingRouter(t, service, nil), "/api/v1.0/flight/booking/3", map[string]any{
		"contactName":  "Asha",
		"contactEmail": "asha@example.com",
		"passengers":   []map[string]any{{"name": "Asha", "age": 30, "seatOutbound": "1A"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Not enough seats available in outbound flight","field":"passengers"}`, w.Body.String())
}

func TestBookingHandler_getTicket(t *testing.T) {
	service := new(MockBookingUseCase)
	service.On("GetTicketByPNR", mock.Anything, "ABC123").
		Return(&domain.Booking{ID: 1, PNROutbound: "ABC123", Passengers: []domain.Passenger{{Name: "Asha"}}}, nil)
	service.On("GetTicketByPNR", mock.Anything, "ZZZ999").
		Return(nil, domain.NewNotFoundError("booking", "PNR not found"))

	r := bookingRouter(t, service, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1.0/flight/ticket/ABC123", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pnr_outbound":"ABC123"`)
	assert.Contains(t, w.Body.String(), `"name":"Asha"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1.0/flight/ticket/ZZZ999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"PNR not found"}`, w.Body.String())
}

func TestBookingHandler_history(t *testing.T) {
	service := new(MockBookingUseCase)
	service.On("GetHistory", mock.Anything, "asha@example.com").
		Return([]domain.Booking{{ID: 1}, {ID: 2}}, nil)

	w := httptest.NewRecorder()
	bookingRouter(t, service, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1.0/flight/booking/history/asha@example.com", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestBookingHandler_cancel(t *testing.T) {
	service := new(MockBookingUseCase)
	service.On("CancelTicket", mock.Anything, "ABC123").Return(nil)
	service.On("CancelTicket", mock.Anything, "OLD001").
		Return(domain.NewValidationError("pnr", "Ticket is already cancelled"))

	r := bookingRouter(t, service, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1.0/flight/booking/cancel/ABC123", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Booking cancelled successfully"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1.0/flight/booking/cancel/OLD001", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Ticket is already cancelled","field":"pnr"}`, w.Body.String())
}

func TestBookingHandler_limitGuardsMutations(t *testing.T) {
	service := new(MockBookingUseCase)
	service.On("GetTicketByPNR", mock.Anything, "ABC123").Return(&domain.Booking{ID: 1}, nil)
	block := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
	r := bookingRouter(t, service, block)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1.0/flight/booking/cancel/ABC123", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	service.AssertNotCalled(t, "CancelTicket", mock.Anything, mock.Anything)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1.0/flight/ticket/ABC123", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWriteError_CreateTestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, logger, context.DeadlineExceeded)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request failed", hook.LastEntry().Message)
}
