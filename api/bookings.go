package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *logrus.Logger
	limit   gin.HandlerFunc
}

type passengerRequest struct {
	Name         string `json:"name" binding:"required"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Meal         string `json:"meal" binding:"omitempty,meal"`
	SeatOutbound string `json:"seatOutbound"`
	SeatReturn   string `json:"seatReturn"`
}

type bookFlightRequest struct {
	OutboundFlightID int64              `json:"outboundFlightId"`
	ReturnFlightID   *int64             `json:"returnFlightId"`
	TripType         string             `json:"tripType" binding:"omitempty,triptype"`
	ContactName      string             `json:"contactName" binding:"required"`
	ContactEmail     string             `json:"contactEmail" binding:"required,email"`
	Passengers       []passengerRequest `json:"passengers" binding:"dive"`
}

// NewBookingHandler puts limit, when given, in front of the booking and
// cancellation routes.
func NewBookingHandler(service booking.BookingUseCase, logger *logrus.Logger, limit gin.HandlerFunc) *BookingHandler {
	return &BookingHandler{service: service, logger: logger, limit: limit}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	guarded := []gin.HandlerFunc{}
	if h.limit != nil {
		guarded = append(guarded, h.limit)
	}

	router.POST("/booking/:flightId", append(guarded, h.bookFlight)...)
	router.GET("/ticket/:pnr", h.getTicket)
	router.GET("/booking/history/:email", h.history)
	router.DELETE("/booking/cancel/:pnr", append(guarded, h.cancel)...)
}

func (h *BookingHandler) bookFlight(c *gin.Context) {
	flightID, err := strconv.ParseInt(c.Param("flightId"), 10, 64)
	if err != nil || flightID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id", "field": "flightId"})
		return
	}

	var req bookFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if req.OutboundFlightID != 0 && req.OutboundFlightID != flightID {
		writeError(c, h.logger, domain.NewValidationError("outboundFlightId", "Outbound flight ID does not match the flight in the path"))
		return
	}

	passengers := make([]booking.PassengerInput, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		passengers = append(passengers, booking.PassengerInput{
			Name:         p.Name,
			Age:          p.Age,
			Gender:       p.Gender,
			Meal:         p.Meal,
			SeatOutbound: p.SeatOutbound,
			SeatReturn:   p.SeatReturn,
		})
	}

	created, err := h.service.BookFlight(c.Request.Context(), booking.BookFlightInput{
		OutboundFlightID: flightID,
		ReturnFlightID:   req.ReturnFlightID,
		TripType:         domain.TripType(req.TripType),
		ContactName:      req.ContactName,
		ContactEmail:     req.ContactEmail,
		Passengers:       passengers,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) getTicket(c *gin.Context) {
	ticket, err := h.service.GetTicketByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *BookingHandler) history(c *gin.Context) {
	bookings, err := h.service.GetHistory(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	if err := h.service.CancelTicket(c.Request.Context(), c.Param("pnr")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}
