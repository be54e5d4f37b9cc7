package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/Domenick1991/flightbooking/internal/service/search"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FlightHandler struct {
	search    search.SearchUseCase
	inventory inventory.InventoryUseCase
	logger    *logrus.Logger
}

type searchRequest struct {
	SourceCity      string `json:"sourceCity" binding:"omitempty,city"`
	DestinationCity string `json:"destinationCity" binding:"omitempty,city"`
	TravelDate      string `json:"travelDate"`
	TripType        string `json:"tripType" binding:"omitempty,triptype"`
	ReturnDate      string `json:"returnDate"`
}

type addInventoryRequest struct {
	AirlineID       int64    `json:"airlineId" binding:"required"`
	FlightNumber    string   `json:"flightNumber"`
	SourceCity      string   `json:"sourceCity" binding:"omitempty,city"`
	DestinationCity string   `json:"destinationCity" binding:"omitempty,city"`
	DepartureDate   string   `json:"departureDate"`
	DepartureTime   string   `json:"departureTime"`
	ArrivalDate     string   `json:"arrivalDate"`
	ArrivalTime     string   `json:"arrivalTime"`
	TotalSeats      int      `json:"totalSeats"`
	Price           *float64 `json:"price"`
	MealAvailable   bool     `json:"mealAvailable"`
}

func NewFlightHandler(searcher search.SearchUseCase, inv inventory.InventoryUseCase, logger *logrus.Logger) *FlightHandler {
	return &FlightHandler{search: searcher, inventory: inv, logger: logger}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.searchFlights)
	router.POST("/airline/inventory/add", h.addInventory)
}

func (h *FlightHandler) searchFlights(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	travel, err := parseDate("travelDate", req.TravelDate)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	input := search.SearchInput{
		SourceCity:      city(req.SourceCity),
		DestinationCity: city(req.DestinationCity),
		TravelDate:      travel,
		TripType:        domain.TripType(req.TripType),
	}
	if req.ReturnDate != "" {
		ret, err := parseDate("returnDate", req.ReturnDate)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		input.ReturnDate = &ret
	}

	flights, err := h.search.Search(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) addInventory(c *gin.Context) {
	var req addInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	flight, err := h.inventory.AddInventory(c.Request.Context(), inventory.AddInventoryInput{
		AirlineID:       req.AirlineID,
		FlightNumber:    req.FlightNumber,
		SourceCity:      city(req.SourceCity),
		DestinationCity: city(req.DestinationCity),
		DepartureDate:   req.DepartureDate,
		DepartureTime:   req.DepartureTime,
		ArrivalDate:     req.ArrivalDate,
		ArrivalTime:     req.ArrivalTime,
		TotalSeats:      req.TotalSeats,
		Price:           req.Price,
		MealAvailable:   req.MealAvailable,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

// city leaves an empty value empty so the service can report it as missing.
func city(s string) domain.City {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	c, _ := domain.ParseCity(s)
	return c
}

// parseDate returns the zero time for an empty value.
func parseDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "%s must be YYYY-MM-DD", field)
	}
	return t, nil
}
