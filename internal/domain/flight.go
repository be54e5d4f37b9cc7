package domain

import (
	"strings"
	"time"
)

type City string

const (
	CityDelhi     City = "DELHI"
	CityMumbai    City = "MUMBAI"
	CityBangalore City = "BANGALORE"
	CityChennai   City = "CHENNAI"
	CityKolkata   City = "KOLKATA"
	CityHyderabad City = "HYDERABAD"
	CityPune      City = "PUNE"
	CityAhmedabad City = "AHMEDABAD"
	CityGoa       City = "GOA"
	CityJaipur    City = "JAIPUR"
)

var cities = map[City]struct{}{
	CityDelhi:     {},
	CityMumbai:    {},
	CityBangalore: {},
	CityChennai:   {},
	CityKolkata:   {},
	CityHyderabad: {},
	CityPune:      {},
	CityAhmedabad: {},
	CityGoa:       {},
	CityJaipur:    {},
}

// ParseCity is case-insensitive. The empty string is not a city.
func ParseCity(s string) (City, bool) {
	c := City(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := cities[c]
	return c, ok
}

func (c City) Valid() bool {
	_, ok := cities[c]
	return ok
}

type Airline struct {
	ID   int64  `json:"airline_id"`
	Code string `json:"airline_code"`
	Name string `json:"airline_name"`
}

type Flight struct {
	ID              int64     `json:"flight_id"`
	AirlineID       int64     `json:"airline_id"`
	FlightNumber    string    `json:"flight_number"`
	SourceCity      City      `json:"source_city"`
	DestinationCity City      `json:"destination_city"`
	DepartureAt     time.Time `json:"departure_at"`
	ArrivalAt       time.Time `json:"arrival_at"`
	MealAvailable   bool      `json:"meal_available"`
	TotalSeats      int       `json:"total_seats"`
	AvailableSeats  int       `json:"available_seats"`
	Price           float64   `json:"price"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DepartureDate is the calendar day the flight leaves on, used for route search.
func (f Flight) DepartureDate() time.Time {
	return DateOf(f.DepartureAt)
}

// DateOf drops the clock from t and returns its calendar date as UTC midnight,
// so dates from different locations compare by day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SeatLedger is one flight's seat counters next to the passengers its
// confirmed bookings hold.
type SeatLedger struct {
	FlightID         int64
	FlightNumber     string
	TotalSeats       int
	AvailableSeats   int
	BookedPassengers int
}

// Drift is zero when every seat is either available or held by a confirmed
// booking. A positive drift means seats leaked, a negative one means oversale.
func (l SeatLedger) Drift() int {
	return l.TotalSeats - l.AvailableSeats - l.BookedPassengers
}
