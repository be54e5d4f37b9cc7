package audit

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

// Auditor checks that every flight's seats are either available or held by a
// confirmed booking.
type Auditor struct {
	ledger repository.SeatLedgerRepository
	logger *logrus.Logger
}

func NewAuditor(ledger repository.SeatLedgerRepository, logger *logrus.Logger) *Auditor {
	return &Auditor{ledger: ledger, logger: logger}
}

// Run logs one warning per drifting flight and returns those flights. It never
// repairs counters.
func (a *Auditor) Run(ctx context.Context) ([]domain.SeatLedger, error) {
	entries, err := a.ledger.ListSeatLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seat ledger: %w", err)
	}

	var drifted []domain.SeatLedger
	for _, e := range entries {
		if e.Drift() == 0 {
			continue
		}
		drifted = append(drifted, e)
		a.logger.WithFields(logrus.Fields{
			"flight_id":         e.FlightID,
			"flight_number":     e.FlightNumber,
			"total_seats":       e.TotalSeats,
			"available_seats":   e.AvailableSeats,
			"booked_passengers": e.BookedPassengers,
			"drift":             e.Drift(),
		}).Warn("seat ledger drift")
	}

	a.logger.WithFields(logrus.Fields{
		"flights": len(entries),
		"drifted": len(drifted),
	}).Info("seat audit finished")
	return drifted, nil
}
