package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type AirlineRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Airline, error)
}

type PGAirlineRepository struct {
	db DB
}

func NewAirlineRepository(db DB) AirlineRepository {
	return &PGAirlineRepository{db: db}
}

func (r *PGAirlineRepository) GetByID(ctx context.Context, id int64) (*domain.Airline, error) {
	var a domain.Airline
	if err := r.db.QueryRow(ctx, `SELECT id, code, name FROM airlines WHERE id=$1`, id).Scan(&a.ID, &a.Code, &a.Name); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

var _ AirlineRepository = (*PGAirlineRepository)(nil)
