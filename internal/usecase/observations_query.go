package usecase

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	domrepo "KPIPulse/internal/domain/repository"
	"KPIPulse/pkg/util"
)

// ObservationsQuery provides business logic for retrieving raw observations.
type ObservationsQuery struct {
	storage domrepo.Storage
}

func NewObservationsQuery(storage domrepo.Storage) *ObservationsQuery {
	return &ObservationsQuery{storage: storage}
}

type ListObservationsParams struct {
	ScopeID   string
	Category  string
	From      time.Time
	To        time.Time
	Timeframe string
	Limit     int
}

type ListObservationsResult struct {
	ScopeID      string                `json:"scope_id"`
	Category     string                `json:"category,omitempty"`
	From         time.Time             `json:"from"`
	To           time.Time             `json:"to"`
	Count        int                   `json:"count"`
	Observations []*models.Observation `json:"observations"`
}

func (uc *ObservationsQuery) List(ctx context.Context, p ListObservationsParams) (*ListObservationsResult, error) {
	if p.ScopeID == "" {
		return nil, fmt.Errorf("scope required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}
	p.From, p.To = util.AlignFromTo(p.From, p.To, p.Timeframe)

	obs, err := uc.storage.Query(ctx, p.ScopeID, p.Category, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}

	return &ListObservationsResult{
		ScopeID:      p.ScopeID,
		Category:     p.Category,
		From:         p.From,
		To:           p.To,
		Count:        len(obs),
		Observations: obs,
	}, nil
}
