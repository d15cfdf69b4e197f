package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/port"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type HistoryService struct {
	repo port.MovementRepository
}

func NewHistoryService(repo port.MovementRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns the latest movements of a session, newest first. A limit
// outside 1..MaxHistoryLimit falls back to the nearest bound.
func (s *HistoryService) List(ctx context.Context, sessionID string, limit int) ([]domain.Movement, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	movements, err := s.repo.ListMovements(ctx, sessionID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list movements")
	}
	return movements, nil
}
