package port

import (
	"context"

	"github.com/rl1809/stockmap/internal/core/domain"
)

type MovementRepository interface {
	// RecordMovement appends a movement to the session history
	RecordMovement(ctx context.Context, movement domain.Movement) error

	// ListMovements returns the most recent movements first
	ListMovements(ctx context.Context, sessionID string, limit int) ([]domain.Movement, error)
}
