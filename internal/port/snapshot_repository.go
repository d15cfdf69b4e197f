package port

import (
	"context"
	"time"

	"github.com/rl1809/stockmap/internal/core/domain"
)

type SnapshotRepository interface {
	// LoadInventory returns the stored inventory for a session, or nil when none exists
	LoadInventory(ctx context.Context, sessionID string) (*domain.Inventory, error)

	// SaveInventory replaces the session snapshot and restarts its expiry
	SaveInventory(ctx context.Context, sessionID string, inv domain.Inventory, ttl time.Duration) error

	// Touch restarts the snapshot expiry and reports whether the snapshot still exists
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
}
