package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/core/service"
)

type memorySnapshots struct {
	mu   sync.Mutex
	data map[string]domain.Inventory
}

func (m *memorySnapshots) LoadInventory(ctx context.Context, sessionID string) (*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.data[sessionID]
	if !ok {
		return nil, nil
	}
	cp := inv.Clone()
	return &cp, nil
}

func (m *memorySnapshots) SaveInventory(ctx context.Context, sessionID string, inv domain.Inventory, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = inv.Clone()
	return nil
}

func (m *memorySnapshots) Touch(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[sessionID]
	return ok, nil
}

type memoryMovements struct {
	mu        sync.Mutex
	movements []domain.Movement
}

func (m *memoryMovements) RecordMovement(ctx context.Context, movement domain.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movement)
	return nil
}

func (m *memoryMovements) ListMovements(ctx context.Context, sessionID string, limit int) ([]domain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Movement
	for i := len(m.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if m.movements[i].SessionID == sessionID {
			out = append(out, m.movements[i])
		}
	}
	return out, nil
}

// newTestServices returns an inventory service whose movements are recorded
// synchronously enough for tests: a single worker drains the queue until
// cleanup.
func newTestServices(t *testing.T) (*service.InventoryService, *service.HistoryService, *memoryMovements) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	snapshots := &memorySnapshots{data: make(map[string]domain.Inventory)}
	movements := &memoryMovements{}

	inv := service.NewInventoryService(snapshots, service.DefaultSnapshotTTL, 100, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		service.RunMovementWorker(0, inv.GetMovementQueue(), movements, logger)
	}()
	t.Cleanup(func() {
		inv.Close()
		<-done
	})

	return inv, service.NewHistoryService(movements), movements
}
