package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/port"
)

// DefaultSnapshotTTL keeps an untouched session for a week.
const DefaultSnapshotTTL = 7 * 24 * time.Hour

// MaxSessionIDLength matches the movement log's session_id column.
const MaxSessionIDLength = 255

var (
	ErrSessionRequired = errors.New("session id required")
	ErrSessionTooLong  = errors.New("session id too long")
)

func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if len(sessionID) > MaxSessionIDLength {
		return ErrSessionTooLong
	}
	return nil
}

type session struct {
	mu       sync.Mutex
	inv      *domain.Inventory
	lastSeen time.Time
}

// InventoryService owns one Inventory per session. Calls for the same session
// run one at a time; every successful mutation is written back to the
// snapshot store and queued as a movement.
type InventoryService struct {
	store port.SnapshotRepository
	ttl   time.Duration
	log   logrus.FieldLogger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	queueMu       sync.RWMutex
	closed        bool
	movementQueue chan domain.Movement
}

func NewInventoryService(store port.SnapshotRepository, ttl time.Duration, queueSize int, log logrus.FieldLogger) *InventoryService {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &InventoryService{
		store:         store,
		ttl:           ttl,
		log:           log,
		now:           time.Now,
		sessions:      make(map[string]*session),
		movementQueue: make(chan domain.Movement, queueSize),
	}
}

func (s *InventoryService) AddStreet(ctx context.Context, sessionID, name string) error {
	return s.mutate(ctx, sessionID, domain.MovementStreetAdded, name, "", func(inv *domain.Inventory) error {
		return inv.AddStreet(name)
	})
}

func (s *InventoryService) AddLot(ctx context.Context, sessionID, street, lot string) error {
	return s.mutate(ctx, sessionID, domain.MovementLotAdded, street, lot, func(inv *domain.Inventory) error {
		return inv.AddLot(street, lot)
	})
}

func (s *InventoryService) AssignProduct(ctx context.Context, sessionID, street, lot, product string, quantity int) error {
	return s.mutate(ctx, sessionID, domain.MovementProductAssigned, street, lot, func(inv *domain.Inventory) error {
		return inv.AssignProduct(street, lot, product, quantity)
	})
}

func (s *InventoryService) EditProduct(ctx context.Context, sessionID, street, lot, product string, quantity int) error {
	return s.mutate(ctx, sessionID, domain.MovementProductEdited, street, lot, func(inv *domain.Inventory) error {
		return inv.EditProduct(street, lot, product, quantity)
	})
}

func (s *InventoryService) DeleteProduct(ctx context.Context, sessionID, street, lot string) error {
	return s.mutate(ctx, sessionID, domain.MovementProductDeleted, street, lot, func(inv *domain.Inventory) error {
		return inv.DeleteProduct(street, lot)
	})
}

func (s *InventoryService) MarkSold(ctx context.Context, sessionID, street, lot string) error {
	return s.mutate(ctx, sessionID, domain.MovementSold, street, lot, func(inv *domain.Inventory) error {
		return inv.MarkSold(street, lot)
	})
}

func (s *InventoryService) MarkDepreciated(ctx context.Context, sessionID, street, lot string) error {
	return s.mutate(ctx, sessionID, domain.MovementDepreciated, street, lot, func(inv *domain.Inventory) error {
		return inv.MarkDepreciated(street, lot)
	})
}

func (s *InventoryService) FindByProduct(ctx context.Context, sessionID, product string) (domain.Location, error) {
	var loc domain.Location
	err := s.read(ctx, sessionID, func(inv domain.Inventory) error {
		var err error
		loc, err = inv.FindByProduct(product)
		return err
	})
	return loc, err
}

// Inventory returns a copy of the session's street/lot tree.
func (s *InventoryService) Inventory(ctx context.Context, sessionID string) (domain.Inventory, error) {
	var out domain.Inventory
	err := s.read(ctx, sessionID, func(inv domain.Inventory) error {
		out = inv.Clone()
		return nil
	})
	return out, err
}

func (s *InventoryService) Report(ctx context.Context, sessionID string) (domain.Report, error) {
	var report domain.Report
	err := s.read(ctx, sessionID, func(inv domain.Inventory) error {
		report = domain.BuildReport(inv)
		return nil
	})
	return report, err
}

func (s *InventoryService) GetMovementQueue() <-chan domain.Movement {
	return s.movementQueue
}

func (s *InventoryService) Close() {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.movementQueue)
}

// Sweep drops sessions idle for longer than the snapshot TTL. A dropped
// session is reloaded from the snapshot store on its next call.
func (s *InventoryService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (s *InventoryService) mutate(ctx context.Context, sessionID string, kind domain.MovementKind, street, lot string, apply func(inv *domain.Inventory) error) error {
	sess, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	if err := apply(sess.inv); err != nil {
		return err
	}

	s.persist(ctx, sessionID, *sess.inv)

	movement := domain.Movement{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Kind:      kind,
		Street:    street,
		Lot:       lot,
		CreatedAt: s.now().UTC(),
	}
	if l, ok := sess.inv.Lot(street, lot); ok {
		movement.Product = l.Product
		movement.Quantity = l.Quantity
	}
	s.enqueue(movement)

	return nil
}

func (s *InventoryService) read(ctx context.Context, sessionID string, view func(inv domain.Inventory) error) error {
	sess, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	err = view(*sess.inv)
	s.touch(ctx, sessionID, *sess.inv)
	return err
}

// acquire returns the session locked and loaded.
func (s *InventoryService) acquire(ctx context.Context, sessionID string) (*session, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = s.now()
	s.mu.Unlock()

	sess.mu.Lock()
	if sess.inv == nil {
		sess.inv = s.load(ctx, sessionID)
	}
	return sess, nil
}

// load never fails: a missing or unreadable snapshot starts an empty inventory.
func (s *InventoryService) load(ctx context.Context, sessionID string) *domain.Inventory {
	inv, err := s.store.LoadInventory(ctx, sessionID)
	if err != nil {
		s.log.WithError(err).WithField("session", sessionID).Warn("load snapshot failed, starting empty inventory")
		return &domain.Inventory{}
	}
	if inv == nil {
		return &domain.Inventory{}
	}
	return inv
}

func (s *InventoryService) persist(ctx context.Context, sessionID string, inv domain.Inventory) {
	if err := s.store.SaveInventory(ctx, sessionID, inv, s.ttl); err != nil {
		s.log.WithError(err).WithField("session", sessionID).Error("save snapshot failed")
	}
}

// touch keeps a session that is only read from expiring in the store. A
// snapshot that has already expired is written back from memory.
func (s *InventoryService) touch(ctx context.Context, sessionID string, inv domain.Inventory) {
	ok, err := s.store.Touch(ctx, sessionID, s.ttl)
	if err != nil {
		s.log.WithError(err).WithField("session", sessionID).Warn("refresh snapshot expiry failed")
		return
	}
	if !ok && len(inv.Streets) > 0 {
		s.persist(ctx, sessionID, inv)
	}
}

func (s *InventoryService) enqueue(m domain.Movement) {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.movementQueue <- m:
	default:
		s.log.WithFields(logrus.Fields{
			"session": m.SessionID,
			"kind":    m.Kind,
		}).Warn("movement queue full, dropping movement")
	}
}
