package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/rl1809/stockmap/internal/core/domain"
)

type movementRow struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Kind      string    `db:"kind"`
	Street    string    `db:"street"`
	Lot       string    `db:"lot"`
	Product   string    `db:"product"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
}

// MySQLAdapter keeps the append-only movement history.
type MySQLAdapter struct {
	db *sqlx.DB
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) RecordMovement(ctx context.Context, movement domain.Movement) error {
	row := movementRow{
		ID:        movement.ID,
		SessionID: movement.SessionID,
		Kind:      string(movement.Kind),
		Street:    movement.Street,
		Lot:       movement.Lot,
		Product:   movement.Product,
		Quantity:  movement.Quantity,
		CreatedAt: movement.CreatedAt,
	}

	_, err := m.db.NamedExecContext(ctx, `
		INSERT INTO movements (id, session_id, kind, street, lot, product, quantity, created_at)
		VALUES (:id, :session_id, :kind, :street, :lot, :product, :quantity, :created_at)`,
		row,
	)
	if err != nil {
		return errors.Wrap(err, "insert movement")
	}
	return nil
}

func (m *MySQLAdapter) ListMovements(ctx context.Context, sessionID string, limit int) ([]domain.Movement, error) {
	var rows []movementRow
	err := m.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, kind, street, lot, product, quantity, created_at
		FROM movements
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query movements")
	}

	movements := make([]domain.Movement, 0, len(rows))
	for _, r := range rows {
		movements = append(movements, domain.Movement{
			ID:        r.ID,
			SessionID: r.SessionID,
			Kind:      domain.MovementKind(r.Kind),
			Street:    r.Street,
			Lot:       r.Lot,
			Product:   r.Product,
			Quantity:  r.Quantity,
			CreatedAt: r.CreatedAt,
		})
	}
	return movements, nil
}
