package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/stockmap/internal/core/domain"
	"github.com/rl1809/stockmap/internal/port"
)

const recordTimeout = 5 * time.Second

// RunMovementWorker drains queue into repo until the queue is closed.
// A failed write is logged and the movement is lost; snapshots stay the
// source of truth.
func RunMovementWorker(id int, queue <-chan domain.Movement, repo port.MovementRepository, log logrus.FieldLogger) {
	log = log.WithField("worker", id)
	for m := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)

		if err := repo.RecordMovement(ctx, m); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"movement": m.ID,
				"kind":     m.Kind,
			}).Error("failed to record movement")
		} else {
			log.WithField("movement", m.ID).Debug("recorded movement")
		}

		cancel()
	}
}
