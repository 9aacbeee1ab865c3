// Package expiry moves orders that were never paid out of pending. The
// sweep drives each candidate through the same transition executor as staff
// requests, so a sweep racing a staff member resolves through the same
// conditional write: one side commits, the other observes a conflict.
package expiry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hudibaba0001/Resturant-sub000/internal/auth"
	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
	"github.com/hudibaba0001/Resturant-sub000/internal/orders"
)

const expiryReason = "payment window elapsed"

// StaleLister finds candidate orders. The listing is advisory: the
// conditional write re-checks the status, so stale results are harmless.
type StaleLister interface {
	ListStalePending(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Transitioner is the slice of the executor the sweeper needs.
type Transitioner interface {
	Transition(ctx context.Context, req orders.TransitionRequest) (*domain.Order, error)
}

type Sweeper struct {
	store        StaleLister
	transitioner Transitioner
	ttl          time.Duration
	interval     time.Duration
	logger       *slog.Logger
}

func NewSweeper(store StaleLister, transitioner Transitioner, ttl, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:        store,
		transitioner: transitioner,
		ttl:          ttl,
		interval:     interval,
		logger:       logger,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ids, err := s.store.ListStalePending(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		s.logger.Error("failed to list stale pending orders", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	expired := 0
	for _, id := range ids {
		_, err := s.transitioner.Transition(ctx, orders.TransitionRequest{
			OrderID:   id,
			Target:    domain.OrderStatusExpired,
			Reason:    expiryReason,
			Principal: auth.SystemPrincipal(),
		})
		switch {
		case err == nil:
			expired++
		case isOvertaken(err):
			// Someone paid or cancelled between the scan and the write.
			s.logger.Info("order moved on before expiry", "order_id", id)
		default:
			s.logger.Error("failed to expire order", "error", err, "order_id", id)
		}
	}

	s.logger.Info("expiry sweep complete", "candidates", len(ids), "expired", expired)
}

func isOvertaken(err error) bool {
	var invalidTransition *orders.InvalidTransitionError
	var conflict *orders.ConflictError
	return errors.As(err, &invalidTransition) || errors.As(err, &conflict)
}
