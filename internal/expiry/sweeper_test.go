package expiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
	"github.com/hudibaba0001/Resturant-sub000/internal/orders"
)

type fakeLister struct {
	ids []string
	err error
}

func (l *fakeLister) ListStalePending(_ context.Context, _ time.Time) ([]string, error) {
	return l.ids, l.err
}

type fakeTransitioner struct {
	requests []orders.TransitionRequest
	errs     map[string]error
}

func (t *fakeTransitioner) Transition(_ context.Context, req orders.TransitionRequest) (*domain.Order, error) {
	t.requests = append(t.requests, req)
	if err := t.errs[req.OrderID]; err != nil {
		return nil, err
	}
	return &domain.Order{ID: req.OrderID, Status: req.Target}, nil
}

func newSweeper(lister StaleLister, tr Transitioner) *Sweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSweeper(lister, tr, 30*time.Minute, time.Minute, logger)
}

func TestSweep_expiresStaleOrders(t *testing.T) {
	tr := &fakeTransitioner{}
	s := newSweeper(&fakeLister{ids: []string{"o1", "o2"}}, tr)

	s.sweep(context.Background())

	if len(tr.requests) != 2 {
		t.Fatalf("expected 2 transition attempts, got %d", len(tr.requests))
	}
	for _, req := range tr.requests {
		if req.Target != domain.OrderStatusExpired {
			t.Errorf("expected target expired, got %s", req.Target)
		}
		if !req.Principal.System {
			t.Error("sweeper must act as the system principal")
		}
		if req.Reason == "" {
			t.Error("expected an expiry reason on the audit trail")
		}
	}
}

func TestSweep_toleratesLostRaces(t *testing.T) {
	tr := &fakeTransitioner{errs: map[string]error{
		"o1": &orders.ConflictError{Current: domain.OrderStatusPaid},
		"o2": &orders.InvalidTransitionError{From: domain.OrderStatusPaid},
	}}
	s := newSweeper(&fakeLister{ids: []string{"o1", "o2", "o3"}}, tr)

	// Losing to a staff transition is a normal outcome; the sweep keeps
	// going and still expires the remaining candidate.
	s.sweep(context.Background())

	if len(tr.requests) != 3 {
		t.Fatalf("expected all 3 candidates attempted, got %d", len(tr.requests))
	}
}

func TestSweep_listFailure(t *testing.T) {
	tr := &fakeTransitioner{}
	s := newSweeper(&fakeLister{err: errors.New("db down")}, tr)

	s.sweep(context.Background())

	if len(tr.requests) != 0 {
		t.Fatalf("expected no transitions after a failed scan, got %d", len(tr.requests))
	}
}

func TestRun_stopsOnCancel(t *testing.T) {
	tr := &fakeTransitioner{}
	s := newSweeper(&fakeLister{}, tr)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
