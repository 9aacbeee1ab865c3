package domain

import (
	"slices"
	"testing"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusPaid},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusPending, OrderStatusExpired},
		{OrderStatusPaid, OrderStatusPreparing},
		{OrderStatusPaid, OrderStatusCancelled},
		{OrderStatusPreparing, OrderStatusReady},
		{OrderStatusPreparing, OrderStatusCancelled},
		{OrderStatusReady, OrderStatusCompleted},
	}

	isAllowed := func(from, to OrderStatus) bool {
		for _, e := range allowed {
			if e.from == from && e.to == to {
				return true
			}
		}
		return false
	}

	statuses := []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled,
		OrderStatusExpired,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransition(from, to)
			if got != isAllowed(from, to) {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, !got)
			}
		}
	}
}

func TestCanTransition_noSelfEdges(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled,
		OrderStatusExpired,
	} {
		if CanTransition(s, s) {
			t.Errorf("expected self-transition %s -> %s to be rejected", s, s)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[OrderStatus]bool{
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
		OrderStatusExpired:   true,
	}

	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled,
		OrderStatusExpired,
	} {
		if Terminal(s) != terminal[s] {
			t.Errorf("Terminal(%s) = %v, want %v", s, Terminal(s), terminal[s])
		}
		if terminal[s] && len(AllowedFrom(s)) != 0 {
			t.Errorf("terminal status %s has outgoing transitions %v", s, AllowedFrom(s))
		}
	}
}

func TestAllowedFrom(t *testing.T) {
	got := AllowedFrom(OrderStatusPaid)
	want := []OrderStatus{OrderStatusPreparing, OrderStatusCancelled}
	if !slices.Equal(got, want) {
		t.Errorf("AllowedFrom(paid) = %v, want %v", got, want)
	}

	if got := AllowedFrom(OrderStatus("bogus")); len(got) != 0 {
		t.Errorf("AllowedFrom(bogus) = %v, want empty", got)
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(OrderStatusPreparing) {
		t.Error("expected preparing to be a valid status")
	}
	for _, s := range []OrderStatus{"", "PAID", "shipped", "done"} {
		if ValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanEditOrders(t *testing.T) {
	for role, want := range map[StaffRole]bool{
		RoleViewer:       false,
		RoleEditor:       true,
		RoleAdmin:        true,
		RoleOwner:        true,
		StaffRole("bot"): false,
	} {
		if CanEditOrders(role) != want {
			t.Errorf("CanEditOrders(%s) = %v, want %v", role, !want, want)
		}
	}
}
