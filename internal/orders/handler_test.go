package orders

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hudibaba0001/Resturant-sub000/internal/auth"
	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
)

type fakeRepo struct {
	*fakeStore
}

func (r *fakeRepo) Create(_ context.Context, order *domain.Order) error {
	order.ID = uuid.New().String()
	order.Status = domain.OrderStatusPending
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeRepo) ListForStaff(_ context.Context, userID string) ([]domain.Order, error) {
	if _, ok := r.roles[userID]; !ok {
		return []domain.Order{}, nil
	}
	orders := []domain.Order{}
	for _, o := range r.orders {
		orders = append(orders, *o)
	}
	return orders, nil
}

type fakeHistory struct {
	events map[string][]domain.TransitionEvent
}

func (h *fakeHistory) History(_ context.Context, orderID string) ([]domain.TransitionEvent, error) {
	return h.events[orderID], nil
}

func newTestServer(t *testing.T, repo *fakeRepo, history HistoryReader) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	transitioner := newTransitioner(t, repo, &fakeAudit{}, nil)
	handler := NewHandler(repo, transitioner, history, logger)

	asStaff := func(userID string, next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithPrincipal(r.Context(), auth.Principal{UserID: userID})
			next(w, r.WithContext(ctx))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", handler.HandleCreate)
	mux.HandleFunc("GET /orders", asStaff(staff1, handler.HandleList))
	mux.HandleFunc("GET /orders/{id}", asStaff(staff1, handler.HandleGet))
	mux.HandleFunc("GET /orders/{id}/events", asStaff(staff1, handler.HandleHistory))
	mux.HandleFunc("PATCH /orders/{id}/status", asStaff(staff1, handler.HandleUpdateStatus))
	return mux
}

func patchStatus(mux *http.ServeMux, orderID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleUpdateStatus_statusCodes(t *testing.T) {
	tests := []struct {
		name     string
		orderID  string
		body     string
		wantCode int
		wantBody string
	}{
		{"malformed id", "not-a-uuid", `{"status":"paid"}`, http.StatusBadRequest, "INVALID_ORDER_ID"},
		{"unknown status", orderA, `{"status":"shipped"}`, http.StatusBadRequest, "INVALID_STATUS"},
		{"oversized reason", orderA, `{"status":"cancelled","reason":"` + strings.Repeat("x", MaxReasonLength+1) + `"}`, http.StatusBadRequest, "INVALID_REASON"},
		{"invalid json", orderA, `{`, http.StatusBadRequest, "INVALID_BODY"},
		{"unknown order", "5f0c2a3e-9b1d-4c6f-8a2e-333333333333", `{"status":"paid"}`, http.StatusNotFound, "FORBIDDEN"},
		{"illegal edge", orderA, `{"status":"completed"}`, http.StatusConflict, "INVALID_TRANSITION"},
		{"success", orderA, `{"status":"paid"}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestServer(t, &fakeRepo{newFakeStore()}, &fakeHistory{})
			rec := patchStatus(mux, tt.orderID, tt.body)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" {
				if got := decodeBody(t, rec)["code"]; got != tt.wantBody {
					t.Errorf("expected code %q, got %v", tt.wantBody, got)
				}
			}
		})
	}
}

func TestHandleUpdateStatus_requiresPrincipal(t *testing.T) {
	repo := &fakeRepo{newFakeStore()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(repo, newTransitioner(t, repo, &fakeAudit{}, nil), &fakeHistory{}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /orders/{id}/status", handler.HandleUpdateStatus)

	rec := patchStatus(mux, orderA, `{"status":"paid"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a principal, got %d", rec.Code)
	}
}

func TestHandleUpdateStatus_markPaidTwice(t *testing.T) {
	// Staff marks a pending order paid, then double-submits the same
	// request: the second attempt reports the order already moved on.
	mux := newTestServer(t, &fakeRepo{newFakeStore()}, &fakeHistory{})

	rec := patchStatus(mux, orderA, `{"status":"paid"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	order := decodeBody(t, rec)["order"].(map[string]any)
	if order["status"] != "paid" {
		t.Fatalf("expected status paid, got %v", order["status"])
	}

	rec = patchStatus(mux, orderA, `{"status":"paid"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["code"] != "INVALID_TRANSITION" {
		t.Errorf("expected INVALID_TRANSITION, got %v", body["code"])
	}
	if body["from"] != "paid" {
		t.Errorf("expected from=paid, got %v", body["from"])
	}
	allowed, _ := body["allowed"].([]any)
	if len(allowed) != 2 || allowed[0] != "preparing" || allowed[1] != "cancelled" {
		t.Errorf("expected allowed=[preparing cancelled], got %v", allowed)
	}
}

func TestHandleUpdateStatus_conflictBody(t *testing.T) {
	store := newFakeStore()
	store.orders[orderA].Status = domain.OrderStatusPaid
	store.stolenBy = domain.OrderStatusCancelled
	mux := newTestServer(t, &fakeRepo{store}, &fakeHistory{})

	rec := patchStatus(mux, orderA, `{"status":"preparing"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["code"] != "CONFLICT_STATUS_CHANGED" {
		t.Errorf("expected CONFLICT_STATUS_CHANGED, got %v", body["code"])
	}
	if body["current"] != "cancelled" {
		t.Errorf("expected current=cancelled, got %v", body["current"])
	}
}

func TestHandleCreate(t *testing.T) {
	mux := newTestServer(t, &fakeRepo{newFakeStore()}, &fakeHistory{})

	req := httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"restaurant_id":"rest-1","customer_name":"Dana","total":2400}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	order := decodeBody(t, rec)["order"].(map[string]any)
	if order["status"] != "pending" {
		t.Errorf("new orders must start pending, got %v", order["status"])
	}
	if order["id"] == "" {
		t.Error("expected order id to be assigned")
	}
}

func TestHandleGet_failsClosed(t *testing.T) {
	mux := newTestServer(t, &fakeRepo{newFakeStore()}, &fakeHistory{})

	req := httptest.NewRequest(http.MethodGet, "/orders/5f0c2a3e-9b1d-4c6f-8a2e-444444444444", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["code"]; got != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %v", got)
	}
}

func TestHandleHistory(t *testing.T) {
	history := &fakeHistory{events: map[string][]domain.TransitionEvent{
		orderA: {
			{OrderID: orderA, FromStatus: domain.OrderStatusPending, ToStatus: domain.OrderStatusPaid, Actor: staff1},
		},
	}}
	mux := newTestServer(t, &fakeRepo{newFakeStore()}, history)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderA+"/events", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	events, _ := decodeBody(t, rec)["events"].([]any)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
}
