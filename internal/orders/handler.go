package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hudibaba0001/Resturant-sub000/internal/auth"
	"github.com/hudibaba0001/Resturant-sub000/internal/domain"
)

// Repository is the persistence surface the HTTP layer needs beyond the
// executor's Store.
type Repository interface {
	Store
	Create(ctx context.Context, order *domain.Order) error
	ListForStaff(ctx context.Context, userID string) ([]domain.Order, error)
}

// HistoryReader lists an order's audit trail.
type HistoryReader interface {
	History(ctx context.Context, orderID string) ([]domain.TransitionEvent, error)
}

// Handler translates HTTP requests into engine calls and outcomes into
// status codes. It carries no transition logic of its own.
type Handler struct {
	repo         Repository
	transitioner *Transitioner
	history      HistoryReader
	logger       *slog.Logger
}

func NewHandler(repo Repository, transitioner *Transitioner, history HistoryReader, logger *slog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		transitioner: transitioner,
		history:      history,
		logger:       logger,
	}
}

type createOrderRequest struct {
	RestaurantID string `json:"restaurant_id"`
	CustomerName string `json:"customer_name"`
	Total        int64  `json:"total"`
}

// HandleCreate accepts a new order from the checkout flow with the initial
// pending status. Checkout is unauthenticated; staff surfaces are not.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY")
		return
	}
	if req.RestaurantID == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY")
		return
	}

	order := &domain.Order{
		RestaurantID: req.RestaurantID,
		CustomerName: req.CustomerName,
		Total:        req.Total,
	}
	if err := h.repo.Create(r.Context(), order); err != nil {
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "restaurant_id", order.RestaurantID)
	h.writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}

	order, _, err := h.repo.GetForStaff(r.Context(), r.PathValue("id"), principal.UserID)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", r.PathValue("id"))
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "FORBIDDEN")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}

	orders, err := h.repo.ListForStaff(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// HandleHistory lists an order's transition events. Access is gated by the
// same fail-closed staff read as every other order surface.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}

	order, _, err := h.repo.GetForStaff(r.Context(), r.PathValue("id"), principal.UserID)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", r.PathValue("id"))
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "FORBIDDEN")
		return
	}

	events, err := h.history.History(r.Context(), order.ID)
	if err != nil {
		h.logger.Error("failed to read transition history", "error", err, "order_id", order.ID)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
	Reason string             `json:"reason"`
}

// HandleUpdateStatus is the transition endpoint. All validation, state
// machine and concurrency decisions happen in the executor; this method only
// translates its outcome.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY")
		return
	}

	order, err := h.transitioner.Transition(r.Context(), TransitionRequest{
		OrderID:   r.PathValue("id"),
		Target:    req.Status,
		Reason:    req.Reason,
		Principal: principal,
	})
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) writeTransitionError(w http.ResponseWriter, err error) {
	var invalidTransition *InvalidTransitionError
	var conflict *ConflictError

	switch {
	case errors.Is(err, ErrInvalidOrderID):
		h.writeError(w, http.StatusBadRequest, "INVALID_ORDER_ID")
	case errors.Is(err, ErrInvalidStatus):
		h.writeError(w, http.StatusBadRequest, "INVALID_STATUS")
	case errors.Is(err, ErrReasonTooLong):
		h.writeError(w, http.StatusBadRequest, "INVALID_REASON")
	case errors.Is(err, ErrForbidden):
		// 404 on purpose: a 403 would confirm the order exists to a
		// principal from another tenant.
		h.writeError(w, http.StatusNotFound, "FORBIDDEN")
	case errors.Is(err, ErrWriteDenied):
		h.writeError(w, http.StatusForbidden, "FORBIDDEN")
	case errors.As(err, &invalidTransition):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"code":    "INVALID_TRANSITION",
			"from":    invalidTransition.From,
			"allowed": invalidTransition.Allowed,
		})
	case errors.As(err, &conflict):
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"code":    "CONFLICT_STATUS_CHANGED",
			"current": conflict.Current,
		})
	default:
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code string) {
	h.writeJSON(w, status, map[string]string{"code": code})
}
