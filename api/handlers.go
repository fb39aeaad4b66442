/*
handlers.go - HTTP API handlers for the saving room system

PURPOSE:
  Exposes the room service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates all domain decisions to room.Service.

ENDPOINTS:
  Rooms:
    GET    /api/rooms                   List the caller's rooms
    POST   /api/rooms                   Create a saving room
    GET    /api/rooms/{id}              Full derived room view
    PUT    /api/rooms/{id}              Edit name/goal/participants
    DELETE /api/rooms/{id}              Delete a room (creator only)
    POST   /api/rooms/{id}/payments     Record a contribution
    POST   /api/rooms/{id}/comments     Post to the discussion thread
    GET    /api/rooms/{id}/history      Room payment history
    GET    /api/rooms/{id}/events       Server-sent change/tick events

  Personal:
    GET    /api/transactions            The caller's transaction history
    POST   /api/transactions            Log an income/expense entry
    GET    /api/dashboard               Balance, totals, expense breakdown

  Directory:
    GET    /api/users                   Users available as participants

IDENTITY:
  The caller is identified by the X-User-Id header. Authentication itself
  happens upstream; this service only needs to know who is acting.
  Requests without the header get 401.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid amounts, unknown cadence
  - 401: Missing identity header
  - 403: Acting user lacks the creator/participant role
  - 404: Room or user not found
  - 409: Lost a concurrent-modification race
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - events.go: The server-sent events stream
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/listerineh/payplay-app/accounting"
	"github.com/listerineh/payplay-app/dashboard"
	"github.com/listerineh/payplay-app/room"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *room.Service
	Log     *slog.Logger

	now  func() time.Time
	tick time.Duration
}

// HandlerOption customizes a Handler; used by tests to pin the clock and
// speed up the event-stream ticker.
type HandlerOption func(*Handler)

func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

func WithTickInterval(d time.Duration) HandlerOption {
	return func(h *Handler) { h.tick = d }
}

// NewHandler creates a new handler around the room service.
func NewHandler(svc *room.Service, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{Service: svc, Log: logger, now: time.Now, tick: windowTickInterval}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// userID extracts the caller identity. Empty means unauthenticated.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

// =============================================================================
// ROOM HANDLERS
// =============================================================================

// ListRooms returns every room the caller participates in.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	rooms, err := h.Service.ListRooms(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rooms", err)
		return
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toRoomDTO(rm)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRoom creates a saving room with the caller as creator.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	created, err := h.Service.CreateRoom(r.Context(), room.CreateRoomInput{
		Name:                 req.Name,
		Goal:                 req.Goal,
		CreatorID:            uid,
		AmountPerParticipant: accounting.MoneyFromFloat(req.Amount),
		PaymentPeriod:        req.PaymentPeriod,
		ParticipantIDs:       req.ParticipantIDs,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create room", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomDTO(created))
}

// GetRoom returns the full derived view of one room.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	view, err := h.Service.View(r.Context(), chi.URLParam(r, "id"), h.now().UTC())
	if err != nil {
		h.writeServiceError(w, "Failed to load room", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomViewDTO(view))
}

// UpdateRoom edits name, goal, and the participant set.
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	var req UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	updated, err := h.Service.UpdateRoom(r.Context(), chi.URLParam(r, "id"), uid, room.UpdateRoomInput{
		Name:           req.Name,
		Goal:           req.Goal,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update room", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(updated))
}

// DeleteRoom removes a room. Creator only.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	if err := h.Service.DeleteRoom(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
		h.writeServiceError(w, "Failed to delete room", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment logs a contribution against one participant. Creator only.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	updated, err := h.Service.RecordPayment(r.Context(), chi.URLParam(r, "id"), uid,
		req.ParticipantID, accounting.MoneyFromFloat(req.Amount))
	if err != nil {
		h.writeServiceError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(updated))
}

// AddComment posts to the discussion thread. Open to all participants.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	c, err := h.Service.AddComment(r.Context(), chi.URLParam(r, "id"), uid, req.Text)
	if err != nil {
		h.writeServiceError(w, "Failed to add comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, CommentDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		UserName:   c.UserName,
		UserAvatar: c.UserAvatar,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	})
}

// GetHistory returns the room's payment history, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	view, err := h.Service.View(r.Context(), chi.URLParam(r, "id"), h.now().UTC())
	if err != nil {
		h.writeServiceError(w, "Failed to load history", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(view.History))
}

// =============================================================================
// PERSONAL TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the caller's transaction history, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	txs, err := h.Service.ListTransactions(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// AddTransaction logs a personal income/expense entry.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	tx, err := h.Service.AddTransaction(r.Context(), room.AddTransactionInput{
		UserID:      uid,
		Description: req.Description,
		Amount:      accounting.MoneyFromFloat(req.Amount),
		Category:    req.Category,
		Type:        room.TransactionType(req.Type),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to add transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx))
}

// GetDashboard returns the caller's balance, totals, and expense breakdown.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-Id header", nil)
		return
	}

	txs, err := h.Service.ListTransactions(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(dashboard.Summarize(txs)))
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListUsers returns the users available as room participants.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ERROR MAPPING AND JSON HELPERS
// =============================================================================

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var (
		validation *room.ValidationError
		exceeds    *room.AmountExceedsOwedError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &exceeds),
		errors.Is(err, room.ErrInvalidAmount),
		errors.Is(err, room.ErrEmptyComment),
		errors.Is(err, room.ErrUnknownParticipant),
		errors.Is(err, room.ErrNoPayments),
		errors.Is(err, accounting.ErrUnknownCadence):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, room.ErrNotCreator), errors.Is(err, room.ErrNotParticipant):
		writeError(w, http.StatusForbidden, message, err)
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrUserNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, room.ErrConcurrentModification):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
