// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Shivanand-hulikatti/event-registration/internal/logger"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EventService is the part of service.EventService the handlers call.
type EventService interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.EventDetails, error)
	ListRegistrations(ctx context.Context, eventID string) ([]model.Registrant, error)
	UpcomingEvents(ctx context.Context) ([]model.Event, error)
	Stats(ctx context.Context, eventID string) (*model.EventStats, error)
	Register(ctx context.Context, eventID, userID string) (*model.Registration, error)
	Cancel(ctx context.Context, eventID, userID string) error
}

// UserService is the part of service.UserService the handlers call.
type UserService interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
}

// EventHandler holds all HTTP handlers for the registration API.
type EventHandler struct {
	events EventService
	users  UserService
	log    *logger.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events EventService, users UserService, log *logger.Logger) *EventHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &EventHandler{events: events, users: users, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// eventID reads and checks the {id} path parameter. It writes the error
// response itself and reports false when the id is unusable.
func eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "event id must be a valid UUID")
		return "", false
	}
	return id, true
}

// registrationTarget reads the event id from the path and the user id from
// the body shared by register and cancel.
func registrationTarget(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	id, ok := eventID(w, r)
	if !ok {
		return "", "", false
	}
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body: "+err.Error())
		return "", "", false
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "user_id is required")
		return "", "", false
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "user_id must be a valid UUID")
		return "", "", false
	}
	return id, req.UserID, true
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateUser handles POST /api/users
func (h *EventHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// CreateEvent handles POST /api/events
// Creates a new event with the given title, date, location and capacity.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// UpcomingEvents handles GET /api/events/upcoming
func (h *EventHandler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.UpcomingEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}
// Returns the event with everyone registered for it.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	details, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// Stats handles GET /api/events/{id}/stats
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	stats, err := h.events.Stats(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// ListRegistrations handles GET /api/events/{id}/registrations
func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	regs, err := h.events.ListRegistrations(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if regs == nil {
		regs = []model.Registrant{}
	}

	writeJSON(w, http.StatusOK, regs)
}

// Register handles POST /api/events/{id}/register
// Performs a concurrency-safe registration for the specified event.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := registrationTarget(w, r)
	if !ok {
		return
	}

	reg, err := h.events.Register(r.Context(), id, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// Cancel handles DELETE /api/events/{id}/register
func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := registrationTarget(w, r)
	if !ok {
		return
	}

	if err := h.events.Cancel(r.Context(), id, userID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "registration cancelled"})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
