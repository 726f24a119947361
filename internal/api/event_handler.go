package api

import (
	"net/http"
	"strings"
	"time"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

type EventHandler struct {
	events domain.EventService
	users  domain.UserService
	logger logger.Logger
	now    func() time.Time
}

// eventView adds the status derived at response time.
type eventView struct {
	domain.Event
	Status domain.EventStatus `json:"status"`
}

type eventStatsResponse struct {
	domain.EventStats
	Report string `json:"report"`
}

type participantRequest struct {
	Email string `json:"email"`
}

func NewEventHandler(events domain.EventService, users domain.UserService, logger logger.Logger, now func() time.Time) *EventHandler {
	return &EventHandler{
		events: events,
		users:  users,
		logger: logger,
		now:    now,
	}
}

func (h *EventHandler) view(e domain.Event) eventView {
	return eventView{Event: e, Status: e.Status(h.now())}
}

func (h *EventHandler) views(events []domain.Event) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, h.view(e))
	}
	return out
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var event domain.Event
	if !decodeBody(w, r, h.logger, &event) {
		return
	}

	created, err := h.events.Create(event)
	if err != nil {
		writeError(w, r, h.logger, "event could not be created", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.view(created))
}

// List honours one of filter, category or name, in that order.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var events []domain.Event
	switch {
	case query.Has("filter"):
		switch strings.ToLower(query.Get("filter")) {
		case "upcoming":
			events = h.events.ListUpcoming()
		case "past":
			events = h.events.ListPast()
		case "ongoing":
			events = h.events.ListOngoing()
		default:
			http.Error(w, "filter must be upcoming, past or ongoing", http.StatusBadRequest)
			return
		}
	case query.Has("category"):
		category, ok := domain.ParseCategory(query.Get("category"))
		if !ok {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		events = h.events.ListByCategory(category)
	case query.Has("name"):
		events = h.events.SearchByName(query.Get("name"))
	default:
		events = h.events.ListSortedByTime()
	}

	writeJSON(w, http.StatusOK, h.views(events))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	event, found := h.events.FindByID(id)
	if !found {
		http.Error(w, domain.ErrEventNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.view(event))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var event domain.Event
	if !decodeBody(w, r, h.logger, &event) {
		return
	}
	event.ID = id

	// Participation only changes through join and leave.
	current, found := h.events.FindByID(id)
	if !found {
		http.Error(w, domain.ErrEventNotFound.Error(), http.StatusNotFound)
		return
	}
	event.Participants = current.Participants

	if err := h.events.Update(event); err != nil {
		writeError(w, r, h.logger, "event could not be updated", err)
		return
	}

	stored, _ := h.events.FindByID(id)
	writeJSON(w, http.StatusOK, h.view(stored))
}

func (h *EventHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.events.Remove(id); err != nil {
		writeError(w, r, h.logger, "event could not be removed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.events.ClearAll(); err != nil {
		writeError(w, r, h.logger, "events could not be cleared", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.events.Stats()
	writeJSON(w, http.StatusOK, eventStatsResponse{EventStats: stats, Report: stats.String()})
}

// Join adds the user named in the body, or the logged in user when the body
// carries no email.
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req participantRequest
	if r.ContentLength != 0 {
		if !decodeBody(w, r, h.logger, &req) {
			return
		}
	}

	var user domain.User
	if strings.TrimSpace(req.Email) == "" {
		current, loggedIn := h.users.CurrentUser()
		if !loggedIn {
			http.Error(w, "no participant given and no user logged in", http.StatusBadRequest)
			return
		}
		user = current
	} else {
		found, exists := h.users.FindByEmail(req.Email)
		if !exists {
			http.Error(w, domain.ErrUserNotFound.Error(), http.StatusNotFound)
			return
		}
		user = found
	}

	if err := h.events.AddParticipant(id, user); err != nil {
		writeError(w, r, h.logger, "participant could not be added", err)
		return
	}

	event, _ := h.events.FindByID(id)
	writeJSON(w, http.StatusOK, h.view(event))
}

func (h *EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.events.RemoveParticipant(id, domain.User{Email: r.PathValue("email")}); err != nil {
		writeError(w, r, h.logger, "participant could not be removed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/events", h.Create)
	mux.HandleFunc("GET /api/events", h.List)
	mux.HandleFunc("DELETE /api/events", h.Clear)
	mux.HandleFunc("GET /api/events/stats", h.Stats)
	mux.HandleFunc("GET /api/events/{id}", h.Get)
	mux.HandleFunc("PUT /api/events/{id}", h.Update)
	mux.HandleFunc("DELETE /api/events/{id}", h.Remove)
	mux.HandleFunc("POST /api/events/{id}/participants", h.Join)
	mux.HandleFunc("DELETE /api/events/{id}/participants/{email}", h.Leave)
}
