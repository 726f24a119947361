package api

import (
	"net/http"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
	"cityevents/pkg/validation"
)

type UserHandler struct {
	users     domain.UserService
	events    domain.EventService
	validator *validation.Validator
	logger    logger.Logger
}

type userStatsResponse struct {
	domain.UserStats
	Report string `json:"report"`
}

type sessionRequest struct {
	Email string `json:"email"`
}

func NewUserHandler(users domain.UserService, events domain.EventService, logger logger.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		events:    events,
		validator: validation.New(),
		logger:    logger,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	if !validateRequest(w, r, h.validator, h.logger, req) {
		return
	}

	user := req.toUser()
	if err := h.users.Register(user); err != nil {
		writeError(w, r, h.logger, "user could not be registered", err)
		return
	}

	stored, _ := h.users.FindByEmail(user.Email)
	writeJSON(w, http.StatusCreated, stored)
}

// List searches by name or city when either query parameter is present.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch {
	case query.Has("name"):
		writeJSON(w, http.StatusOK, h.users.SearchByName(query.Get("name")))
	case query.Has("city"):
		writeJSON(w, http.StatusOK, h.users.SearchByCity(query.Get("city")))
	default:
		writeJSON(w, http.StatusOK, h.users.ListAll())
	}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.users.FindByEmail(r.PathValue("email"))
	if !ok {
		http.Error(w, domain.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}
	req.Email = r.PathValue("email")
	if !validateRequest(w, r, h.validator, h.logger, req) {
		return
	}

	user := req.toUser()
	if err := h.users.Update(user); err != nil {
		writeError(w, r, h.logger, "user could not be updated", err)
		return
	}

	stored, _ := h.users.FindByEmail(user.Email)
	writeJSON(w, http.StatusOK, stored)
}

// Remove deletes the user and then drops them from every participant list.
func (h *UserHandler) Remove(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	if err := h.users.Remove(email); err != nil {
		writeError(w, r, h.logger, "user could not be removed", err)
		return
	}

	purged, err := h.events.PurgeParticipant(email)
	if err != nil {
		writeError(w, r, h.logger, "user removed but participations could not be cleaned", err)
		return
	}

	h.logger.WithContext(r.Context()).Info("User removed", map[string]interface{}{"email": domain.NormalizeEmail(email), "events_cleaned": purged})
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Events(w http.ResponseWriter, r *http.Request) {
	user, ok := h.users.FindByEmail(r.PathValue("email"))
	if !ok {
		http.Error(w, domain.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.events.ListForUser(user))
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.users.Stats()
	writeJSON(w, http.StatusOK, userStatsResponse{UserStats: stats, Report: stats.String()})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	if err := h.users.Login(req.Email); err != nil {
		writeError(w, r, h.logger, "login failed", err)
		return
	}

	user, _ := h.users.CurrentUser()
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.users.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := h.users.CurrentUser()
	if !ok {
		http.Error(w, "no user logged in", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.Register)
	mux.HandleFunc("GET /api/users", h.List)
	mux.HandleFunc("GET /api/users/stats", h.Stats)
	mux.HandleFunc("GET /api/users/{email}", h.Get)
	mux.HandleFunc("PUT /api/users/{email}", h.Update)
	mux.HandleFunc("DELETE /api/users/{email}", h.Remove)
	mux.HandleFunc("GET /api/users/{email}/events", h.Events)

	mux.HandleFunc("POST /api/session", h.Login)
	mux.HandleFunc("DELETE /api/session", h.Logout)
	mux.HandleFunc("GET /api/session", h.Session)
}
