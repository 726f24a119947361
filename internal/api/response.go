package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidUser), errors.Is(err, domain.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrAlreadyParticipant),
		errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrEventEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps store errors to status codes. Server-side failures are
// logged, expected rejections only at debug level.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, msg string, err error) {
	status := statusFor(err)
	fields := map[string]interface{}{"path": r.URL.Path, "status": status, "error": err.Error()}

	if status >= http.StatusInternalServerError {
		log.WithContext(r.Context()).Error(msg, fields)
		http.Error(w, msg, status)
		return
	}

	log.WithContext(r.Context()).Debug(msg, fields)
	http.Error(w, err.Error(), status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, log logger.Logger, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.WithContext(r.Context()).Debug("Request body could not be decoded", map[string]interface{}{"error": err.Error()})
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
