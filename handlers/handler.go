package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"alumnihub/middleware"
	"alumnihub/models"
	"alumnihub/remote"
	"alumnihub/services"
	"alumnihub/session"
)

// Handler serves the feature views
type Handler struct {
	Queries  *services.Queries
	Sessions *session.Manager
	Identity *middleware.Identity

	Version string
	// DevLogin accepts a bare principal at login when no identity
	// provider is configured
	DevLogin     bool
	SecureCookie bool
	SessionTTL   time.Duration
	// AccessWait bounds how long a view waits for the caller's access to
	// settle before deciding what to show
	AccessWait time.Duration
	Now        func() time.Time
}

// errorBody is the JSON error response
type errorBody struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// mutationResult is returned by writes that surface a notification
type mutationResult struct {
	Notification models.Notification `json:"notification"`
	ID           *int64              `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the error taxonomy to a status code
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *services.ValidationError
		qe *services.QueryError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Please fix the validation errors", Fields: ve.Fields})
	case errors.Is(err, remote.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "You do not have permission to perform this action"})
	case errors.Is(err, remote.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, services.ErrBackendUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	case errors.As(err, &qe):
		log.Printf("Query %s failed: %v", qe.Op, qe.Err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		log.Printf("Request failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// notify answers a write with a success notification
func notify(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, mutationResult{
		Notification: models.Notification{Level: models.NotifySuccess, Message: msg},
	})
}

// notifyError answers a failed write with an error notification alongside
// the mapped status code
func notifyError(w http.ResponseWriter, err error, msg string) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		writeError(w, err)
		return
	}
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, remote.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrBackendUnavailable):
		status = http.StatusServiceUnavailable
	}
	log.Printf("%s: %v", msg, err)
	writeJSON(w, status, mutationResult{
		Notification: models.Notification{Level: models.NotifyError, Message: msg},
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// sessionOf returns the request's session, anonymous when none was attached
func (h *Handler) sessionOf(r *http.Request) *session.Session {
	if s := middleware.SessionFromContext(r.Context()); s != nil {
		return s
	}
	return h.Sessions.Anonymous()
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// optionalInt parses a query parameter, nil when absent
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalString(r *http.Request, name string) *string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return &raw
}
