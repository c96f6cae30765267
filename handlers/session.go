package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"alumnihub/access"
	"alumnihub/middleware"
	"alumnihub/remote"
	"alumnihub/session"
)

type loginRequest struct {
	IDToken   string `json:"idToken"`
	Principal string `json:"principal"`
}

// accessView is the composite access status with its diagnostics
type accessView struct {
	access.Status
	Session     session.Info `json:"session"`
	Backend     string       `json:"backend"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
}

// adminAccessView tells the dashboard which panels are writable
type adminAccessView struct {
	IsAdmin          bool `json:"isAdmin"`
	CanManageMembers bool `json:"canManageMembers"`
	CanManageContent bool `json:"canManageContent"`
	CanManageEvents  bool `json:"canManageEvents"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetVersion returns the build version
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.Version})
}

// GetSession describes the caller's session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionOf(r).Info())
}

// Login exchanges an ID token for a session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	var principal string
	switch {
	case req.IDToken != "":
		p, err := h.Identity.Verify(r.Context(), req.IDToken)
		if errors.Is(err, middleware.ErrNoVerifier) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
			return
		}
		if err != nil {
			log.Printf("Login rejected: %v", err)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid ID token"})
			return
		}
		principal = p
	case h.DevLogin && req.Principal != "":
		log.Printf("Development login as %s", remote.ShortPrincipal(req.Principal))
		principal = req.Principal
	default:
		badRequest(w, "idToken is required")
		return
	}

	s, token, err := h.Sessions.Login(principal)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to create session"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(h.ttl()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, s.Info())
}

// Logout destroys the session and clears the cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(h.sessionOf(r))
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetAccess returns the caller's access status without blocking
func (h *Handler) GetAccess(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.accessOf(h.sessionOf(r)))
}

// RetryAccess re-triggers whichever access dependency failed
func (h *Handler) RetryAccess(w http.ResponseWriter, r *http.Request) {
	s := h.sessionOf(r)
	s.Access.Retry()
	writeJSON(w, http.StatusAccepted, h.accessOf(s))
}

// GetAdminAccess reports which admin panels the caller may use
func (h *Handler) GetAdminAccess(w http.ResponseWriter, r *http.Request) {
	st := h.sessionOf(r).Access.Status()
	if st.IsError {
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error: "There was an error loading admin access information. Please try again.",
		})
		return
	}
	writeJSON(w, http.StatusOK, adminAccessView{
		IsAdmin:          st.IsAdmin,
		CanManageMembers: st.CanManageMembers(),
		CanManageContent: st.CanManageContent(),
		CanManageEvents:  st.CanManageEvents(),
	})
}

func (h *Handler) accessOf(s *session.Session) accessView {
	sig := s.Access.Signals()
	v := accessView{
		Status:  access.Resolve(sig),
		Session: s.Info(),
		Backend: sig.Backend.State.String(),
	}
	for _, err := range []error{v.BackendError, v.ApprovalError, v.RoleError} {
		if err != nil {
			v.Diagnostics = append(v.Diagnostics, err.Error())
		}
	}
	return v
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) accessWait() time.Duration {
	if h.AccessWait > 0 {
		return h.AccessWait
	}
	return 2 * time.Second
}

func (h *Handler) ttl() time.Duration {
	if h.SessionTTL > 0 {
		return h.SessionTTL
	}
	return session.DefaultTTL
}
