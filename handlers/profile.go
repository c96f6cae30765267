package handlers

import (
	"log"
	"net/http"

	"alumnihub/models"
	"alumnihub/remote"
)

// GetProfile returns the caller's profile, or null when none is saved yet
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Queries.CallerUserProfile(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile stores the caller's profile
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var p models.AlumniProfile
	if err := decodeJSON(r, &p); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	s := h.sessionOf(r)
	if err := h.Queries.SaveCallerUserProfile(r.Context(), s.Binding, p); err != nil {
		notifyError(w, err, "Failed to save profile. Please try again.")
		return
	}
	notify(w, http.StatusOK, "Profile saved successfully!")
}

// RequestApproval asks an administrator to approve the caller
func (h *Handler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	s := h.sessionOf(r)
	if err := h.Queries.RequestApproval(r.Context(), s.Binding); err != nil {
		notifyError(w, err, "Failed to submit approval request. Please try again.")
		return
	}
	log.Printf("Approval requested by %s", remote.ShortPrincipal(s.Principal()))
	notify(w, http.StatusOK, "Approval request submitted successfully!")
}
