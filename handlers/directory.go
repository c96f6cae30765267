package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/text/cases"

	"alumnihub/models"
)

var fold = cases.Fold()

// filterByName keeps profiles whose name contains term, ignoring case
func filterByName(profiles []models.AlumniProfile, term string) []models.AlumniProfile {
	term = strings.TrimSpace(term)
	if term == "" {
		return profiles
	}
	needle := fold.String(term)
	out := make([]models.AlumniProfile, 0, len(profiles))
	for _, p := range profiles {
		if strings.Contains(fold.String(p.FullName), needle) {
			out = append(out, p)
		}
	}
	return out
}

// SearchDirectory lists profiles by optional year and department, then
// narrows them by name
func (h *Handler) SearchDirectory(w http.ResponseWriter, r *http.Request) {
	year, err := optionalInt(r, "year")
	if err != nil {
		badRequest(w, "Invalid year")
		return
	}
	dept := optionalString(r, "department")

	s := h.sessionOf(r)
	profiles, err := h.Queries.SearchAlumniProfiles(r.Context(), s.Binding, year, dept)
	if err != nil {
		writeError(w, err)
		return
	}

	// The list never carries contact info
	result := filterByName(profiles, r.URL.Query().Get("q"))
	public := make([]models.AlumniProfile, len(result))
	for i, p := range result {
		p.ContactInfo = models.None[string]()
		public[i] = p
	}
	writeJSON(w, http.StatusOK, public)
}

// GetGraduationYears lists graduation years, newest first
func (h *Handler) GetGraduationYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.Queries.GraduationYears(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}

// GetDepartments lists departments alphabetically
func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.Queries.Departments(r.Context(), h.sessionOf(r).Binding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depts)
}

// GetDirectoryProfile returns one member's profile. Contact info is only
// shown to approved members.
func (h *Handler) GetDirectoryProfile(w http.ResponseWriter, r *http.Request) {
	principal := mux.Vars(r)["principal"]
	s := h.sessionOf(r)
	p, err := h.Queries.UserProfile(r.Context(), s.Binding, principal)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Profile not found"})
		return
	}
	public := *p
	ctx, cancel := context.WithTimeout(r.Context(), h.accessWait())
	defer cancel()
	if !s.Access.Wait(ctx).IsApproved {
		public.ContactInfo = models.None[string]()
	}
	writeJSON(w, http.StatusOK, public)
}
