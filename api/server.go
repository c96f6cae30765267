// Package api wires the feature handlers, gates and static frontend into
// one router.
package api

import (
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"alumnihub/handlers"
	"alumnihub/middleware"
)

// Server holds everything the router needs
type Server struct {
	Handlers  *handlers.Handler
	Identity  *middleware.Identity
	Gates     middleware.Gates
	CORS      middleware.CORS
	StaticDir string
}

// Handler builds the HTTP handler. CORS wraps the whole router so that
// preflight requests are answered for every path.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(s.Identity.Middleware)

	r.HandleFunc("/health", s.Handlers.Health).Methods("GET")
	s.registerRoutes(r.PathPrefix("/api").Subrouter())

	if s.StaticDir != "" {
		s.registerFrontend(r)
	}

	return s.CORS.Handler(r)
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(r *mux.Router) {
	h := s.Handlers
	approved := func(f http.HandlerFunc) http.Handler {
		return s.Gates.RequireApproved(f)
	}
	adminOnly := func(f http.HandlerFunc) http.Handler {
		return s.Gates.RequireAdmin(f)
	}
	approvedAdmin := func(f http.HandlerFunc) http.Handler {
		return s.Gates.RequireApproved(s.Gates.RequireAdmin(f))
	}

	// Public routes
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	r.HandleFunc("/session", h.GetSession).Methods("GET")
	r.HandleFunc("/session", h.Login).Methods("POST")
	r.HandleFunc("/session", h.Logout).Methods("DELETE")
	r.HandleFunc("/access", h.GetAccess).Methods("GET")
	r.HandleFunc("/access/retry", h.RetryAccess).Methods("POST")
	r.HandleFunc("/directory", h.SearchDirectory).Methods("GET")
	r.HandleFunc("/directory/years", h.GetGraduationYears).Methods("GET")
	r.HandleFunc("/directory/departments", h.GetDepartments).Methods("GET")
	r.HandleFunc("/directory/{principal}", h.GetDirectoryProfile).Methods("GET")

	// Signed-in routes
	r.Handle("/approval/request", s.Gates.RequireAuth(http.HandlerFunc(h.RequestApproval))).Methods("POST")

	// Member routes
	r.Handle("/profile", approved(h.GetProfile)).Methods("GET")
	r.Handle("/profile", approved(h.SaveProfile)).Methods("PUT")
	r.Handle("/events", approved(h.GetEvents)).Methods("GET")
	r.Handle("/announcements", approved(h.GetAnnouncements)).Methods("GET")
	r.Handle("/gallery", approved(h.GetGallery)).Methods("GET")
	r.Handle("/activities", approved(h.GetActivities)).Methods("GET")
	r.Handle("/admin/access", approved(h.GetAdminAccess)).Methods("GET")

	// Content management
	r.Handle("/events", approvedAdmin(h.CreateEvent)).Methods("POST")
	r.Handle("/events/{id}", approvedAdmin(h.UpdateEvent)).Methods("PUT")
	r.Handle("/events/{id}", approvedAdmin(h.DeleteEvent)).Methods("DELETE")
	r.Handle("/announcements", approvedAdmin(h.CreateAnnouncement)).Methods("POST")
	r.Handle("/announcements/{id}", approvedAdmin(h.DeleteAnnouncement)).Methods("DELETE")
	r.Handle("/gallery", approvedAdmin(h.CreateGalleryImage)).Methods("POST")
	r.Handle("/gallery/{id}", approvedAdmin(h.UpdateGalleryImage)).Methods("PUT")
	r.Handle("/gallery/{id}", approvedAdmin(h.DeleteGalleryImage)).Methods("DELETE")
	r.Handle("/activities", approvedAdmin(h.CreateActivity)).Methods("POST")
	r.Handle("/activities/{id}", approvedAdmin(h.UpdateActivity)).Methods("PUT")
	r.Handle("/activities/{id}", approvedAdmin(h.DeleteActivity)).Methods("DELETE")

	// Member management
	r.Handle("/admin/approvals", approvedAdmin(h.GetApprovals)).Methods("GET")
	r.Handle("/admin/approvals/{principal}", approvedAdmin(h.SetApproval)).Methods("PUT")
	r.Handle("/admin/roles/{principal}", approvedAdmin(h.AssignRole)).Methods("PUT")

	// Backend page
	r.Handle("/admin/status", adminOnly(h.GetBackendStatus)).Methods("GET")
	r.Handle("/admin/snapshots", adminOnly(h.GetSnapshots)).Methods("GET")
	r.Handle("/admin/snapshots", adminOnly(h.CreateSnapshot)).Methods("POST")
	r.Handle("/admin/snapshots", adminOnly(h.ClearSnapshots)).Methods("DELETE")
	r.Handle("/admin/snapshots/sort", adminOnly(h.SortSnapshots)).Methods("POST")
	r.Handle("/admin/snapshots/{id:[0-9]+}", adminOnly(h.DeleteSnapshot)).Methods("DELETE")
}

// registerFrontend serves the built SPA, falling back to index.html
func (s *Server) registerFrontend(r *mux.Router) {
	fs := http.FileServer(http.Dir(s.StaticDir))
	index := filepath.Join(s.StaticDir, "index.html")

	r.PathPrefix("/assets/").Handler(fs)
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		log.Printf("Serving index.html for path: %s", r.URL.Path)
		http.ServeFile(w, r, index)
	}).Methods("GET")
}
