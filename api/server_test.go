package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"alumnihub/access"
	"alumnihub/handlers"
	"alumnihub/middleware"
	"alumnihub/query"
	"alumnihub/remote/remotetest"
	"alumnihub/services"
	"alumnihub/session"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>alumni</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := query.NewClient(query.Options{})
	sessions, err := session.NewManager(session.Options{
		Dialer:    remotetest.NewFake("").Dialer(),
		Cache:     cache,
		Allowlist: access.NewAllowlist(nil),
		Secret:    []byte("test-secret"),
	})
	if err != nil {
		t.Fatal(err)
	}

	identity := &middleware.Identity{Sessions: sessions}
	s := &Server{
		Handlers: &handlers.Handler{
			Queries:  services.NewQueries(cache),
			Sessions: sessions,
			Identity: identity,
		},
		Identity:  identity,
		Gates:     middleware.Gates{Wait: 100 * time.Millisecond},
		CORS:      middleware.CORS{Development: true},
		StaticDir: dir,
	}
	return s.Handler()
}

func TestFrontendRoutes(t *testing.T) {
	h := newTestServer(t)

	testCases := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{"Root serves the app", "/", http.StatusOK, "alumni"},
		{"Client route falls back to the app", "/directory/abc", http.StatusOK, "alumni"},
		{"Assets are served as files", "/assets/app.js", http.StatusOK, "console.log"},
		{"Unknown API path is not the app", "/api/nope", http.StatusNotFound, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest("GET", tc.path, nil))

			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if tc.expectedBody != "" && !strings.Contains(rr.Body.String(), tc.expectedBody) {
				t.Errorf("Expected body to contain %q, got %q", tc.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestPreflightOnAPIRoute(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/admin/snapshots", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "DELETE")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}
