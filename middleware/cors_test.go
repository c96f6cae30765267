package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowedOrigins := []string{
		"https://example.com",
		"http://localhost:5173",
	}

	testCases := []struct {
		name     string
		origin   string
		expected bool
	}{
		{
			name:     "Allowed origin",
			origin:   "https://example.com",
			expected: true,
		},
		{
			name:     "Another allowed origin",
			origin:   "http://localhost:5173",
			expected: true,
		},
		{
			name:     "Disallowed origin",
			origin:   "https://evil.com",
			expected: false,
		},
		{
			name:     "Empty origin",
			origin:   "",
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := isAllowedOrigin(tc.origin, allowedOrigins)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for origin %s", tc.expected, result, tc.origin)
			}
		})
	}
}

func TestCORSHandler(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name           string
		cors           CORS
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "Allowed origin is reflected",
			cors:           CORS{AllowedOrigins: []string{"https://alumni.example.org"}},
			method:         "GET",
			origin:         "https://alumni.example.org",
			expectedStatus: http.StatusTeapot,
			expectedOrigin: "https://alumni.example.org",
		},
		{
			name:           "Preflight is answered directly",
			cors:           CORS{AllowedOrigins: []string{"https://alumni.example.org"}},
			method:         "OPTIONS",
			origin:         "https://alumni.example.org",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://alumni.example.org",
		},
		{
			name:           "Production does not reflect unknown origins",
			cors:           CORS{AllowedOrigins: []string{"https://alumni.example.org"}},
			method:         "GET",
			origin:         "https://evil.com",
			expectedStatus: http.StatusTeapot,
			expectedOrigin: "https://alumni.example.org",
		},
		{
			name:           "Development allows any origin",
			cors:           CORS{Development: true},
			method:         "GET",
			origin:         "http://192.168.1.10:5173",
			expectedStatus: http.StatusTeapot,
			expectedOrigin: "http://192.168.1.10:5173",
		},
		{
			name:           "Defaults apply with no configured origins",
			cors:           CORS{},
			method:         "GET",
			origin:         "",
			expectedStatus: http.StatusTeapot,
			expectedOrigin: "http://localhost:5173",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/events", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rr := httptest.NewRecorder()

			tc.cors.Handler(testHandler).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.expectedOrigin {
				t.Errorf("Expected allowed origin %q, got %q", tc.expectedOrigin, got)
			}
			if rr.Header().Get("Access-Control-Allow-Methods") == "" {
				t.Error("Expected Access-Control-Allow-Methods header to be set")
			}
			if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("Expected credentials to be allowed")
			}
		})
	}
}
