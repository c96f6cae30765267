package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alumnihub/models"
	"alumnihub/query"
	"alumnihub/remote"
	"alumnihub/remote/remotetest"
	"alumnihub/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// serveGate runs one request as s through the gate built by wrap
func serveGate(t *testing.T, s *session.Session, wrap func(http.Handler) http.Handler) (*httptest.ResponseRecorder, GateView) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/test", nil)
	if s != nil {
		req = req.WithContext(WithSession(req.Context(), s))
	}
	rr := httptest.NewRecorder()
	wrap(okHandler).ServeHTTP(rr, req)

	var view GateView
	if rr.Code != http.StatusOK && rr.Code != http.StatusNoContent {
		if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
			t.Fatalf("Failed to decode gate view: %v", err)
		}
	}
	return rr, view
}

// blocked returns a hook that never answers until the test ends
func blocked(t *testing.T) func(ctx context.Context) (bool, error) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	return func(ctx context.Context) (bool, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return false, errors.New("released")
	}
}

func withApprovalEntry(principal string, status models.ApprovalStatus) func(f *remotetest.Fake) {
	return func(f *remotetest.Fake) {
		f.Approval = []models.UserApprovalInfo{{Principal: principal, Status: status}}
	}
}

func TestApprovalGate(t *testing.T) {
	gates := Gates{Wait: 2 * time.Second}

	testCases := []struct {
		name           string
		setup          func(f *remotetest.Fake)
		principal      string
		expectedStatus int
		expectedState  string
		expectedAction string
	}{
		{
			name:           "Anonymous must sign in",
			principal:      "",
			expectedStatus: http.StatusUnauthorized,
			expectedState:  "unauthenticated",
			expectedAction: ActionLogin,
		},
		{
			name:           "Approved member passes",
			setup:          func(f *remotetest.Fake) { f.Approved = true },
			principal:      "member-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unapproved member is offered a request",
			principal:      "member-1",
			expectedStatus: http.StatusForbidden,
			expectedState:  "not_approved",
			expectedAction: ActionRequestApproval,
		},
		{
			name:           "Requested approval shows pending",
			setup:          withApprovalEntry("member-1", models.ApprovalPending),
			principal:      "member-1",
			expectedStatus: http.StatusForbidden,
			expectedState:  "approval_pending",
		},
		{
			name:           "Rejected member may ask again",
			setup:          withApprovalEntry("member-1", models.ApprovalRejected),
			principal:      "member-1",
			expectedStatus: http.StatusForbidden,
			expectedState:  "not_approved",
			expectedAction: ActionRequestApproval,
		},
		{
			name: "Approval check failure offers retry",
			setup: func(f *remotetest.Fake) {
				f.IsCallerApprovedFn = func(ctx context.Context) (bool, error) {
					return false, errors.New("approval lookup rejected")
				}
			},
			principal:      "member-1",
			expectedStatus: http.StatusBadGateway,
			expectedState:  "error",
			expectedAction: ActionRetry,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := remotetest.NewFake(tc.principal)
			if tc.setup != nil {
				tc.setup(fake)
			}
			m := newTestManager(t, fake)
			s := m.Anonymous()
			if tc.principal != "" {
				s = m.ForPrincipal(tc.principal)
			}

			rr, view := serveGate(t, s, gates.RequireApproved)

			if rr.Code != tc.expectedStatus {
				t.Fatalf("Expected status %d, got %d (%+v)", tc.expectedStatus, rr.Code, view)
			}
			if view.State != tc.expectedState {
				t.Errorf("Expected state '%s', got '%s'", tc.expectedState, view.State)
			}
			if view.Action != tc.expectedAction {
				t.Errorf("Expected action '%s', got '%s'", tc.expectedAction, view.Action)
			}
		})
	}
}

func TestApprovalGateBackendFailure(t *testing.T) {
	dial := func(ctx context.Context, principal string) (remote.Service, error) {
		return nil, errors.New("database unreachable")
	}
	m, err := session.NewManager(session.Options{
		Dialer: dial,
		Cache:  query.NewClient(query.Options{}),
		Secret: []byte("test-secret"),
	})
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}
	s := m.ForPrincipal("member-1")
	s.Binding.Connect()

	deadline := time.Now().Add(2 * time.Second)
	for !s.Binding.Status().Failed() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	rr, view := serveGate(t, s, Gates{}.RequireApproved)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rr.Code)
	}
	if view.Action != ActionReconnect || view.State != "backend_error" {
		t.Errorf("Unexpected gate view: %+v", view)
	}
}

func TestApprovalGateLoading(t *testing.T) {
	fake := remotetest.NewFake("member-1")
	fake.IsCallerApprovedFn = blocked(t)
	m := newTestManager(t, fake)
	s := m.ForPrincipal("member-1")

	rr, view := serveGate(t, s, Gates{Wait: 50 * time.Millisecond}.RequireApproved)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}
	if view.State != "loading" && view.State != "backend_loading" {
		t.Errorf("Expected a loading state, got '%s'", view.State)
	}
}

func TestAuthGate(t *testing.T) {
	fake := remotetest.NewFake("")
	m := newTestManager(t, fake)
	gates := Gates{Wait: time.Second}

	rr, view := serveGate(t, m.Anonymous(), gates.RequireAuth)
	if rr.Code != http.StatusUnauthorized || view.Action != ActionLogin {
		t.Errorf("Expected 401 with login action, got %d %+v", rr.Code, view)
	}

	rr, _ = serveGate(t, m.ForPrincipal("member-1"), gates.RequireAuth)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected signed-in caller to pass, got %d", rr.Code)
	}

	rr, _ = serveGate(t, nil, gates.RequireAuth)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", rr.Code)
	}
}

func TestAdminGate(t *testing.T) {
	gates := Gates{Wait: 2 * time.Second}

	testCases := []struct {
		name           string
		admin          bool
		allowlisted    bool
		principal      string
		expectedStatus int
	}{
		{"Anonymous is denied", false, false, "", http.StatusForbidden},
		{"Member is denied", false, false, "member-1", http.StatusForbidden},
		{"Admin passes", true, false, "admin-1", http.StatusOK},
		{"Allowlisted principal passes", false, true, "root", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := remotetest.NewFake(tc.principal)
			fake.Admin = tc.admin
			var allow []string
			if tc.allowlisted {
				allow = append(allow, tc.principal)
			}
			m := newTestManager(t, fake, allow...)
			s := m.Anonymous()
			if tc.principal != "" {
				s = m.ForPrincipal(tc.principal)
			}

			rr, view := serveGate(t, s, gates.RequireAdmin)
			if rr.Code != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d (%+v)", tc.expectedStatus, rr.Code, view)
			}
		})
	}
}

func TestAdminGateRendersNothingWhileLoading(t *testing.T) {
	fake := remotetest.NewFake("member-1")
	fake.IsCallerAdminFn = blocked(t)
	m := newTestManager(t, fake)

	rr, _ := serveGate(t, m.ForPrincipal("member-1"), Gates{Wait: 50 * time.Millisecond}.RequireAdmin)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("Expected an empty body, got %q", rr.Body.String())
	}
}

func TestAllowlistedAdminSkipsApproval(t *testing.T) {
	fake := remotetest.NewFake("root")
	m := newTestManager(t, fake, "root")

	rr, view := serveGate(t, m.ForPrincipal("root"), Gates{Wait: 2 * time.Second}.RequireApproved)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected allowlisted principal to pass, got %d (%+v)", rr.Code, view)
	}
}
