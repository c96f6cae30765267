package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"alumnihub/gate"
	"alumnihub/models"
	"alumnihub/remote"
	"alumnihub/session"
)

// Gate actions offered to the client
const (
	ActionLogin           = "login"
	ActionReconnect       = "reconnect"
	ActionRetry           = "retry"
	ActionRequestApproval = "request_approval"
)

// GateView is the body rendered when a gate blocks a request
type GateView struct {
	Gate    string `json:"gate"`
	State   string `json:"state"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

const defaultRecordWait = 2 * time.Second

// Gates renders the access gates in front of protected handlers
type Gates struct {
	// Wait is how long a gate waits for access to settle before it
	// answers with a loading state
	Wait time.Duration
}

func writeGate(w http.ResponseWriter, status int, v GateView) {
	if status == http.StatusAccepted {
		w.Header().Set("Retry-After", "1")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// settle returns the gate input, waiting up to g.Wait while loading(in) holds
func (g Gates) settle(ctx context.Context, s *session.Session, loading func(gate.Input) bool) gate.Input {
	in := gate.FromSignals(s.Access.Signals())
	if !loading(in) || g.Wait <= 0 {
		return in
	}
	ctx, cancel := context.WithTimeout(ctx, g.Wait)
	defer cancel()
	s.Access.Wait(ctx)
	return gate.FromSignals(s.Access.Signals())
}

// approvalRecord returns the caller's approval entry, or "" when there is
// none or it could not be read within the gate wait
func (g Gates) approvalRecord(ctx context.Context, s *session.Session) models.ApprovalStatus {
	wait := g.Wait
	if wait <= 0 {
		wait = defaultRecordWait
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	rec, err := s.Access.ApprovalRecord(ctx)
	if err != nil {
		log.Printf("Error reading approval entry for %s: %v", remote.ShortPrincipal(s.Principal()), err)
		return ""
	}
	status, _ := rec.Get()
	return status
}

// RequireAuth lets signed-in callers through
func (g Gates) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			writeGate(w, http.StatusUnauthorized, unauthenticatedView("auth"))
			return
		}

		var ag gate.AuthGate
		in := g.settle(r.Context(), s, func(in gate.Input) bool {
			return ag.Update(in) == gate.AuthLoading
		})
		switch ag.Update(in) {
		case gate.AuthAuthenticated:
			next.ServeHTTP(w, r)
		case gate.AuthUnauthenticated:
			writeGate(w, http.StatusUnauthorized, unauthenticatedView("auth"))
		default:
			writeGate(w, http.StatusAccepted, GateView{
				Gate:    "auth",
				State:   gate.AuthLoading.String(),
				Title:   "Loading",
				Message: "Loading...",
			})
		}
	})
}

// RequireApproved lets approved members and allowlisted admins through
func (g Gates) RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			writeGate(w, http.StatusUnauthorized, unauthenticatedView("approval"))
			return
		}

		in := g.settle(r.Context(), s, func(in gate.Input) bool {
			st := gate.EvaluateApproval(in)
			return st == gate.ApprovalBackendLoading || st == gate.ApprovalResolverLoading
		})
		state := gate.EvaluateApproval(in)
		view := GateView{Gate: "approval", State: state.String()}

		switch state {
		case gate.ApprovalApproved:
			next.ServeHTTP(w, r)
			return
		case gate.ApprovalBackendError:
			view.Title = "Unable to Connect"
			view.Message = backendMessage(in.Backend)
			view.Action = ActionReconnect
			writeGate(w, http.StatusServiceUnavailable, view)
		case gate.ApprovalBackendLoading:
			view.Title = "Connecting"
			view.Message = "Connecting to backend..."
			writeGate(w, http.StatusAccepted, view)
		case gate.ApprovalResolverLoading:
			view.Title = "Loading"
			view.Message = "Loading..."
			writeGate(w, http.StatusAccepted, view)
		case gate.ApprovalUnauthenticated:
			writeGate(w, http.StatusUnauthorized, unauthenticatedView("approval"))
		case gate.ApprovalResolverError:
			view.Title = "Unable to Load Data"
			view.Message = "There was an error loading your access information. Please try again."
			view.Action = ActionRetry
			writeGate(w, http.StatusBadGateway, view)
		case gate.ApprovalNotApproved:
			view.Title = "Membership Approval Required"
			switch g.approvalRecord(r.Context(), s) {
			case models.ApprovalPending:
				view.State = "approval_pending"
				view.Message = "Your approval request was submitted. An administrator will review your request shortly."
			case models.ApprovalRejected:
				view.Message = "Your membership request was not approved. You may request approval again."
				view.Action = ActionRequestApproval
			default:
				view.Message = "Your membership is pending approval. Please request approval to access this feature."
				view.Action = ActionRequestApproval
			}
			writeGate(w, http.StatusForbidden, view)
		}
	})
}

// RequireAdmin lets admins through. While the role is still resolving it
// answers 204 with no body.
func (g Gates) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			writeGate(w, http.StatusForbidden, deniedView())
			return
		}

		in := g.settle(r.Context(), s, func(in gate.Input) bool {
			return gate.EvaluateRole(in) == gate.RoleLoading
		})
		switch gate.EvaluateRole(in) {
		case gate.RoleAuthorized:
			next.ServeHTTP(w, r)
		case gate.RoleLoading:
			w.WriteHeader(http.StatusNoContent)
		default:
			log.Printf("Admin access denied for %q on %s", remote.ShortPrincipal(s.Principal()), r.URL.Path)
			writeGate(w, http.StatusForbidden, deniedView())
		}
	})
}

func unauthenticatedView(g string) GateView {
	return GateView{
		Gate:    g,
		State:   gate.ApprovalUnauthenticated.String(),
		Title:   "Authentication Required",
		Message: "Please sign in to access this feature",
		Action:  ActionLogin,
	}
}

func deniedView() GateView {
	return GateView{
		Gate:    "role",
		State:   gate.RoleDenied.String(),
		Title:   "Access Denied",
		Message: "You do not have permission to access this feature",
	}
}

func backendMessage(st remote.BindingStatus) string {
	if errors.Is(st.Err, remote.ErrConnectTimeout) {
		return "Backend connection timeout. Please check your connection and try again."
	}
	return "We are having trouble connecting to the backend. Please check your connection and try again."
}
