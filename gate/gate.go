// Package gate holds the state machines that decide whether a protected
// resource renders, blocks, waits, or offers a retry.
package gate

import (
	"alumnihub/access"
	"alumnihub/query"
	"alumnihub/remote"
)

// Input is the subset of access signals the gates read
type Input struct {
	Initializing  bool
	Authenticated bool
	Allowlisted   bool
	Backend       remote.BindingStatus
	Role          query.State
	Approval      query.State
}

// FromSignals adapts resolver signals to gate input
func FromSignals(s access.Signals) Input {
	return Input{
		Initializing:  s.SessionInitializing,
		Authenticated: s.Authenticated,
		Allowlisted:   s.Allowlisted,
		Backend:       s.Backend,
		Role:          s.Role,
		Approval:      s.Approval,
	}
}

// AuthState is a state of the authentication gate
type AuthState int

const (
	AuthLoading AuthState = iota
	AuthUnauthenticated
	AuthAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthUnauthenticated:
		return "unauthenticated"
	case AuthAuthenticated:
		return "authenticated"
	}
	return "loading"
}

// AuthGate waits for the session to resolve. Once it leaves loading it
// never returns to it.
type AuthGate struct {
	state AuthState
}

// State returns the latched state
func (g *AuthGate) State() AuthState {
	return g.state
}

// Update feeds the latest input and returns the gate state
func (g *AuthGate) Update(in Input) AuthState {
	if g.state != AuthLoading {
		return g.state
	}
	switch {
	case in.Authenticated:
		g.state = AuthAuthenticated
	case !in.Initializing:
		g.state = AuthUnauthenticated
	}
	return g.state
}

// ApprovalState is a state of the approval gate
type ApprovalState int

const (
	ApprovalBackendError ApprovalState = iota
	ApprovalBackendLoading
	ApprovalResolverLoading
	ApprovalUnauthenticated
	ApprovalResolverError
	ApprovalNotApproved
	ApprovalApproved
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalBackendError:
		return "backend_error"
	case ApprovalBackendLoading:
		return "backend_loading"
	case ApprovalResolverLoading:
		return "loading"
	case ApprovalUnauthenticated:
		return "unauthenticated"
	case ApprovalResolverError:
		return "error"
	case ApprovalNotApproved:
		return "not_approved"
	case ApprovalApproved:
		return "approved"
	}
	return "unknown"
}

// EvaluateApproval picks the approval gate state. The checks run in a fixed
// order so that a backend error always wins over a stale answer and an
// unauthenticated caller never sees a spinner.
func EvaluateApproval(in Input) ApprovalState {
	if in.Backend.Failed() {
		return ApprovalBackendError
	}
	if in.Authenticated && in.Backend.Loading() {
		return ApprovalBackendLoading
	}
	if in.Authenticated && in.Backend.Ready() && (in.Initializing || !in.Approval.IsFetched()) {
		return ApprovalResolverLoading
	}
	if !in.Authenticated {
		return ApprovalUnauthenticated
	}
	if in.Approval.IsError() || (!in.Allowlisted && in.Role.IsError()) {
		return ApprovalResolverError
	}
	approved, _ := query.Data[bool](in.Approval)
	if in.Approval.IsFetched() && !approved && !in.Allowlisted {
		return ApprovalNotApproved
	}
	return ApprovalApproved
}

// RoleState is a state of the admin role gate
type RoleState int

const (
	RoleLoading RoleState = iota
	RoleDenied
	RoleAuthorized
)

func (s RoleState) String() string {
	switch s {
	case RoleDenied:
		return "denied"
	case RoleAuthorized:
		return "authorized"
	}
	return "loading"
}

// EvaluateRole picks the role gate state. A caller without a session, or
// whose role check failed, is denied.
func EvaluateRole(in Input) RoleState {
	if in.Allowlisted && in.Authenticated {
		return RoleAuthorized
	}
	if !in.Authenticated || in.Backend.Failed() {
		return RoleDenied
	}
	if in.Backend.Loading() || !in.Role.IsFetched() {
		return RoleLoading
	}
	if admin, _ := query.Data[bool](in.Role); admin {
		return RoleAuthorized
	}
	return RoleDenied
}
