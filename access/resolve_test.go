package access

import (
	"errors"
	"fmt"
	"testing"

	"alumnihub/query"
	"alumnihub/remote"
)

var (
	ready      = remote.BindingStatus{State: remote.BindingReady}
	connecting = remote.BindingStatus{State: remote.BindingConnecting}
	failed     = remote.BindingStatus{State: remote.BindingFailed, Err: remote.ErrConnectTimeout}
	pending    = query.State{Status: query.StatusPending, Fetching: true}
	errored    = query.State{Status: query.StatusError, Err: errors.New("rejected")}
)

func yes() query.State { return query.State{Status: query.StatusSuccess, Data: true} }
func no() query.State  { return query.State{Status: query.StatusSuccess, Data: false} }

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want Status
	}{
		{
			name: "backend error wins before authentication",
			in:   Signals{Backend: failed},
			want: Status{IsError: true},
		},
		{
			name: "backend error while authenticated",
			in:   Signals{Authenticated: true, Backend: failed, Role: yes(), Approval: yes()},
			want: Status{IsAuthenticated: true, IsError: true},
		},
		{
			name: "unauthenticated is never loading",
			in:   Signals{Backend: connecting, Role: pending, Approval: pending},
			want: Status{},
		},
		{
			name: "unauthenticated while session initializing",
			in:   Signals{SessionInitializing: true, Backend: ready},
			want: Status{},
		},
		{
			name: "authenticated with backend connecting",
			in:   Signals{Authenticated: true, Backend: connecting},
			want: Status{IsAuthenticated: true, IsLoading: true},
		},
		{
			name: "approval in flight",
			in:   Signals{Authenticated: true, Backend: ready, Role: no(), Approval: pending},
			want: Status{IsAuthenticated: true, IsLoading: true},
		},
		{
			name: "role in flight",
			in:   Signals{Authenticated: true, Backend: ready, Role: pending, Approval: yes()},
			want: Status{IsAuthenticated: true, IsLoading: true},
		},
		{
			name: "approval failed",
			in:   Signals{Authenticated: true, Backend: ready, Role: no(), Approval: errored},
			want: Status{IsAuthenticated: true, IsError: true},
		},
		{
			name: "role failed",
			in:   Signals{Authenticated: true, Backend: ready, Role: errored, Approval: yes()},
			want: Status{IsAuthenticated: true, IsError: true},
		},
		{
			name: "approved member",
			in:   Signals{Authenticated: true, Backend: ready, Role: no(), Approval: yes()},
			want: Status{IsAuthenticated: true, IsApproved: true},
		},
		{
			name: "admin",
			in:   Signals{Authenticated: true, Backend: ready, Role: yes(), Approval: yes()},
			want: Status{IsAuthenticated: true, IsApproved: true, IsAdmin: true},
		},
		{
			name: "absent data defaults to false",
			in:   Signals{Authenticated: true, Backend: ready, Role: query.State{Status: query.StatusSuccess}, Approval: query.State{Status: query.StatusSuccess}},
			want: Status{IsAuthenticated: true},
		},
		{
			name: "allowlisted ignores pending role",
			in:   Signals{Authenticated: true, Backend: ready, Role: pending, Approval: no(), Allowlisted: true},
			want: Status{IsAuthenticated: true, IsApproved: true, IsAdmin: true},
		},
		{
			name: "allowlisted ignores failed role",
			in:   Signals{Authenticated: true, Backend: ready, Role: errored, Approval: no(), Allowlisted: true},
			want: Status{IsAuthenticated: true, IsApproved: true, IsAdmin: true},
		},
		{
			name: "allowlisted still waits on approval",
			in:   Signals{Authenticated: true, Backend: ready, Role: pending, Approval: pending, Allowlisted: true},
			want: Status{IsAuthenticated: true, IsApproved: true, IsAdmin: true, IsLoading: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.in)
			if got.IsAuthenticated != tt.want.IsAuthenticated ||
				got.IsApproved != tt.want.IsApproved ||
				got.IsAdmin != tt.want.IsAdmin ||
				got.IsLoading != tt.want.IsLoading ||
				got.IsError != tt.want.IsError {
				t.Errorf("Resolve() = %s, want %s", flags(got), flags(tt.want))
			}
		})
	}
}

func flags(s Status) string {
	return fmt.Sprintf("{auth:%v approved:%v admin:%v loading:%v error:%v}",
		s.IsAuthenticated, s.IsApproved, s.IsAdmin, s.IsLoading, s.IsError)
}

func TestResolveKeepsRoleErrorForAllowlisted(t *testing.T) {
	got := Resolve(Signals{Authenticated: true, Backend: ready, Role: errored, Approval: yes(), Allowlisted: true})

	if got.IsError {
		t.Error("Expected allowlisted principal not to be in error")
	}
	if got.RoleError == nil {
		t.Error("Expected the role error to be kept for diagnostics")
	}
}

func TestAllowlist(t *testing.T) {
	a := NewAllowlist([]string{" admin-1 ", "", "admin-2"})

	if a.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", a.Len())
	}
	testCases := []struct {
		principal string
		expected  bool
	}{
		{"admin-1", true},
		{"admin-2", true},
		{"", false},
		{"someone", false},
	}
	for _, tc := range testCases {
		if got := a.Contains(tc.principal); got != tc.expected {
			t.Errorf("Contains(%q) = %v, want %v", tc.principal, got, tc.expected)
		}
	}
}
