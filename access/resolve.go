// Package access derives one composite access status for a session from its
// identity, its backend binding, and the role and approval queries.
package access

import (
	"alumnihub/query"
	"alumnihub/remote"
)

// Signals is the latest snapshot of every input to Resolve
type Signals struct {
	Authenticated       bool
	SessionInitializing bool
	Backend             remote.BindingStatus
	Role                query.State
	Approval            query.State
	Allowlisted         bool
}

// Status is the composite access status
type Status struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	IsApproved      bool `json:"isApproved"`
	IsAdmin         bool `json:"isAdmin"`
	IsLoading       bool `json:"isLoading"`
	IsError         bool `json:"isError"`

	// Diagnostics; an allowlisted principal still carries its role error here
	BackendError  error `json:"-"`
	ApprovalError error `json:"-"`
	RoleError     error `json:"-"`
}

// CanManageMembers reports whether the member panel is writable
func (s Status) CanManageMembers() bool { return s.IsAdmin }

// CanManageContent reports whether announcements, gallery and activities are writable
func (s Status) CanManageContent() bool { return s.IsAdmin }

// CanManageEvents reports whether events are writable
func (s Status) CanManageEvents() bool { return s.IsAdmin }

// Resolve computes the status from a snapshot of signals. Rules apply in
// order and each short-circuits the rest:
//
//  1. a failed backend handle is an error, authenticated or not
//  2. an unauthenticated session is never loading
//  3. a connecting backend or an unsettled role/approval query is loading;
//     the role query is ignored for allowlisted principals
//  4. a failed role/approval query is an error
//  5. otherwise booleans come from query data, false when absent
func Resolve(s Signals) Status {
	if s.Backend.Failed() {
		return Status{
			IsAuthenticated: s.Authenticated,
			IsError:         true,
			BackendError:    s.Backend.Err,
		}
	}

	if !s.Authenticated {
		return Status{}
	}

	st := Status{
		IsAuthenticated: true,
		IsAdmin:         s.Allowlisted,
		IsApproved:      s.Allowlisted,
		RoleError:       s.Role.Err,
	}

	roleSettled := s.Allowlisted || s.Role.IsFetched()
	if !s.Backend.Ready() || !s.Approval.IsFetched() || !roleSettled {
		st.IsLoading = true
		return st
	}

	if s.Approval.IsError() || (!s.Allowlisted && s.Role.IsError()) {
		st.IsError = true
		st.ApprovalError = s.Approval.Err
		return st
	}

	approved, _ := query.Data[bool](s.Approval)
	admin, _ := query.Data[bool](s.Role)
	st.IsApproved = st.IsApproved || approved
	st.IsAdmin = st.IsAdmin || admin
	return st
}
