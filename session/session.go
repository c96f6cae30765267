// Package session keeps the per-login state of a member: identity, backend
// binding, access resolver and admin table settings.
package session

import (
	"sync"

	"alumnihub/access"
	"alumnihub/remote"
	"alumnihub/table"
)

// LoginStatus is the identity provider's view of a session
type LoginStatus string

const (
	StatusInitializing LoginStatus = "initializing"
	StatusIdle         LoginStatus = "idle"
	StatusLoggingIn    LoginStatus = "logging-in"
	StatusSuccess      LoginStatus = "success"
	StatusLoginError   LoginStatus = "loginError"
)

// Session is one principal's state
type Session struct {
	ID      string
	Binding *remote.Binding
	Access  *access.Resolver
	Table   *table.State

	mu        sync.Mutex
	principal string
	status    LoginStatus
}

// Principal returns the signed-in principal, empty when anonymous
func (s *Session) Principal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// Status returns the login status
func (s *Session) Status() LoginStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus changes the login status
func (s *Session) SetStatus(status LoginStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Authenticated reports whether a principal completed login
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal != "" && s.status == StatusSuccess
}

// Initializing reports whether the identity provider has not settled yet
func (s *Session) Initializing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusInitializing || s.status == StatusLoggingIn
}

// Info is the public view of a session
type Info struct {
	Principal      string      `json:"principal,omitempty"`
	ShortPrincipal string      `json:"shortPrincipal,omitempty"`
	Status         LoginStatus `json:"status"`
	Authenticated  bool        `json:"isAuthenticated"`
}

// Info describes the session for the client
func (s *Session) Info() Info {
	p := s.Principal()
	info := Info{
		Principal:     p,
		Status:        s.Status(),
		Authenticated: s.Authenticated(),
	}
	if p != "" {
		info.ShortPrincipal = remote.ShortPrincipal(p)
	}
	return info
}
