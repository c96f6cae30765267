package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"alumnihub/access"
	"alumnihub/query"
	"alumnihub/remote"
	"alumnihub/table"
)

// ErrInvalidToken is returned for unparseable, forged or expired session tokens
var ErrInvalidToken = errors.New("invalid session token")

// DefaultTTL is the session lifetime when none is configured
const DefaultTTL = 24 * time.Hour

// Options configures a Manager
type Options struct {
	Dialer         remote.Dialer
	Cache          *query.Client
	Allowlist      access.Allowlist
	Secret         []byte
	TTL            time.Duration
	ConnectTimeout time.Duration
	Now            func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
}

// Manager creates, finds and destroys sessions
type Manager struct {
	opts Options

	mu          sync.Mutex
	sessions    map[string]*Session
	expires     map[string]time.Time
	byPrincipal map[string]string
	revoked     map[string]time.Time
	anonymous   *Session
}

// NewManager creates a session manager
func NewManager(opts Options) (*Manager, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if opts.Dialer == nil || opts.Cache == nil {
		return nil, errors.New("session manager needs a dialer and a cache")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Manager{
		opts:        opts,
		sessions:    make(map[string]*Session),
		expires:     make(map[string]time.Time),
		byPrincipal: make(map[string]string),
		revoked:     make(map[string]time.Time),
	}
	m.anonymous = m.newSession(uuid.NewString(), "", StatusIdle)
	return m, nil
}

// Cache returns the shared query cache
func (m *Manager) Cache() *query.Client {
	return m.opts.Cache
}

func (m *Manager) newSession(id, principal string, status LoginStatus) *Session {
	s := &Session{
		ID:        id,
		principal: principal,
		status:    status,
		Table:     table.NewState(),
	}
	s.Binding = remote.NewBinding(m.opts.Dialer, principal, m.opts.ConnectTimeout)
	s.Access = access.NewResolver(s, s.Binding, m.opts.Cache, m.opts.Allowlist)
	return s
}

// Anonymous returns the shared signed-out session
func (m *Manager) Anonymous() *Session {
	return m.anonymous
}

// Login creates a session for principal and returns it with its signed token
func (m *Manager) Login(principal string) (*Session, string, error) {
	if principal == "" {
		return nil, "", errors.New("principal is required")
	}
	id := uuid.NewString()
	s := m.newSession(id, principal, StatusLoggingIn)

	token, exp, err := m.sign(id, principal)
	if err != nil {
		s.SetStatus(StatusLoginError)
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.expires[id] = exp
	m.mu.Unlock()

	s.SetStatus(StatusSuccess)
	s.Binding.Connect()
	log.Printf("Session %s started for %s", id, remote.ShortPrincipal(principal))
	return s, token, nil
}

func (m *Manager) sign(id, principal string) (string, time.Time, error) {
	now := m.opts.Now()
	exp := now.Add(m.opts.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(m.opts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Lookup returns the session named by a signed token. A valid token whose
// session is no longer held, for example after a restart, is restored.
func (m *Manager) Lookup(token string) (*Session, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return m.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.opts.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.ID == "" || parsed.Subject == "" {
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.revoked[parsed.ID]; ok {
		return nil, ErrInvalidToken
	}
	if s, ok := m.sessions[parsed.ID]; ok {
		return s, nil
	}
	s := m.newSession(parsed.ID, parsed.Subject, StatusSuccess)
	m.sessions[parsed.ID] = s
	m.expires[parsed.ID] = parsed.ExpiresAt.Time
	log.Printf("Session %s restored for %s", parsed.ID, remote.ShortPrincipal(parsed.Subject))
	return s, nil
}

// ForPrincipal returns the session for a caller authenticated per request,
// for example with a bearer ID token, creating it on first use
func (m *Manager) ForPrincipal(principal string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPrincipal[principal]; ok {
		if s, ok := m.sessions[id]; ok {
			m.expires[id] = m.opts.Now().Add(m.opts.TTL)
			return s
		}
	}
	id := uuid.NewString()
	s := m.newSession(id, principal, StatusSuccess)
	m.sessions[id] = s
	m.expires[id] = m.opts.Now().Add(m.opts.TTL)
	m.byPrincipal[principal] = id
	return s
}

// Logout destroys a session and drops its cached data. Its token is
// rejected from then on.
func (m *Manager) Logout(s *Session) {
	if s == nil || s == m.anonymous {
		return
	}
	m.mu.Lock()
	exp, ok := m.expires[s.ID]
	if !ok {
		exp = m.opts.Now().Add(m.opts.TTL)
	}
	m.revoked[s.ID] = exp
	delete(m.sessions, s.ID)
	delete(m.expires, s.ID)
	if id, ok := m.byPrincipal[s.Principal()]; ok && id == s.ID {
		delete(m.byPrincipal, s.Principal())
	}
	m.mu.Unlock()

	m.drop(s)
	log.Printf("Session %s ended", s.ID)
}

func (m *Manager) drop(s *Session) {
	principal := s.Principal()
	s.Binding.Close()
	s.SetStatus(StatusIdle)
	s.mu.Lock()
	s.principal = ""
	s.mu.Unlock()
	m.opts.Cache.RemoveScope(principal)
}

// Sweep destroys expired sessions and returns how many were removed
func (m *Manager) Sweep() int {
	now := m.opts.Now()
	var expired []*Session
	m.mu.Lock()
	for id, exp := range m.expires {
		if now.After(exp) {
			s := m.sessions[id]
			delete(m.sessions, id)
			delete(m.expires, id)
			if s != nil {
				if pid, ok := m.byPrincipal[s.Principal()]; ok && pid == id {
					delete(m.byPrincipal, s.Principal())
				}
				expired = append(expired, s)
			}
		}
	}
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.drop(s)
	}
	return len(expired)
}

// Len returns the number of live sessions, not counting the anonymous one
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
