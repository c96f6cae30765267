package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"alumnihub/config"
	"alumnihub/remote"
	"alumnihub/session"
)

// Define context keys
type contextKey string

const sessionKey contextKey = "session"

// SessionCookie carries the signed session token
const SessionCookie = "alumnihub_session"

// ErrNoVerifier is returned when no identity provider is configured
var ErrNoVerifier = errors.New("identity provider not configured")

// TokenVerifier checks an identity provider ID token and returns its principal
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

func (f firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("error verifying ID token: %w", err)
	}
	return token.UID, nil
}

// InitializeFirebase initializes the Firebase Admin SDK. It returns a nil
// verifier and no error when no credentials are configured.
func InitializeFirebase(ctx context.Context, cfg config.Config) (TokenVerifier, error) {
	log.Println("Starting Firebase initialization...")

	creds, err := cfg.FirebaseCredentials()
	if err != nil {
		log.Printf("Error reading Firebase credentials: %v", err)
		return nil, err
	}
	if creds == nil {
		log.Println("No Firebase credentials found, ID token login is disabled")
		return nil, nil
	}
	log.Printf("Credentials JSON length: %d", len(creds))

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, option.WithCredentialsJSON(creds))
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return nil, err
	}

	client, err := app.Auth(ctx)
	if err != nil {
		log.Printf("Error getting Firebase Auth client: %v", err)
		return nil, err
	}

	log.Println("Firebase Admin SDK initialized successfully")
	return firebaseVerifier{client: client}, nil
}

// Identity attaches the caller's session to every request. It never
// rejects a request; the gates decide what an anonymous caller may see.
type Identity struct {
	Sessions *session.Manager
	Verifier TokenVerifier

	// DevPrincipal signs every request in as this principal when no other
	// credential is present. Development only.
	DevPrincipal string
}

// Middleware resolves the session and stores it in the request context
func (id *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip for CORS preflight
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		s := id.Resolve(r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// Resolve finds the session for a request: session cookie first, then a
// bearer ID token, then the development principal
func (id *Identity) Resolve(r *http.Request) *session.Session {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		s, err := id.Sessions.Lookup(c.Value)
		if err == nil {
			return s
		}
		log.Printf("Ignoring session cookie: %v", err)
	}

	if idToken := extractToken(r.Header.Get("Authorization")); idToken != "" {
		principal, err := id.Verify(r.Context(), idToken)
		if err == nil {
			return id.Sessions.ForPrincipal(principal)
		}
		log.Printf("Error verifying token: %v", err)
	}

	if id.DevPrincipal != "" {
		return id.Sessions.ForPrincipal(id.DevPrincipal)
	}
	return id.Sessions.Anonymous()
}

// Verify checks an ID token with the identity provider
func (id *Identity) Verify(ctx context.Context, idToken string) (string, error) {
	if id.Verifier == nil {
		return "", ErrNoVerifier
	}
	principal, err := id.Verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	if principal == "" {
		return "", errors.New("token has no subject")
	}
	log.Printf("Verified ID token for %s", remote.ShortPrincipal(principal))
	return principal, nil
}

// extractToken gets the token from the Authorization header
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, "Bearer ")
	if len(parts) != 2 {
		return ""
	}

	return parts[1]
}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext retrieves the session from the request context
func SessionFromContext(ctx context.Context) *session.Session {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	if !ok {
		return nil
	}
	return s
}
