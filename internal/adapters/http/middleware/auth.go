package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainProfile "bookclub/internal/domain/profile"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "bookclub_session"

// DefaultSessionTTL is the absolute lifetime of a session token. Tokens are
// never refreshed.
const DefaultSessionTTL = 30 * 24 * time.Hour

const tokenIssuer = "bookclub"

// ErrInvalidSession is returned for a token that is malformed, forged or expired.
var ErrInvalidSession = errors.New("invalid session")

// Session represents an authenticated session.
type Session struct {
	ProfileID string
	Email     string
	Name      string
	Role      string
	Image     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin reports whether the session role is admin or super_admin.
func (s Session) IsAdmin() bool {
	return domainProfile.IsAdminRole(s.Role)
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Image string `json:"image,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption configures a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithTTL overrides DefaultSessionTTL.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *TokenIssuer) { i.ttl = ttl }
}

// WithClock overrides time.Now for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) { i.now = now }
}

// NewTokenIssuer creates an issuer for the given secret.
// PRE: len(secret) >= 32
func NewTokenIssuer(secret []byte, opts ...IssuerOption) *TokenIssuer {
	i := &TokenIssuer{secret: secret, ttl: DefaultSessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL returns the token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the session identity.
// PRE: s.ProfileID and s.Role are non-empty
// POST: Returns the token and the session with IssuedAt and ExpiresAt set
func (i *TokenIssuer) Issue(s Session) (string, Session, error) {
	now := i.now().UTC().Truncate(time.Second)
	s.IssuedAt = now
	s.ExpiresAt = now.Add(i.ttl)
	claims := sessionClaims{
		Email: s.Email,
		Name:  s.Name,
		Role:  s.Role,
		Image: s.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   s.ProfileID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session: %w", err)
	}
	return token, s, nil
}

// Parse verifies a token and returns its session.
// POST: Returns ErrInvalidSession (wrapped) for any bad or expired token
func (i *TokenIssuer) Parse(token string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return Session{}, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}
	s := Session{
		ProfileID: claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      claims.Role,
		Image:     claims.Image,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// SessionValidator re-checks a verified session against current state,
// e.g. to drop sessions of deactivated profiles and pick up role changes.
type SessionValidator interface {
	ValidateSession(ctx context.Context, s Session) (Session, error)
}

// Auth returns middleware that reads the session from the cookie or an
// Authorization: Bearer header and sets it in context.
// It does NOT block unauthenticated requests. Use RequireAuth or RequireRole for that.
func Auth(issuer *TokenIssuer, validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r); token != "" {
				if session, err := issuer.Parse(token); err == nil {
					if validator != nil {
						session, err = validator.ValidateSession(r.Context(), session)
					}
					if err == nil {
						r = r.WithContext(ContextWithSession(r.Context(), session))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth returns middleware that rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that rejects anonymous requests with 401 and
// requests from users without one of the specified roles with 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !roleSet[session.Role] {
				WriteError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows admin and super_admin sessions.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(domainProfile.RoleAdmin, domainProfile.RoleSuperAdmin)(next)
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// IsAdmin checks if the current session is an admin or super_admin.
func IsAdmin(ctx context.Context) bool {
	session, ok := GetSessionFromContext(ctx)
	return ok && session.IsAdmin()
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
