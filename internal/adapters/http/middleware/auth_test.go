package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainProfile "bookclub/internal/domain/profile"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func memberSession() Session {
	return Session{ProfileID: "p1", Email: "ada@example.com", Name: "Ada", Role: domainProfile.RoleMember}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(testSecret, WithClock(func() time.Time { return now }))

	token, issued, err := issuer.Issue(memberSession())
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultSessionTTL), issued.ExpiresAt)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProfileID)
	assert.Equal(t, domainProfile.RoleMember, got.Role)
	assert.Equal(t, "Ada", got.Name)
	assert.True(t, got.ExpiresAt.Equal(issued.ExpiresAt))
}

func TestTokenIssuer_ExpiresAfterThirtyDays(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	clock := now
	issuer := NewTokenIssuer(testSecret, WithClock(func() time.Time { return clock }))

	token, _, err := issuer.Issue(memberSession())
	require.NoError(t, err)

	clock = now.Add(29 * 24 * time.Hour)
	_, err = issuer.Parse(token)
	assert.NoError(t, err)

	clock = now.Add(DefaultSessionTTL + time.Minute)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokenIssuer_RejectsForgedTokens(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	other := NewTokenIssuer([]byte("another-secret-another-secret-00"))

	token, _, err := other.Issue(memberSession())
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "p1", "role": "super_admin", "iss": "bookclub",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

type validatorFunc func(ctx context.Context, s Session) (Session, error)

func (f validatorFunc) ValidateSession(ctx context.Context, s Session) (Session, error) {
	return f(ctx, s)
}

// sessionEcho reports the session role, or "anonymous".
var sessionEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if s, ok := GetSessionFromContext(r.Context()); ok {
		w.Write([]byte(s.Role))
		return
	}
	w.Write([]byte("anonymous"))
})

func TestAuth_ReadsCookieAndBearer(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	token, _, err := issuer.Issue(memberSession())
	require.NoError(t, err)
	handler := Auth(issuer, nil)(sessionEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "member", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "member", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestAuth_ValidatorRefreshesAndRejects(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	token, _, err := issuer.Issue(memberSession())
	require.NoError(t, err)

	promote := validatorFunc(func(_ context.Context, s Session) (Session, error) {
		s.Role = domainProfile.RoleAdmin
		return s, nil
	})
	reject := validatorFunc(func(context.Context, Session) (Session, error) {
		return Session{}, errors.New("deactivated")
	})

	for name, tc := range map[string]struct {
		validator SessionValidator
		want      string
	}{
		"promoted":    {promote, "admin"},
		"deactivated": {reject, "anonymous"},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			Auth(issuer, tc.validator)(sessionEcho).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireAdmin(ok)

	tests := []struct {
		name    string
		session *Session
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"member", &Session{ProfileID: "p", Role: domainProfile.RoleMember}, http.StatusForbidden},
		{"admin", &Session{ProfileID: "p", Role: domainProfile.RoleAdmin}, http.StatusOK},
		{"super_admin", &Session{ProfileID: "p", Role: domainProfile.RoleSuperAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.session != nil {
				req = req.WithContext(ContextWithSession(req.Context(), *tt.session))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(sessionEcho)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/votes", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/votes", nil)
	req = req.WithContext(ContextWithSession(req.Context(), memberSession()))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", DefaultSessionTTL, true)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 30*24*60*60, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, false)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
