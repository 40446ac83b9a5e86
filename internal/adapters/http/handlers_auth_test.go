package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookclub/internal/adapters/http/middleware"
	"bookclub/internal/domain/profile"
)

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProfile("ada@example.com", profile.RoleAdmin, testPassword)

	rec := ts.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "  ADA@example.com ", "password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		User  sessionUserView `json:"user"`
		Token string          `json:"token"`
	}](t, rec)
	assert.Equal(t, p.ID, body.User.ID)
	assert.Equal(t, profile.RoleAdmin, body.User.Role)
	require.NotEmpty(t, body.Token)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)

	sess, err := ts.issuer.Parse(body.Token)
	require.NoError(t, err)
	assert.True(t, ts.now.Add(30*24*time.Hour).Equal(sess.ExpiresAt))

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
}

func TestLogin_Failures(t *testing.T) {
	ts := newTestServer(t)
	ts.createProfile("ada@example.com", profile.RoleMember, testPassword)
	invited := ts.createProfile("invited@example.com", profile.RoleMember, "")
	gone := ts.createProfile("gone@example.com", profile.RoleMember, testPassword)
	gone.IsActive = false
	require.NoError(t, ts.stores.Profiles.Save(context.Background(), gone))

	tests := []struct {
		name   string
		email  string
		pass   string
		status int
		msg    string
	}{
		{"missing fields", "", "", http.StatusBadRequest, "Email and password are required"},
		{"unknown email", "nobody@example.com", testPassword, http.StatusUnauthorized, "Invalid email or password"},
		{"wrong password", "ada@example.com", "Wrong1234", http.StatusUnauthorized, "Invalid email or password"},
		{"deactivated", "gone@example.com", testPassword, http.StatusForbidden, "Your account has been deactivated. Please contact an administrator."},
		{"password not set", invited.Email, testPassword, http.StatusForbidden, "Your password has not been set. Use the link in your invitation email or reset your password."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": tt.email, "password": tt.pass}, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorMessage(t, rec))
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLogin_FormPostNeedsCSRFToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createProfile("ada@example.com", profile.RoleMember, "")

	rec := ts.do(http.MethodPost, "/api/auth/logout", map[string]string{}, ts.token(p))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSession_Anonymous(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/auth/session", nil, "")
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/auth/session", nil, "not-a-token")
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())
}

func TestCSRFTokenEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/auth/csrf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["csrfToken"])
}

func TestForgotPassword_SameAnswerForUnknownEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.createProfile("ada@example.com", profile.RoleMember, "")

	known := ts.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ada@example.com"}, "")
	unknown := ts.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "who@example.com"}, "")

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Contains(t, known.Body.String(), msgForgotPassword)

	mail := ts.mailer.last()
	assert.Equal(t, "reset", mail.Kind)
	assert.Equal(t, "ada@example.com", mail.To)
	assert.Len(t, mail.Secret, 64)

	rec := ts.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": " "}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email address is required.", errorMessage(t, rec))
}

func TestResetPassword_TokenWorksExactlyOnce(t *testing.T) {
	ts := newTestServer(t)
	ts.createProfile("ada@example.com", profile.RoleMember, "")
	ts.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ada@example.com"}, "")
	token := ts.mailer.last().Secret
	require.NotEmpty(t, token)

	ts.now = ts.now.Add(59 * time.Minute)
	rec := ts.do(http.MethodPost, "/api/auth/reset-password", map[string]string{"token": token, "password": "NewPass123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Password updated successfully"}`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/auth/reset-password", map[string]string{"token": token, "password": "Another123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This reset link is invalid or has already been used. Please request a new one.", errorMessage(t, rec))

	rec = ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "NewPass123"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPassword_Expired(t *testing.T) {
	ts := newTestServer(t)
	ts.createProfile("ada@example.com", profile.RoleMember, "")
	ts.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "ada@example.com"}, "")
	token := ts.mailer.last().Secret

	ts.now = ts.now.Add(time.Hour + time.Second)
	rec := ts.do(http.MethodPost, "/api/auth/reset-password", map[string]string{"token": token, "password": "NewPass123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This reset link has expired. Reset links are valid for 1 hour. Please request a new one.", errorMessage(t, rec))
}

func TestResetPassword_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		msg  string
	}{
		{"missing token", map[string]string{"password": "NewPass123"}, "Reset token and new password are required."},
		{"short", map[string]string{"token": "t", "password": "Ab1"}, "Password must be at least 8 characters long"},
		{"weak", map[string]string{"token": "t", "password": "alllowercase1"}, "Password must contain an uppercase letter, a lowercase letter and a number"},
		{"longer than bcrypt accepts", map[string]string{"token": "t", "password": "Aa1" + strings.Repeat("x", 80)}, "Password cannot exceed 72 bytes"},
		{"unknown token", map[string]string{"token": "t", "password": "NewPass123"}, "This reset link is invalid or has already been used. Please request a new one."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/auth/reset-password", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.msg, errorMessage(t, rec))
		})
	}
}
