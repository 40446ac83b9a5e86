package web

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"bookclub/internal/adapters/http/middleware"
	"bookclub/internal/application/orchestrators"
)

const (
	msgForgotPassword = "If an account exists with this email, you will receive a password reset link."
	msgPasswordReset  = "Password updated successfully"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or a form post.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := strictDecode(w, r, &c)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return c, errInvalidBody
	}
	c.Email = r.PostFormValue("email")
	c.Password = r.PostFormValue("password")
	return c, nil
}

// handleLogin checks credentials and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    creds.Email,
		Password: creds.Password,
	}, orchestrators.LoginDeps{ProfileStore: s.stores.Profiles})
	if err != nil {
		s.metrics.AuthEvent("login_failed")
		s.fail(w, r, err)
		return
	}

	token, sess, err := s.issuer.Issue(middleware.Session{
		ProfileID: result.ProfileID,
		Email:     result.Email,
		Name:      result.Name,
		Role:      result.Role,
		Image:     result.Image,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, s.issuer.TTL(), s.cfg.Secure)
	s.metrics.AuthEvent("login_success")

	writeJSON(w, http.StatusOK, map[string]any{
		"user":       newSessionUserView(sess),
		"token":      token,
		"expires_at": sess.ExpiresAt,
	})
}

// handleLogout clears the session cookie. Tokens are stateless, so a copied
// bearer token stays valid until it expires.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		s.log.Info("auth_event", zap.String("event", "logout"), zap.String("profile_id", sess.ProfileID))
	}
	middleware.ClearSessionCookie(w, s.cfg.Secure)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleSession returns the current identity or null.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       newSessionUserView(sess),
		"expires_at": sess.ExpiresAt,
	})
}

// handleCSRFToken returns the token form posts must echo.
func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": csrf.Token(r)})
}

// handleForgotPassword answers the same way whether or not the email exists.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	err := orchestrators.ExecuteForgotPassword(r.Context(), orchestrators.ForgotPasswordInput{Email: input.Email},
		orchestrators.ForgotPasswordDeps{
			ProfileStore: s.stores.Profiles,
			Mailer:       s.mailer,
			Clock:        s.orchestratorClock(),
		})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.AuthEvent("password_reset_requested")
	writeJSON(w, http.StatusOK, map[string]string{"message": msgForgotPassword})
}

// handleResetPassword sets a new password from a reset or invite token.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	err := orchestrators.ExecuteResetPassword(r.Context(), orchestrators.ResetPasswordInput{
		Token:    input.Token,
		Password: input.Password,
	}, orchestrators.ResetPasswordDeps{
		ProfileStore: s.stores.Profiles,
		Clock:        s.orchestratorClock(),
	})
	if err != nil {
		s.metrics.AuthEvent("password_reset_failed")
		s.fail(w, r, err)
		return
	}
	s.metrics.AuthEvent("password_reset")
	writeJSON(w, http.StatusOK, map[string]string{"message": msgPasswordReset})
}
