package middleware

import (
	"net/http"
	"strings"
)

// Page paths used by the guard.
const (
	LoginPath         = "/auth/login"
	ResetPasswordPath = "/auth/reset-password"
	HomePath          = "/"
)

// PageGuard applies the page-level redirect table. API paths pass through
// untouched and authorize inside their handlers.
//
//	/api/*                  -> pass
//	/auth/* while logged in -> 302 / (except /auth/reset-password)
//	/admin* anonymous       -> 302 /auth/login
//	/admin* non-admin       -> 302 /
//
// INVARIANT: Must run after Auth so the session is in context.
func PageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target, redirect := pageRedirect(r); redirect {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func pageRedirect(r *http.Request) (string, bool) {
	path := r.URL.Path
	if strings.HasPrefix(path, "/api") {
		return "", false
	}
	session, loggedIn := GetSessionFromContext(r.Context())

	if strings.HasPrefix(path, "/auth") && loggedIn {
		if path == ResetPasswordPath {
			return "", false
		}
		return HomePath, true
	}
	if strings.HasPrefix(path, "/admin") {
		if !loggedIn {
			return LoginPath, true
		}
		if !session.IsAdmin() {
			return HomePath, true
		}
	}
	return "", false
}
