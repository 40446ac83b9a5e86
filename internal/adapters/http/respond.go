package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookclub/internal/adapters/http/middleware"
	"bookclub/internal/application/orchestrators"
	"bookclub/internal/domain/book"
	"bookclub/internal/domain/calendar"
	"bookclub/internal/domain/gallery"
	"bookclub/internal/domain/meetup"
	"bookclub/internal/domain/member"
	"bookclub/internal/domain/period"
	"bookclub/internal/domain/profile"
	"bookclub/internal/domain/suggestion"
	"bookclub/internal/domain/vote"
)

const roleSuperAdmin = profile.RoleSuperAdmin

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

const msgInternal = "Internal server error"

var errInvalidBody = errors.New("invalid request body")

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	middleware.WriteError(w, status, msg)
}

// strictDecode decodes a JSON body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

// internalError logs err and writes the generic 500 body. Details never
// reach the client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request_failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// errorMapping translates a domain error into a response. An empty message
// means the error text, capitalised.
type errorMapping struct {
	err    error
	status int
	msg    string
}

// errorTable is consulted in order after any per-handler overrides.
var errorTable = []errorMapping{
	{errInvalidBody, http.StatusBadRequest, "Invalid request body"},

	{orchestrators.ErrCredentialsRequired, http.StatusBadRequest, "Email and password are required"},
	{orchestrators.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{orchestrators.ErrAccountDeactivated, http.StatusForbidden, "Your account has been deactivated. Please contact an administrator."},
	{orchestrators.ErrPasswordNotSet, http.StatusForbidden, "Your password has not been set. Use the link in your invitation email or reset your password."},
	{orchestrators.ErrEmailRequired, http.StatusBadRequest, "Email address is required."},
	{orchestrators.ErrResetFieldsRequired, http.StatusBadRequest, "Reset token and new password are required."},
	{profile.ErrResetTokenInvalid, http.StatusBadRequest, "This reset link is invalid or has already been used. Please request a new one."},
	{profile.ErrResetTokenExpired, http.StatusBadRequest, "This reset link has expired. Reset links are valid for 1 hour. Please request a new one."},

	{orchestrators.ErrUserFieldsRequired, http.StatusBadRequest, "Email and full name are required"},
	{orchestrators.ErrUserIDRequired, http.StatusBadRequest, "User ID is required"},
	{orchestrators.ErrSuperAdminOnly, http.StatusForbidden, ""},
	{orchestrators.ErrSelfModification, http.StatusForbidden, ""},
	{profile.ErrEmailTaken, http.StatusBadRequest, "A user with this email already exists"},
	{profile.ErrNotFound, http.StatusNotFound, "User not found"},

	{orchestrators.ErrMemberIDRequired, http.StatusBadRequest, "Member ID is required"},
	{orchestrators.ErrNotProfileOwner, http.StatusForbidden, "You can only edit your own profile"},
	{orchestrators.ErrAdminOnlyLink, http.StatusForbidden, "Only admins can link profiles to members"},
	{orchestrators.ErrProfileIDRequired, http.StatusBadRequest, "Profile ID is required"},
	{member.ErrNotFound, http.StatusNotFound, "Member not found"},
	{member.ErrEmptyName, http.StatusBadRequest, "Name is required"},
	{member.ErrAlreadyLinked, http.StatusBadRequest, "Member is already linked to another profile"},
	{member.ErrProfileHasMember, http.StatusBadRequest, "Profile is already linked to a member"},

	{suggestion.ErrMissingFields, http.StatusBadRequest, "Missing required fields"},
	{suggestion.ErrQuotaExceeded, http.StatusBadRequest, "You can only suggest 3 books per month"},
	{suggestion.ErrNotFound, http.StatusNotFound, "Suggestion not found"},
	{suggestion.ErrNotOwner, http.StatusForbidden, ""},
	{orchestrators.ErrSuggestionIDRequired, http.StatusBadRequest, "Suggestion ID is required"},
	{vote.ErrMissingSuggestion, http.StatusBadRequest, "Suggestion ID is required"},
	{vote.ErrAlreadyVoted, http.StatusBadRequest, "You have already voted for this book"},
	{vote.ErrNotVoted, http.StatusBadRequest, ""},

	{gallery.ErrMissingFields, http.StatusBadRequest, "Missing required fields (type, url, title, month, year)"},
	{gallery.ErrNotFound, http.StatusNotFound, "Gallery item not found"},
	{book.ErrNotFound, http.StatusNotFound, "Book not found"},
	{meetup.ErrNotFound, http.StatusNotFound, "Meetup not found"},
	{calendar.ErrMissingStart, http.StatusBadRequest, "Start date is required"},
	{period.ErrInvalidMonth, http.StatusBadRequest, "Month must be between 1 and 12"},
}

// validationErrors are returned by Validate methods and become a 400 with the
// error text.
var validationErrors = []error{
	profile.ErrEmptyEmail, profile.ErrInvalidEmail, profile.ErrEmptyFullName, profile.ErrInvalidRole,
	profile.ErrEmptyPassword, profile.ErrPasswordTooShort, profile.ErrPasswordTooLong, profile.ErrPasswordTooWeak,
	profile.ErrEmailTooLong, profile.ErrFullNameTooLong,
	member.ErrInvalidSocialLink, member.ErrNameTooLong, member.ErrRoleTooLong, member.ErrBioTooLong,
	member.ErrNegativeOrder, member.ErrTooManyLinks,
	suggestion.ErrTitleTooLong, suggestion.ErrAuthorTooLong, suggestion.ErrSynopsisTooBig,
	gallery.ErrInvalidType, gallery.ErrInvalidURL,
	period.ErrInvalidYear, period.ErrInvalidCategory,
	calendar.ErrInvalidStart, calendar.ErrInvalidEnd, calendar.ErrEndBefore,
}

// fail writes the response for err. overrides are checked first so a
// handler can reword a shared error, e.g. profile.ErrNotFound while linking.
// Unknown errors are logged and become a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, overrides ...errorMapping) {
	if status, msg, ok := lookupError(err, overrides); ok {
		writeError(w, status, msg)
		return
	}
	s.internalError(w, r, err)
}

// invalid writes the response for an error returned by a Validate method.
// Errors outside the tables are still client errors.
func invalid(w http.ResponseWriter, err error) {
	if status, msg, ok := lookupError(err, nil); ok {
		writeError(w, status, msg)
		return
	}
	writeError(w, http.StatusBadRequest, sentence(err.Error()))
}

func lookupError(err error, overrides []errorMapping) (int, string, bool) {
	for _, table := range [][]errorMapping{overrides, errorTable} {
		for _, m := range table {
			if errors.Is(err, m.err) {
				if m.msg == "" {
					return m.status, sentence(err.Error()), true
				}
				return m.status, m.msg, true
			}
		}
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest, sentence(err.Error()), true
		}
	}
	return 0, "", false
}

// sentence capitalises the first letter of msg.
func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// session returns the caller's session. Only valid behind RequireAuth.
func session(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// actor converts the session into the orchestrator actor.
func actor(sess middleware.Session) orchestrators.Actor {
	return orchestrators.Actor{ID: sess.ProfileID, Role: sess.Role}
}

// queryInt parses an optional integer query value; absent or malformed
// values are 0.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return n
}

// queryBool reports whether the query value is "true" or "1".
func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}
