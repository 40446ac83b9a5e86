package profile

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength    = 254
	MaxFullNameLength = 120
	MinPasswordLength = 8
	MaxPasswordBytes  = 72 // bcrypt input limit
)

// bcryptCost matches the cost used when accounts were first hashed.
const bcryptCost = 12

// Role constants
const (
	RoleMember     = "member"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Token lifetimes.
const (
	ResetTokenTTL  = time.Hour
	InviteTokenTTL = 7 * 24 * time.Hour
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleMember, RoleAdmin, RoleSuperAdmin}

// Domain errors
var (
	ErrNotFound          = errors.New("profile not found")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrEmptyFullName     = errors.New("full name cannot be empty")
	ErrInvalidRole       = errors.New("role must be one of: member, admin, super_admin")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong   = errors.New("password cannot exceed 72 bytes")
	ErrPasswordTooWeak   = errors.New("password must contain an uppercase letter, a lowercase letter and a number")
	ErrWrongPassword     = errors.New("incorrect password")
	ErrNoPassword        = errors.New("password has not been set")
	ErrResetTokenInvalid = errors.New("reset token is invalid or has already been used")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrEmailTaken        = errors.New("a user with this email already exists")
	ErrEmailTooLong      = errors.New("email cannot exceed 254 characters")
	ErrFullNameTooLong   = errors.New("full name cannot exceed 120 characters")
)

// Profile is a login identity.
type Profile struct {
	ID               string
	Email            string
	PasswordHash     string // empty until the user sets a password
	FullName         string
	AvatarURL        string
	Role             string
	IsActive         bool
	ResetToken       string
	ResetTokenExpiry time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail lower-cases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmptyEmail
	}
	if len(p.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(p.FullName) == "" {
		return ErrEmptyFullName
	}
	if len(p.FullName) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if !IsValidRole(p.Role) {
		return ErrInvalidRole
	}
	return nil
}

// ValidatePassword applies the password policy: at least 8 characters with
// upper case, lower case and a digit, and no more than 72 bytes.
func ValidatePassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if utf8.RuneCountInString(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(plaintext) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	var upper, lower, digit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrPasswordTooWeak
	}
	return nil
}

// SetPassword validates and hashes a password using bcrypt.
// PRE: plaintext satisfies ValidatePassword
// POST: PasswordHash is set to bcrypt hash
func (p *Profile) SetPassword(plaintext string) error {
	if err := ValidatePassword(plaintext); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Profile fields are not mutated
func (p *Profile) CheckPassword(plaintext string) error {
	if p.PasswordHash == "" {
		return ErrNoPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// HasPassword reports whether a password has been set.
func (p *Profile) HasPassword() bool {
	return p.PasswordHash != ""
}

// IsAdmin returns true for admin and super_admin.
func (p *Profile) IsAdmin() bool {
	return IsAdminRole(p.Role)
}

// IssueResetToken generates a random 256-bit token valid for ttl.
// Any previously issued token is replaced.
// POST: ResetToken and ResetTokenExpiry are set
func (p *Profile) IssueResetToken(now time.Time, ttl time.Duration) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	p.ResetToken = hex.EncodeToString(buf)
	p.ResetTokenExpiry = now.Add(ttl)
	return p.ResetToken, nil
}

// CheckResetToken verifies that token matches the stored one and has not expired.
// INVARIANT: Profile fields are not mutated
func (p *Profile) CheckResetToken(token string, now time.Time) error {
	if p.ResetToken == "" || token == "" || p.ResetToken != token {
		return ErrResetTokenInvalid
	}
	if p.ResetTokenExpiry.Before(now) {
		return ErrResetTokenExpired
	}
	return nil
}

// ClearResetToken makes the current token unusable.
func (p *Profile) ClearResetToken() {
	p.ResetToken = ""
	p.ResetTokenExpiry = time.Time{}
}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdminRole reports whether role grants admin access.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
