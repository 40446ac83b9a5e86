package member

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxRoleLength  = 60
	MaxBioLength   = 2000
	MaxSocialLinks = 10
)

// DefaultRole is the role label given to members created from a profile.
const DefaultRole = "Member"

// Domain errors
var (
	ErrNotFound          = errors.New("member not found")
	ErrEmptyName         = errors.New("name is required")
	ErrAlreadyLinked     = errors.New("member is already linked to another profile")
	ErrProfileHasMember  = errors.New("profile is already linked to a member")
	ErrInvalidSocialLink = errors.New("social links must be absolute http(s) URLs")
	ErrNameTooLong       = errors.New("name cannot exceed 100 characters")
	ErrRoleTooLong       = errors.New("role cannot exceed 60 characters")
	ErrBioTooLong        = errors.New("bio cannot exceed 2000 characters")
	ErrNegativeOrder     = errors.New("order index cannot be negative")
	ErrTooManyLinks      = errors.New("too many social links")
)

// SocialLinks maps a platform name (instagram, twitter, ...) to a profile URL.
type SocialLinks map[string]string

// Member is a public roster entry, optionally linked to one login profile.
type Member struct {
	ID          string
	ProfileID   string // empty when unlinked
	Name        string
	Role        string
	Bio         string
	ImageURL    string
	SocialLinks SocialLinks
	IsVisible   bool
	OrderIndex  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(m.Role) > MaxRoleLength {
		return ErrRoleTooLong
	}
	if len(m.Bio) > MaxBioLength {
		return ErrBioTooLong
	}
	if m.OrderIndex < 0 {
		return ErrNegativeOrder
	}
	return m.SocialLinks.Validate()
}

// Validate checks every non-empty link is an absolute http(s) URL.
func (s SocialLinks) Validate() error {
	if len(s) > MaxSocialLinks {
		return ErrTooManyLinks
	}
	for _, raw := range s {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidSocialLink
		}
	}
	return nil
}

// IsLinked reports whether the member has a profile back-reference.
func (m *Member) IsLinked() bool {
	return m.ProfileID != ""
}

// LinkTo sets the profile back-reference.
// PRE: member is unlinked or already linked to profileID
// POST: ProfileID == profileID
func (m *Member) LinkTo(profileID string) error {
	if m.ProfileID != "" && m.ProfileID != profileID {
		return ErrAlreadyLinked
	}
	m.ProfileID = profileID
	return nil
}

// IsOwnedBy reports whether the member is linked to profileID.
func (m *Member) IsOwnedBy(profileID string) bool {
	return profileID != "" && m.ProfileID == profileID
}

// NameForProfile derives a roster name from a profile: the full name, or the
// local part of the email when no name is set.
func NameForProfile(fullName, email string) string {
	if name := strings.TrimSpace(fullName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
