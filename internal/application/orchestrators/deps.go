package orchestrators

import (
	"time"

	"github.com/google/uuid"

	"bookclub/internal/domain/profile"
)

// Clock returns the current time. Deps with a nil Clock use time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

func isAdminRole(role string) bool {
	return profile.IsAdminRole(role)
}
