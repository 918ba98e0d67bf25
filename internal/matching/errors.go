package matching

import (
	"errors"
	"fmt"
)

// ErrNoProfile is returned by batch scoring when the owner has not uploaded a profile.
var ErrNoProfile = errors.New("no profile uploaded")

// AuthorizationError is returned when a profile or posting belongs to another user.
type AuthorizationError struct {
	// Kind is "profile" or "posting".
	Kind    string
	ID      int64
	OwnerID int64
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s %d does not belong to user %d", e.Kind, e.ID, e.OwnerID)
}
