package services

import (
	"fmt"

	"github.com/yeremiapane/taqueria-app/models"
)

// Actor is the authenticated user a request acts on behalf of.
type Actor struct {
	UserID   uint
	Username string
	Role     models.Role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s#%d(%s)", a.Username, a.UserID, a.Role)
}

func (a Actor) require(roles ...models.Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q may not perform this action", ErrForbidden, a.Role)
}
