package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CanAccess reports whether the actor may act on resources owned by userID.
func (a Actor) CanAccess(userID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.UserID != uuid.Nil && a.UserID == userID
}
