package services

import (
	"bookstore/internal/apperror"
	"bookstore/internal/models"
)

// Identity is the authenticated caller of a service operation. A nil
// *Identity means the request carried no valid credentials.
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

func requireAuth(identity *Identity) error {
	if identity == nil || identity.UserID == "" {
		return apperror.Unauthenticated("Authentication required")
	}
	return nil
}

func requireAdmin(identity *Identity) error {
	if err := requireAuth(identity); err != nil {
		return err
	}
	if !identity.IsAdmin() {
		return apperror.Forbidden("Admin access required")
	}
	return nil
}
