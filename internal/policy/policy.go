// Package policy is the single place entitlement rules live. Handlers declare
// a rule per operation instead of repeating owner/admin conditionals.
package policy

import (
	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/models"
)

type Rule int

const (
	// AuthenticatedOnly admits any confirmed, authenticated user.
	AuthenticatedOnly Rule = iota
	// OwnerOrAdmin admits the resource owner and admins.
	OwnerOrAdmin
	// AdminOnly admits admins.
	AdminOnly
)

// Check evaluates a rule for the authenticated user against the owning user
// id of the resource. ownerID is ignored unless the rule is OwnerOrAdmin.
func Check(rule Rule, user *models.User, ownerID uint) error {
	if user == nil {
		return apperr.ErrUnauthorized
	}
	switch rule {
	case AuthenticatedOnly:
		return nil
	case OwnerOrAdmin:
		if user.IsAdmin || user.ID == ownerID {
			return nil
		}
	case AdminOnly:
		if user.IsAdmin {
			return nil
		}
	}
	return apperr.ErrForbidden
}
