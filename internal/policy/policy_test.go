package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/models"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	owner := &models.User{ID: 7}
	stranger := &models.User{ID: 8}
	admin := &models.User{ID: 9, IsAdmin: true}

	tests := []struct {
		name    string
		rule    Rule
		user    *models.User
		ownerID uint
		want    error
	}{
		{"authenticated ok", AuthenticatedOnly, stranger, 7, nil},
		{"owner passes owner rule", OwnerOrAdmin, owner, 7, nil},
		{"admin passes owner rule", OwnerOrAdmin, admin, 7, nil},
		{"stranger fails owner rule", OwnerOrAdmin, stranger, 7, apperr.ErrForbidden},
		{"admin passes admin rule", AdminOnly, admin, 0, nil},
		{"owner fails admin rule", AdminOnly, owner, 0, apperr.ErrForbidden},
		{"nil user is unauthorized", OwnerOrAdmin, nil, 7, apperr.ErrUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Check(tt.rule, tt.user, tt.ownerID)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
