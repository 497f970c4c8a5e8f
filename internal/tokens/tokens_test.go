package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdonin/shop_backend/internal/apperr"
)

var testSecret = []byte("test-jwt-secret")

func TestIssueParse_RoundTrip(t *testing.T) {
	t.Parallel()

	expire := time.Now().Unix() + 900

	tests := []struct {
		name   string
		claims Claims
	}{
		{
			name:   "access",
			claims: Claims{Type: TypeAccess, UUID: "uuid-1", UserID: 42, Expire: expire},
		},
		{
			name:   "refresh",
			claims: Claims{Type: TypeRefresh, UUID: "uuid-1", UserID: 42, Expire: expire},
		},
		{
			name:   "confirm",
			claims: Claims{Type: TypeConfirm, Email: "user@example.com", Expire: expire},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := Issue(tt.claims, testSecret)
			require.NoError(t, err)
			require.NotEmpty(t, raw)

			parsed, err := Parse(raw, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.claims.Type, parsed.Type)
			assert.Equal(t, tt.claims.UUID, parsed.UUID)
			assert.Equal(t, tt.claims.UserID, parsed.UserID)
			assert.Equal(t, tt.claims.Email, parsed.Email)
			assert.Equal(t, tt.claims.Expire, parsed.Expire)
		})
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := Issue(Claims{Type: TypeAccess, UUID: "u", UserID: 1, Expire: time.Now().Unix() + 60}, testSecret)
	require.NoError(t, err)

	parsed, err := Parse(raw, []byte("another-secret"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
	assert.Nil(t, parsed)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		parsed, err := Parse(raw, testSecret)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrInvalidToken)
		assert.Nil(t, parsed)
	}
}

func TestParse_Tampered(t *testing.T) {
	t.Parallel()

	raw, err := Issue(Claims{Type: TypeAccess, UUID: "u", UserID: 1, Expire: time.Now().Unix() + 60}, testSecret)
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = Parse(tampered, testSecret)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}
