// Package tokens is the codec for the three token kinds the backend issues:
// access, refresh and confirm. All three are HS256 JWTs signed with the same
// secret; only the type claim tells them apart, so callers must check it
// against the consuming operation.
package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avdonin/shop_backend/internal/apperr"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeConfirm = "confirm"
)

// Claims is the payload carried inside every token. Expire is an absolute
// epoch-seconds timestamp validated by the caller: a token is expired when
// Expire < now, equality still counts as valid. Revocation state is never
// carried here, it lives on the TokenPair row.
type Claims struct {
	Type   string `json:"type"`
	UUID   string `json:"uuid,omitempty"`
	UserID uint   `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Expire int64  `json:"expire"`

	jwt.RegisteredClaims
}

func Issue(claims Claims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Parse verifies signature and structure and returns the embedded claims.
// It does not check Expire or Type; those are operation-specific.
func Parse(raw string, secret []byte) (*Claims, error) {
	var claims Claims
	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !t.Valid {
		return nil, apperr.ErrInvalidToken
	}
	return &claims, nil
}
