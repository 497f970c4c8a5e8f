package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/models"
	"github.com/avdonin/shop_backend/internal/repo"
	"github.com/avdonin/shop_backend/internal/tokens"
)

const (
	testAccessTTL  = int64(900)
	testRefreshTTL = int64(3600)
)

type fakeDispatcher struct {
	emails []string
	tokens []string
}

func (d *fakeDispatcher) SendConfirmation(email, token string) {
	d.emails = append(d.emails, email)
	d.tokens = append(d.tokens, token)
}

func newTestService(t *testing.T) (*SessionService, *fakeDispatcher) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.TokenPair{}, &models.CartItem{}))

	d := &fakeDispatcher{}
	svc := NewSessionService(repo.NewStore(db), []byte("test-secret"), testAccessTTL, testRefreshTTL, d)
	return svc, d
}

func register(t *testing.T, svc *SessionService, username, email string) string {
	t.Helper()
	token, err := svc.Register(context.Background(), username, email, "pass123")
	require.NoError(t, err)
	return token
}

func registerConfirmed(t *testing.T, svc *SessionService, username, email string) *SessionResult {
	t.Helper()
	token := register(t, svc, username, email)
	res, err := svc.Confirm(context.Background(), token)
	require.NoError(t, err)
	return res
}

func TestRegister_ProducesConfirmToken(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()
	base := time.Now().Unix()
	svc.Now = func() int64 { return base }

	token, err := svc.Register(ctx, "alice", "alice@x.com", "pass123")
	require.NoError(t, err)

	claims, err := tokens.Parse(token, svc.Secret)
	require.NoError(t, err)
	assert.Equal(t, tokens.TypeConfirm, claims.Type)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, base+5*60, claims.Expire)

	require.Len(t, d.tokens, 1)
	assert.Equal(t, token, d.tokens[0])
	assert.Equal(t, "alice@x.com", d.emails[0])

	user, err := svc.Repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, user.IsConfirmed)
	assert.NotEqual(t, "pass123", user.PasswordHash)

	pairs, err := svc.Repo.PairsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, pairs, "registration must not create a session")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "alice", "alice@x.com")

	_, err := svc.Register(context.Background(), "other", "alice@x.com", "pw")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestConfirm_IssuesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	accessClaims, err := tokens.Parse(res.AccessToken, svc.Secret)
	require.NoError(t, err)
	refreshClaims, err := tokens.Parse(res.RefreshToken, svc.Secret)
	require.NoError(t, err)

	assert.Equal(t, tokens.TypeAccess, accessClaims.Type)
	assert.Equal(t, tokens.TypeRefresh, refreshClaims.Type)
	assert.Equal(t, accessClaims.UUID, refreshClaims.UUID)
	assert.Less(t, res.AccessExpiresAt, res.RefreshExpiresAt)

	user, err := svc.Repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsConfirmed)
}

func TestConfirm_InvalidToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Confirm(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	// a session token must not pass the confirm path
	res := registerConfirmed(t, svc, "bob", "bob@x.com")
	_, err = svc.Confirm(ctx, res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestConfirm_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	base := time.Now().Unix()
	svc.Now = func() int64 { return base }

	token := register(t, svc, "alice", "alice@x.com")

	svc.Now = func() int64 { return base + 5*60 + 1 }
	_, err := svc.Confirm(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrExpired)
}

func TestConfirm_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := tokens.Issue(tokens.Claims{
		Type:   tokens.TypeConfirm,
		Email:  "ghost@x.com",
		Expire: svc.Now() + 300,
	}, svc.Secret)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConfirm_Twice_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	token := register(t, svc, "alice", "alice@x.com")

	first, err := svc.Confirm(ctx, token)
	require.NoError(t, err)

	second, err := svc.Confirm(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	user, err := svc.Repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsConfirmed)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registerConfirmed(t, svc, "alice", "alice@x.com")

	res, err := svc.Login(ctx, "alice@x.com", "pass123")
	require.NoError(t, err)

	accessClaims, err := tokens.Parse(res.AccessToken, svc.Secret)
	require.NoError(t, err)
	refreshClaims, err := tokens.Parse(res.RefreshToken, svc.Secret)
	require.NoError(t, err)
	assert.Equal(t, accessClaims.UUID, refreshClaims.UUID)
	assert.Less(t, res.AccessExpiresAt, res.RefreshExpiresAt)

	_, err = svc.Login(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// unknown account looks exactly like a bad password
	_, err = svc.Login(ctx, "nobody@x.com", "pass123")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	require.NoError(t, svc.Logout(ctx, res.AccessToken))

	err := svc.Logout(ctx, res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrAlreadyRevoked)

	// the refresh side of the same pair is retired too
	err = svc.Logout(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAlreadyRevoked)

	assert.ErrorIs(t, svc.Logout(ctx, "garbage"), apperr.ErrUnauthorized)
}

func TestLogout_ExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)
	base := time.Now().Unix()
	svc.Now = func() int64 { return base }

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	svc.Now = func() int64 { return base + testAccessTTL + 1 }
	err := svc.Logout(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrExpired)
}

func TestRefresh_RotatesPair(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")
	oldClaims, err := tokens.Parse(res.RefreshToken, svc.Secret)
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	newClaims, err := tokens.Parse(fresh.RefreshToken, svc.Secret)
	require.NoError(t, err)
	assert.NotEqual(t, oldClaims.UUID, newClaims.UUID)

	old, err := svc.Repo.PairByUUID(ctx, oldClaims.UUID)
	require.NoError(t, err)
	assert.True(t, old.Revoked)

	current, err := svc.Repo.PairByUUID(ctx, newClaims.UUID)
	require.NoError(t, err)
	assert.False(t, current.Revoked)
}

func TestRefresh_ReuseKillsAllSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")
	// a second independent session for the same user
	other, err := svc.Login(ctx, "alice@x.com", "pass123")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	// replaying the retired refresh token nukes the whole family
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAlreadyRevoked)

	user, err := svc.Repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	pairs, err := svc.Repo.PairsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pairs)
	for _, p := range pairs {
		assert.True(t, p.Revoked)
	}

	// even the pair issued by the successful rotation is dead now
	_, err = svc.Authorize(ctx, "Bearer "+fresh.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Authorize(ctx, "Bearer "+other.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRefresh_RejectsNonRefreshTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	_, err := svc.Refresh(ctx, res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRefresh_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	base := time.Now().Unix()
	svc.Now = func() int64 { return base }

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	svc.Now = func() int64 { return base + testRefreshTTL + 1 }
	_, err := svc.Refresh(context.Background(), res.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrExpired)
}

func TestAuthorize(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	user, err := svc.Authorize(ctx, "Bearer "+res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// only the last whitespace-delimited segment counts
	user, err = svc.Authorize(ctx, "Token something "+res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Authorize(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Authorize(ctx, "Bearer garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// a refresh token is not an access credential
	_, err = svc.Authorize(ctx, "Bearer "+res.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthorize_ExpiryBoundary(t *testing.T) {
	svc, _ := newTestService(t)
	base := time.Now().Unix()
	svc.Now = func() int64 { return base }

	res := registerConfirmed(t, svc, "alice", "alice@x.com")

	// equal to expiry is still valid
	svc.Now = func() int64 { return base + testAccessTTL }
	_, err := svc.Authorize(context.Background(), "Bearer "+res.AccessToken)
	require.NoError(t, err)

	svc.Now = func() int64 { return base + testAccessTTL + 1 }
	_, err = svc.Authorize(context.Background(), "Bearer "+res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthorize_UnconfirmedUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc, "alice", "alice@x.com")
	user, err := svc.Repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)

	// a session issued before confirmation must not authorize
	res, err := svc.IssueSession(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, "Bearer "+res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthorize_DeletedUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")
	user, err := svc.Repo.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)

	// drop the row directly so the pair survives and the user is gone
	require.NoError(t, svc.Repo.DB.Delete(&models.User{}, user.ID).Error)

	_, err = svc.Authorize(ctx, "Bearer "+res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAuthorize_RevokedSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res := registerConfirmed(t, svc, "alice", "alice@x.com")
	require.NoError(t, svc.Logout(ctx, res.AccessToken))

	_, err := svc.Authorize(ctx, "Bearer "+res.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
