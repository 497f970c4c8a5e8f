// Package service holds the session manager: registration confirmation,
// login, logout, refresh rotation with reuse detection, and request-time
// authorization.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/avdonin/shop_backend/internal/apperr"
	"github.com/avdonin/shop_backend/internal/clock"
	"github.com/avdonin/shop_backend/internal/hash"
	"github.com/avdonin/shop_backend/internal/logging"
	"github.com/avdonin/shop_backend/internal/mailer"
	"github.com/avdonin/shop_backend/internal/models"
	"github.com/avdonin/shop_backend/internal/repo"
	"github.com/avdonin/shop_backend/internal/tokens"
)

// confirm tokens are single-purpose and short-lived
const confirmTokenExpires int64 = 5 * 60

type SessionService struct {
	Repo       *repo.Store
	Secret     []byte
	AccessTTL  int64
	RefreshTTL int64
	Mailer     mailer.Dispatcher
	Now        clock.Now
}

func NewSessionService(store *repo.Store, secret []byte, accessTTL, refreshTTL int64, m mailer.Dispatcher) *SessionService {
	return &SessionService{
		Repo:       store,
		Secret:     secret,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Mailer:     m,
		Now:        clock.Unix,
	}
}

// SessionResult carries the two token strings and their expiries back to the
// client. The row id never leaves the service.
type SessionResult struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_token_expires_timestamp"`
	RefreshExpiresAt int64  `json:"refresh_token_expires_timestamp"`
}

func (s *SessionService) expired(expire int64) bool {
	return expire < s.Now()
}

// sessionClaims is the best-effort parse used on paths that accept either
// session token kind. It returns nil rather than an error for anything that
// is not a valid access or refresh token.
func (s *SessionService) sessionClaims(raw string) *tokens.Claims {
	claims, err := tokens.Parse(raw, s.Secret)
	if err != nil {
		return nil
	}
	if claims.Type != tokens.TypeAccess && claims.Type != tokens.TypeRefresh {
		return nil
	}
	return claims
}

// Register creates an unconfirmed user, hands the confirm token to the
// dispatcher and returns it. No session exists until the email is confirmed.
func (s *SessionService) Register(ctx context.Context, username, email, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "session.register")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return "", err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			l.Warn("register rejected", "status", 409, "reason", "email already registered")
		}
		return "", err
	}

	confirmToken, err := tokens.Issue(tokens.Claims{
		Type:   tokens.TypeConfirm,
		Email:  email,
		Expire: s.Now() + confirmTokenExpires,
	}, s.Secret)
	if err != nil {
		return "", err
	}

	if s.Mailer != nil {
		s.Mailer.SendConfirmation(email, confirmToken)
	}

	l.Info("user registered", "user_id", user.ID)
	return confirmToken, nil
}

// Confirm consumes a confirm token, flips the confirmed flag and issues the
// first session. Re-confirming an already-confirmed account is idempotent:
// the flag is written again and a fresh session comes back. The flag commit
// always lands before the pair insert is attempted, so an insert failure
// never silently strands a confirmed user; it surfaces as a 500-class error
// and the caller retries the issue step.
func (s *SessionService) Confirm(ctx context.Context, raw string) (*SessionResult, error) {
	claims, err := tokens.Parse(raw, s.Secret)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	if claims.Type != tokens.TypeConfirm {
		return nil, apperr.ErrInvalidToken
	}
	if s.expired(claims.Expire) {
		return nil, apperr.ErrExpired
	}

	user, err := s.Repo.UserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SetConfirmed(ctx, user.ID); err != nil {
		return nil, err
	}

	res, err := s.IssueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("registration confirmed", "svc", "session.confirm", "user_id", user.ID)
	return res, nil
}

// IssueSession mints a fresh uuid-linked access/refresh pair and persists it
// as one row in state Active.
func (s *SessionService) IssueSession(ctx context.Context, userID uint) (*SessionResult, error) {
	sessionUUID := uuid.NewString()
	now := s.Now()
	accessExp := now + s.AccessTTL
	refreshExp := now + s.RefreshTTL

	accessToken, err := tokens.Issue(tokens.Claims{
		Type:   tokens.TypeAccess,
		UUID:   sessionUUID,
		UserID: userID,
		Expire: accessExp,
	}, s.Secret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := tokens.Issue(tokens.Claims{
		Type:   tokens.TypeRefresh,
		UUID:   sessionUUID,
		UserID: userID,
		Expire: refreshExp,
	}, s.Secret)
	if err != nil {
		return nil, err
	}

	pair := models.TokenPair{
		UUID:             sessionUUID,
		UserID:           userID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}
	if err := s.Repo.CreateTokenPair(ctx, &pair); err != nil {
		return nil, err
	}

	return &SessionResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Login checks credentials and issues a session. Absent account and wrong
// password are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			l.Warn("login failed", "status", 401)
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "status", 401)
		return nil, apperr.ErrUnauthorized
	}

	return s.IssueSession(ctx, user.ID)
}

// Logout retires the session behind the presented token, access or refresh.
// A second logout on the same session is reported as AlreadyRevoked, not
// swallowed.
func (s *SessionService) Logout(ctx context.Context, raw string) error {
	claims := s.sessionClaims(raw)
	if claims == nil {
		return apperr.ErrUnauthorized
	}
	if s.expired(claims.Expire) {
		return apperr.ErrExpired
	}

	pair, err := s.Repo.PairByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrUnauthorized
		}
		return err
	}
	if pair.Revoked {
		return apperr.ErrAlreadyRevoked
	}

	if _, err := s.Repo.RevokePair(ctx, claims.UUID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("session revoked", "svc", "session.logout", "user_id", pair.UserID)
	return nil
}

// Refresh rotates a refresh token: the presented pair is retired and a new
// one issued. Refresh tokens are single-use; presenting one that is already
// retired is treated as theft and every session of that user is killed.
func (s *SessionService) Refresh(ctx context.Context, raw string) (*SessionResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.refresh")

	claims := s.sessionClaims(raw)
	if claims == nil || claims.Type != tokens.TypeRefresh {
		return nil, apperr.ErrUnauthorized
	}
	if s.expired(claims.Expire) {
		return nil, apperr.ErrExpired
	}

	pair, err := s.Repo.PairByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}

	if pair.Revoked {
		if err := s.Repo.RevokeAllForUser(ctx, pair.UserID); err != nil {
			return nil, err
		}
		l.Warn("refresh token reuse, all sessions revoked", "user_id", pair.UserID)
		return nil, apperr.ErrAlreadyRevoked
	}

	won, err := s.Repo.RevokePair(ctx, claims.UUID)
	if err != nil {
		return nil, err
	}
	if !won {
		// a concurrent refresh retired the pair between the read and the
		// conditional update; same treatment as reuse
		if err := s.Repo.RevokeAllForUser(ctx, pair.UserID); err != nil {
			return nil, err
		}
		l.Warn("refresh race lost, all sessions revoked", "user_id", pair.UserID)
		return nil, apperr.ErrAlreadyRevoked
	}

	return s.IssueSession(ctx, pair.UserID)
}

// Authorize resolves the Authorization header into a confirmed user. Only the
// final whitespace-delimited segment of the header is used. Every credential
// problem on this path collapses into the single Unauthorized outcome; a user
// row deleted after issuance is the one distinct NotFound case.
func (s *SessionService) Authorize(ctx context.Context, header string) (*models.User, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, apperr.ErrUnauthorized
	}
	raw := fields[len(fields)-1]

	claims := s.sessionClaims(raw)
	if claims == nil || claims.Type != tokens.TypeAccess {
		return nil, apperr.ErrUnauthorized
	}
	if s.expired(claims.Expire) {
		return nil, apperr.ErrUnauthorized
	}

	pair, err := s.Repo.PairByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if pair.Revoked {
		return nil, apperr.ErrUnauthorized
	}

	user, err := s.Repo.UserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsConfirmed {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}
