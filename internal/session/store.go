package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/socialclient/internal/errs"
	"github.com/and161185/socialclient/internal/model"
)

// TokenKey is the fixed slot key holding the bearer token.
const TokenKey = "social.auth_token"

// Store owns the bearer token. It performs no validity checks: only the API decides
// whether a token is good.
type Store struct {
	slot Slot
}

// NewStore binds a Store to slot.
func NewStore(slot Slot) *Store { return &Store{slot: slot} }

// Token returns the stored token, or ok=false when absent.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	b, err := s.slot.Get(ctx, TokenKey)
	if errors.Is(err, errs.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if len(b) == 0 {
		return "", false, nil
	}
	return string(b), true, nil
}

// SetToken stores token; an empty token clears the slot.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	return s.slot.Put(ctx, TokenKey, []byte(token))
}

// Clear removes the token. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return s.slot.Delete(ctx, TokenKey)
}

// Session returns the current session with its expiry hint filled when known.
func (s *Store) Session(ctx context.Context) (model.Session, bool, error) {
	tok, ok, err := s.Token(ctx)
	if err != nil || !ok {
		return model.Session{}, ok, err
	}
	sess := model.Session{Token: tok}
	if exp, ok := ExpiryHint(tok); ok {
		sess.ExpiresAt = exp
	}
	return sess, true, nil
}

// ExpiryHint reads the exp claim when the opaque token happens to be a JWT.
// The signature is not verified; the result is informational only.
func ExpiryHint(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
