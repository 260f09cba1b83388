package session

import (
	"context"
	"fmt"

	"github.com/and161185/socialclient/internal/crypto/tokenseal"
)

// Sealed encrypts values before they reach the inner slot. The slot key is bound as AAD.
type Sealed struct {
	inner      Slot
	passphrase []byte
}

var _ Slot = (*Sealed)(nil)

// NewSealed wraps inner with passphrase-based sealing.
func NewSealed(inner Slot, passphrase string) *Sealed {
	return &Sealed{inner: inner, passphrase: []byte(passphrase)}
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	v, err := tokenseal.Open(s.passphrase, []byte(key), blob)
	if err != nil {
		return nil, fmt.Errorf("open sealed slot %q: %w", key, err)
	}
	return v, nil
}

func (s *Sealed) Put(ctx context.Context, key string, value []byte) error {
	blob, err := tokenseal.Seal(s.passphrase, []byte(key), value)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, key, blob)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
