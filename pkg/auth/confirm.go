package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/basekit/basekit/pkg/store"
	"github.com/basekit/basekit/pkg/user"
)

// ConfirmationKey is a single-use email confirmation secret. The key value
// is the record identity, so confirmation is a direct lookup.
type ConfirmationKey struct {
	Key      uuid.UUID `json:"key"`
	User     uuid.UUID `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}

// CollectionName implements store.Record.
func (ConfirmationKey) CollectionName() string { return "confirmation_keys" }

// RecordID implements store.Record.
func (k ConfirmationKey) RecordID() uuid.UUID { return k.Key }

// NewConfirmationKey mints a confirmation key for the user.
func NewConfirmationKey(userID uuid.UUID) ConfirmationKey {
	return ConfirmationKey{
		Key:      uuid.New(),
		User:     userID,
		IssuedAt: time.Now().UTC(),
	}
}

// ConfirmEmail redeems a confirmation key: marks the user's email confirmed
// and deletes the key. A key is single-use; redeeming an unknown or
// already-used key returns ErrInvalidKey.
func (m *Manager) ConfirmEmail(ctx context.Context, key uuid.UUID) (user.User, error) {
	k, err := store.Get[ConfirmationKey](ctx, m.store, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, ErrInvalidKey
		}
		return user.User{}, err
	}

	u, err := store.Get[user.User](ctx, m.store, k.User)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The account vanished; drop the dangling key.
			_ = store.Remove(ctx, m.store, k)
			return user.User{}, ErrInvalidKey
		}
		return user.User{}, err
	}

	u.EmailConfirmed = true
	u.CalculateCompletion()
	if err := store.Set(ctx, m.store, u); err != nil {
		return user.User{}, err
	}
	if err := store.Remove(ctx, m.store, k); err != nil {
		return user.User{}, err
	}

	m.logger.InfoContext(ctx, "email confirmed", "user_id", u.ID)
	return u, nil
}
