package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/basekit/basekit/pkg/store"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user: not found")

// Identity is a linked external-provider identity.
type Identity struct {
	Provider string `json:"provider"`
	Handle   string `json:"handle"`
	Email    string `json:"email"`
}

// User is the account record.
type User struct {
	ID uuid.UUID `json:"id"`

	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`

	// FullName is used for things like invoices; DisplayName is the
	// user-chosen name shown on the platform.
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`

	Company string `json:"company"`
	Website string `json:"website"`
	Phone   string `json:"phone"`
	Country string `json:"country"`

	// Avatar references an Image record by id.
	Avatar uuid.UUID `json:"avatar"`

	RegisteredAt time.Time `json:"registered_at"`

	IsAdmin    bool `json:"is_admin"`
	IsDisabled bool `json:"is_disabled"`
	IsVerified bool `json:"is_verified"`

	// PasswordHash is absent for accounts created through OAuth, unless the
	// user later sets a password.
	PasswordHash *string `json:"password_hash"`

	// Identities lists linked external-provider accounts.
	Identities []Identity `json:"identities"`

	// Completion is the profile completion score, 0 to 100.
	Completion int `json:"completion"`
}

// CollectionName implements store.Record.
func (User) CollectionName() string { return "users" }

// RecordID implements store.Record.
func (u User) RecordID() uuid.UUID { return u.ID }

// Default implements store.Defaulter for store.GetOrCreate.
func (User) Default(id uuid.UUID) User {
	u := newUser()
	u.ID = id
	return u
}

func newUser() User {
	return User{
		ID:           uuid.New(),
		RegisteredAt: time.Now().UTC(),
	}
}

// New creates a user with a freshly generated placeholder avatar persisted
// to the store.
func New(ctx context.Context, s *store.Store) (User, error) {
	img := NewImage(placeholderAvatarPNG())
	if err := store.Set(ctx, s, img); err != nil {
		return User{}, err
	}

	u := newUser()
	u.Avatar = img.ID
	return u, nil
}

// SetAvatarFromURL downloads an image from url, stores it as an Image
// record and points the user's avatar at it. Used when an OAuth provider
// supplies a profile picture.
func (u *User) SetAvatarFromURL(ctx context.Context, s *store.Store, url string) error {
	data, err := fetchAvatar(ctx, url)
	if err != nil {
		return err
	}

	img := NewImage(data)
	if err := store.Set(ctx, s, img); err != nil {
		return err
	}
	u.Avatar = img.ID
	return nil
}

// LinkIdentity records an external-provider identity on the user, replacing
// any previous entry for the same provider.
func (u *User) LinkIdentity(id Identity) {
	for i, existing := range u.Identities {
		if existing.Provider == id.Provider {
			u.Identities[i] = id
			return
		}
	}
	u.Identities = append(u.Identities, id)
}

// CalculateCompletion recomputes the profile completion score.
func (u *User) CalculateCompletion() {
	if u.IsVerified {
		u.Completion = 100
		return
	}
	if u.Email == "" {
		u.Completion = 0
		return
	}

	pc := 20
	if u.EmailConfirmed {
		pc += 20
	}
	if u.DisplayName != "" {
		pc += 10
	}
	if u.FullName != "" {
		pc += 10
	}
	if u.PasswordHash != nil {
		pc += 10
	}
	if u.Country != "" {
		pc += 10
	}
	u.Completion = pc
}

// FindByEmail scans the user collection for the first user with the given
// email. Duplicate emails are possible under concurrent signup; first match
// wins.
func FindByEmail(ctx context.Context, s *store.Store, email string) (User, error) {
	users, err := store.Collection[User](ctx, s)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// FindByHandle scans the user collection for the first user with the given
// handle.
func FindByHandle(ctx context.Context, s *store.Store, handle string) (User, error) {
	users, err := store.Collection[User](ctx, s)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if u.Handle == handle {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}
