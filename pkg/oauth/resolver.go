package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/basekit/basekit/pkg/store"
	"github.com/basekit/basekit/pkg/user"
)

// Registration controls whether the resolver may create accounts.
type Registration struct {
	// Enabled opens self-service registration in general.
	Enabled bool `yaml:"enabled"`
	// OAuth additionally allows registration through external providers.
	OAuth bool `yaml:"oauth"`
}

// Resolver turns a verified provider profile into a local user account and
// dispatches to configured providers by name.
type Resolver struct {
	store        *store.Store
	logger       *slog.Logger
	registration Registration
	providers    map[string]Provider
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger for resolver events.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistration sets the registration policy. The zero policy rejects
// every unknown profile.
func WithRegistration(reg Registration) ResolverOption {
	return func(r *Resolver) { r.registration = reg }
}

// WithProviders registers the configured providers.
func WithProviders(providers ...Provider) ResolverOption {
	return func(r *Resolver) {
		for _, p := range providers {
			r.providers[p.Name()] = p
		}
	}
}

// NewResolver creates a Resolver over the store.
func NewResolver(s *store.Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:     s,
		logger:    slog.New(slog.DiscardHandler),
		providers: make(map[string]Provider),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider returns the configured provider with the given name.
func (r *Resolver) Provider(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Resolve implements login-or-register for a verified provider profile,
// matching on email:
//
//   - A confirmed account gets the identity linked and, when the provider
//     supplies a picture, a refreshed avatar.
//   - An unconfirmed account is overwritten in place under the same id: the
//     provider verified ownership of the address, the local record never
//     did. Any password set on the unconfirmed record is discarded.
//   - An unknown email registers a new confirmed, passwordless account,
//     provided registration is open for OAuth; otherwise
//     ErrRegistrationClosed.
func (r *Resolver) Resolve(ctx context.Context, p Profile) (user.User, error) {
	u, err := user.FindByEmail(ctx, r.store, p.Email)
	switch {
	case err == nil && u.EmailConfirmed:
		return r.returning(ctx, u, p)
	case err == nil:
		return r.overwrite(ctx, u, p)
	case errors.Is(err, user.ErrNotFound):
		return r.register(ctx, p)
	default:
		return user.User{}, err
	}
}

func (r *Resolver) returning(ctx context.Context, u user.User, p Profile) (user.User, error) {
	u.LinkIdentity(user.Identity{Provider: p.Provider, Handle: p.Handle, Email: p.Email})
	if p.Picture != "" {
		// Avatar refresh is best effort; a dead picture URL must not block
		// login.
		if err := u.SetAvatarFromURL(ctx, r.store, p.Picture); err != nil {
			r.logger.WarnContext(ctx, "avatar refresh failed", "user_id", u.ID, "error", err)
		}
	}
	u.CalculateCompletion()
	if err := store.Set(ctx, r.store, u); err != nil {
		return user.User{}, err
	}

	r.logger.InfoContext(ctx, "oauth login", "user_id", u.ID, "provider", p.Provider)
	return u, nil
}

func (r *Resolver) overwrite(ctx context.Context, stale user.User, p Profile) (user.User, error) {
	u, err := user.New(ctx, r.store)
	if err != nil {
		return user.User{}, err
	}
	u.ID = stale.ID
	u.RegisteredAt = stale.RegisteredAt
	r.fillFromProfile(ctx, &u, p)

	if err := store.Set(ctx, r.store, u); err != nil {
		return user.User{}, err
	}

	r.logger.InfoContext(ctx, "unconfirmed account replaced by oauth identity",
		"user_id", u.ID, "provider", p.Provider)
	return u, nil
}

func (r *Resolver) register(ctx context.Context, p Profile) (user.User, error) {
	if !r.registration.Enabled || !r.registration.OAuth {
		return user.User{}, ErrRegistrationClosed
	}

	u, err := user.New(ctx, r.store)
	if err != nil {
		return user.User{}, err
	}
	r.fillFromProfile(ctx, &u, p)

	if err := store.Set(ctx, r.store, u); err != nil {
		return user.User{}, err
	}

	r.logger.InfoContext(ctx, "oauth registration", "user_id", u.ID, "provider", p.Provider)
	return u, nil
}

func (r *Resolver) fillFromProfile(ctx context.Context, u *user.User, p Profile) {
	u.Email = p.Email
	u.EmailConfirmed = true
	u.DisplayName = p.Name
	u.Handle = p.Handle
	u.LinkIdentity(user.Identity{Provider: p.Provider, Handle: p.Handle, Email: p.Email})
	if p.Picture != "" {
		if err := u.SetAvatarFromURL(ctx, r.store, p.Picture); err != nil {
			// The placeholder avatar from user.New stays in place.
			r.logger.WarnContext(ctx, "avatar download failed", "user_id", u.ID, "error", err)
		}
	}
	u.CalculateCompletion()
}
