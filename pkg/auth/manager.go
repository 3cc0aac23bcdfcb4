package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/basekit/basekit/pkg/store"
	"github.com/basekit/basekit/pkg/user"
)

// Manager issues and resolves sessions against the collection store.
type Manager struct {
	store  *store.Store
	logger *slog.Logger

	cookieName   string
	cookieDomain string
	cookieSecure bool

	registrationOpen bool

	// autologinEmail, when set, authenticates every unauthenticated request
	// as this user. Development convenience only.
	autologinEmail string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for auth events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithCookie overrides the session cookie name and domain.
func WithCookie(name, domain string, secure bool) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
		m.cookieDomain = domain
		m.cookieSecure = secure
	}
}

// WithRegistrationOpen enables self-service signup.
func WithRegistrationOpen(open bool) Option {
	return func(m *Manager) { m.registrationOpen = open }
}

// WithAutologin authenticates every unauthenticated request as the user with
// the given email. Never enable outside local development.
func WithAutologin(email string) Option {
	return func(m *Manager) { m.autologinEmail = email }
}

// NewManager creates a Manager over the store.
func NewManager(s *store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:      s,
		logger:     slog.New(slog.DiscardHandler),
		cookieName: "basekit_session",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ClientInfo is the request metadata recorded on an issued token.
type ClientInfo struct {
	Browser string
	IP      string
	Context string
}

// IssueOrReuseToken returns a live token for the user, creating one only if
// the user has no non-expired token at all. Any live token is reused as-is,
// whatever its scope or client context; the requested scope, lifetime and
// client details only shape a newly minted token. Expired tokens encountered
// during the scan are deleted.
//
// Two sessions racing here can both miss and both create a token; the user
// simply ends up with two live tokens, which is harmless and allowed.
func (m *Manager) IssueOrReuseToken(ctx context.Context, userID uuid.UUID, scope Scope, duration Duration, client ClientInfo) (Token, error) {
	tokens, err := store.Collection[Token](ctx, m.store)
	if err != nil {
		return Token{}, err
	}

	for _, t := range tokens {
		if t.Expired() {
			if err := store.Remove(ctx, m.store, t); err != nil {
				return Token{}, err
			}
			continue
		}
		if t.User == userID {
			return t, nil
		}
	}

	t := NewToken(userID, scope, duration)
	t.Browser = client.Browser
	t.IP = client.IP
	t.Context = client.Context
	if err := store.Set(ctx, m.store, t); err != nil {
		return Token{}, err
	}

	m.logger.InfoContext(ctx, "token issued",
		"user_id", userID, "scope", string(scope), "duration", string(duration))
	return t, nil
}

// ResolveSession resolves a presented token id to its user. Expired tokens
// and tokens pointing at a deleted user are removed on the spot; both cases
// surface as ErrAuthFailed. A disabled account resolves to
// ErrAccountDisabled.
func (m *Manager) ResolveSession(ctx context.Context, tokenID uuid.UUID) (user.User, Token, error) {
	t, err := store.Get[Token](ctx, m.store, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, Token{}, ErrAuthFailed
		}
		return user.User{}, Token{}, err
	}

	if t.Expired() {
		_ = store.Remove(ctx, m.store, t)
		return user.User{}, Token{}, ErrAuthFailed
	}

	u, err := store.Get[user.User](ctx, m.store, t.User)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dangling token: the account is gone.
			_ = store.Remove(ctx, m.store, t)
			return user.User{}, Token{}, ErrAuthFailed
		}
		return user.User{}, Token{}, err
	}

	if u.IsDisabled {
		return user.User{}, Token{}, ErrAccountDisabled
	}
	return u, t, nil
}

// LoginWithPassword authenticates by email (or, failing that, handle) and
// password, and returns a complete-scope session token. Unknown account and
// wrong password both return ErrInvalidCredentials.
func (m *Manager) LoginWithPassword(ctx context.Context, login, password string, duration Duration, client ClientInfo) (user.User, Token, error) {
	u, err := user.FindByEmail(ctx, m.store, login)
	if errors.Is(err, user.ErrNotFound) {
		u, err = user.FindByHandle(ctx, m.store, login)
	}
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, Token{}, ErrInvalidCredentials
		}
		return user.User{}, Token{}, err
	}

	if u.PasswordHash == nil {
		return user.User{}, Token{}, ErrPasswordNotSet
	}
	ok, err := VerifyPassword(*u.PasswordHash, password)
	if err != nil {
		return user.User{}, Token{}, err
	}
	if !ok {
		return user.User{}, Token{}, ErrInvalidCredentials
	}
	if u.IsDisabled {
		return user.User{}, Token{}, ErrAccountDisabled
	}

	t, err := m.IssueOrReuseToken(ctx, u.ID, ScopeComplete, duration, client)
	if err != nil {
		return user.User{}, Token{}, err
	}

	m.logger.InfoContext(ctx, "password login", "user_id", u.ID)
	return u, t, nil
}

// Signup registers a new account with a password and returns the created
// user together with a single-use email confirmation key.
//
// The duplicate-email check is a scan followed by a separate write, so two
// concurrent signups with the same email can both pass the check and create
// two accounts. Lookups then resolve to the first stored record.
func (m *Manager) Signup(ctx context.Context, email, password string) (user.User, ConfirmationKey, error) {
	if !m.registrationOpen {
		return user.User{}, ConfirmationKey{}, ErrRegistrationClosed
	}
	if err := validateEmail(email); err != nil {
		return user.User{}, ConfirmationKey{}, err
	}
	if len(password) < 8 || len(password) > 24 {
		return user.User{}, ConfirmationKey{}, ErrInvalidPassword
	}

	if _, err := user.FindByEmail(ctx, m.store, email); err == nil {
		return user.User{}, ConfirmationKey{}, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, ConfirmationKey{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return user.User{}, ConfirmationKey{}, err
	}

	u, err := user.New(ctx, m.store)
	if err != nil {
		return user.User{}, ConfirmationKey{}, err
	}
	u.Email = email
	u.PasswordHash = &hash
	u.CalculateCompletion()
	if err := store.Set(ctx, m.store, u); err != nil {
		return user.User{}, ConfirmationKey{}, err
	}

	key := NewConfirmationKey(u.ID)
	if err := store.Set(ctx, m.store, key); err != nil {
		return user.User{}, ConfirmationKey{}, err
	}

	m.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, key, nil
}

// Logout deletes the token, ending that session only. Other live tokens of
// the same user are untouched.
func (m *Manager) Logout(ctx context.Context, tokenID uuid.UUID) error {
	return store.RemoveAt(ctx, m.store, Token{}.CollectionName(), tokenID)
}

// SessionsFor lists the user's live tokens, deleting expired ones along the
// way.
func (m *Manager) SessionsFor(ctx context.Context, userID uuid.UUID) ([]Token, error) {
	tokens, err := store.Collection[Token](ctx, m.store)
	if err != nil {
		return nil, err
	}
	var out []Token
	for _, t := range tokens {
		if t.Expired() {
			_ = store.Remove(ctx, m.store, t)
			continue
		}
		if t.User == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return ErrInvalidEmail
	}
	return nil
}
