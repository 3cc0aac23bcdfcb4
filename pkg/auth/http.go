package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/basekit/basekit/pkg/user"
)

// UserFromRequest resolves the session user from an HTTP request.
// Credentials are tried in order: Authorization bearer token, then session
// cookie. Autologin, when configured, applies only after both are absent —
// a presented credential always wins, even an invalid one.
func (m *Manager) UserFromRequest(r *http.Request) (user.User, Token, error) {
	ctx := r.Context()

	if id, ok := bearerToken(r); ok {
		return m.ResolveSession(ctx, id)
	}

	if c, err := r.Cookie(m.cookieName); err == nil {
		id, err := uuid.Parse(c.Value)
		if err != nil {
			return user.User{}, Token{}, ErrAuthFailed
		}
		return m.ResolveSession(ctx, id)
	}

	if m.autologinEmail != "" {
		return m.autologin(ctx)
	}

	return user.User{}, Token{}, ErrNoToken
}

func bearerToken(r *http.Request) (uuid.UUID, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(strings.TrimSpace(h[len(prefix):]))
	if err != nil {
		// A malformed bearer value still counts as a presented credential.
		return uuid.Nil, true
	}
	return id, true
}

func (m *Manager) autologin(ctx context.Context) (user.User, Token, error) {
	u, err := user.FindByEmail(ctx, m.store, m.autologinEmail)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, Token{}, ErrAuthFailed
		}
		return user.User{}, Token{}, err
	}
	t, err := m.IssueOrReuseToken(ctx, u.ID, ScopeComplete, DurationShort, ClientInfo{Context: "autologin"})
	if err != nil {
		return user.User{}, Token{}, err
	}
	return u, t, nil
}

// SessionCookie builds the session cookie carrying the token id, expiring
// together with the token.
func (m *Manager) SessionCookie(t Token) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    t.ID.String(),
		Path:     "/",
		Domain:   m.cookieDomain,
		Expires:  t.ExpiresAt(),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds an expired cookie that removes the session
// cookie from the browser.
func (m *Manager) ClearSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
