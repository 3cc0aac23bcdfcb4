package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/basekit/basekit/pkg/auth"
	"github.com/basekit/basekit/pkg/store"
	"github.com/basekit/basekit/pkg/user"
)

func TestUserFromRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestManager(t, auth.WithCookie("session", "example.com", true))

	created := signup(t, m, "jo@example.com", "sup3r-secret")
	_, token, err := m.LoginWithPassword(ctx, "jo@example.com", "sup3r-secret", auth.DurationMedium, webClient)
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token.ID.String())

		u, got, err := m.UserFromRequest(r)
		require.NoError(t, err)
		require.Equal(t, created.ID, u.ID)
		require.Equal(t, token.ID, got.ID)
	})

	t.Run("session cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: token.ID.String()})

		u, _, err := m.UserFromRequest(r)
		require.NoError(t, err)
		require.Equal(t, created.ID, u.ID)
	})

	t.Run("bearer wins over cookie", func(t *testing.T) {
		other := signup(t, m, "other@example.com", "sup3r-secret")
		_, otherToken, err := m.LoginWithPassword(ctx, "other@example.com", "sup3r-secret", auth.DurationShort, webClient)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+otherToken.ID.String())
		r.AddCookie(&http.Cookie{Name: "session", Value: token.ID.String()})

		u, _, err := m.UserFromRequest(r)
		require.NoError(t, err)
		require.Equal(t, other.ID, u.ID)
	})

	t.Run("malformed bearer fails instead of falling back", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer not-a-token")
		r.AddCookie(&http.Cookie{Name: "session", Value: token.ID.String()})

		_, _, err := m.UserFromRequest(r)
		require.ErrorIs(t, err, auth.ErrAuthFailed)
	})

	t.Run("malformed cookie value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "not-a-uuid"})

		_, _, err := m.UserFromRequest(r)
		require.ErrorIs(t, err, auth.ErrAuthFailed)
	})

	t.Run("no credential", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, _, err := m.UserFromRequest(r)
		require.ErrorIs(t, err, auth.ErrNoToken)
	})
}

func TestUserFromRequest_Autologin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, s := newTestManager(t, auth.WithAutologin("dev@example.com"))

	dev := user.User{Email: "dev@example.com"}
	dev.ID = uuid.New()
	require.NoError(t, store.Set(ctx, s, dev))

	t.Run("applies when no credential presented", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		u, token, err := m.UserFromRequest(r)
		require.NoError(t, err)
		require.Equal(t, dev.ID, u.ID)
		require.Equal(t, "autologin", token.Context)
	})

	t.Run("presented credential still wins", func(t *testing.T) {
		other := signup(t, m, "real@example.com", "sup3r-secret")
		_, token, err := m.LoginWithPassword(ctx, "real@example.com", "sup3r-secret", auth.DurationShort, webClient)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token.ID.String())

		u, _, err := m.UserFromRequest(r)
		require.NoError(t, err)
		require.Equal(t, other.ID, u.ID)
	})
}

func TestSessionCookie(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, auth.WithCookie("session", "example.com", true))

	token := auth.NewToken(uuid.New(), auth.ScopeComplete, auth.DurationMedium)

	c := m.SessionCookie(token)
	require.Equal(t, "session", c.Name)
	require.Equal(t, token.ID.String(), c.Value)
	require.Equal(t, "example.com", c.Domain)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.WithinDuration(t, token.ExpiresAt(), c.Expires, 0)

	cleared := m.ClearSessionCookie()
	require.Equal(t, "session", cleared.Name)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}
