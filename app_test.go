package basekit_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/basekit/basekit"
	"github.com/basekit/basekit/pkg/auth"
	"github.com/basekit/basekit/pkg/oauth"
	"github.com/basekit/basekit/pkg/store"
	"github.com/basekit/basekit/pkg/user"
)

func memoryConfig() basekit.Config {
	cfg := basekit.DefaultConfig()
	cfg.Store = store.Config{Driver: store.DriverMemory}
	return cfg
}

func TestNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := memoryConfig()
	cfg.OAuth.GitHub = &oauth.Config{ClientID: "id", ClientSecret: "secret"}

	app, err := basekit.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	// Everything is wired against the same store: a signup through the
	// session manager is visible to the OAuth resolver.
	u, _, err := app.Auth.Signup(ctx, "jo@example.com", "sup3r-secret")
	require.NoError(t, err)

	got, err := store.Get[user.User](ctx, app.Store, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	p, err := app.OAuth.Provider(oauth.GitHubProviderName)
	require.NoError(t, err)
	require.Equal(t, oauth.GitHubProviderName, p.Name())
}

func TestLoginWithOAuth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	app, err := basekit.New(ctx, memoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	profile := oauth.Profile{
		Provider: "github",
		ID:       "42",
		Handle:   "octo",
		Email:    "octo@example.com",
		Name:     "Octo Cat",
	}

	u, cookie, err := app.LoginWithOAuth(ctx, profile, auth.DurationMedium, auth.ClientInfo{Context: "web"})
	require.NoError(t, err)
	require.True(t, u.EmailConfirmed)
	require.NotNil(t, cookie)
	require.Equal(t, "basekit_session", cookie.Name)

	// The cookie value is the live token; it resolves back to the user.
	tokenID, err := uuid.Parse(cookie.Value)
	require.NoError(t, err)
	resolved, _, err := app.Auth.ResolveSession(ctx, tokenID)
	require.NoError(t, err)
	require.Equal(t, u.ID, resolved.ID)

	// A second callback reuses the account and the token.
	again, cookie2, err := app.LoginWithOAuth(ctx, profile, auth.DurationMedium, auth.ClientInfo{Context: "web"})
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)
	require.Equal(t, cookie.Value, cookie2.Value)
}

func TestNew_CookieDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := memoryConfig()
	cfg.Name = "myapp"

	app, err := basekit.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	token := auth.NewToken(uuid.New(), auth.ScopeComplete, auth.DurationShort)
	c := app.Auth.SessionCookie(token)
	require.Equal(t, "myapp_session", c.Name)
}

func TestNew_BadStoreConfig(t *testing.T) {
	t.Parallel()

	cfg := basekit.DefaultConfig()
	cfg.Store = store.Config{Driver: "bolt"}

	_, err := basekit.New(context.Background(), cfg)
	require.ErrorIs(t, err, store.ErrUnknownDriver)
}

func TestNew_BadProviderConfig(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.OAuth.Google = &oauth.Config{ClientID: "id-without-secret"}

	_, err := basekit.New(context.Background(), cfg)
	require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
}
