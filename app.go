package basekit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/basekit/basekit/pkg/auth"
	"github.com/basekit/basekit/pkg/logger"
	"github.com/basekit/basekit/pkg/oauth"
	"github.com/basekit/basekit/pkg/store"
	"github.com/basekit/basekit/pkg/user"
)

// App wires the configured components together: logger, collection store,
// session manager and OAuth resolver. It owns the store connection and
// must be closed on shutdown.
type App struct {
	Config Config
	Logger *slog.Logger
	Store  *store.Store
	Auth   *auth.Manager
	OAuth  *oauth.Resolver
}

// New builds the application from configuration. The store is opened (and,
// for networked drivers, pinged) before New returns, so a misconfigured
// backend fails at startup rather than on first request.
func New(ctx context.Context, cfg Config) (*App, error) {
	cfg.applyDefaults()

	log := logger.New(cfg.Logging)

	s, err := store.Open(ctx, cfg.Store, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	authOpts := []auth.Option{
		auth.WithLogger(log),
		auth.WithCookie(cfg.Auth.CookieName, cfg.Domain, cfg.Auth.CookieSecure),
		auth.WithRegistrationOpen(cfg.Registration.Enabled),
	}
	if cfg.Dev.Autologin != "" {
		log.WarnContext(ctx, "autologin enabled", "email", cfg.Dev.Autologin)
		authOpts = append(authOpts, auth.WithAutologin(cfg.Dev.Autologin))
	}
	manager := auth.NewManager(s, authOpts...)

	providers, err := buildProviders(cfg.OAuth)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	resolver := oauth.NewResolver(s,
		oauth.WithLogger(log),
		oauth.WithRegistration(cfg.Registration),
		oauth.WithProviders(providers...),
	)

	return &App{
		Config: cfg,
		Logger: log,
		Store:  s,
		Auth:   manager,
		OAuth:  resolver,
	}, nil
}

// Close releases the store connection.
func (a *App) Close() error {
	return a.Store.Close()
}

// LoginWithOAuth completes a provider callback: the verified profile is
// resolved to a local account, a complete-scope session token is issued or
// reused, and the session cookie to set is returned alongside.
func (a *App) LoginWithOAuth(ctx context.Context, p oauth.Profile, duration auth.Duration, client auth.ClientInfo) (user.User, *http.Cookie, error) {
	u, err := a.OAuth.Resolve(ctx, p)
	if err != nil {
		return user.User{}, nil, err
	}
	t, err := a.Auth.IssueOrReuseToken(ctx, u.ID, auth.ScopeComplete, duration, client)
	if err != nil {
		return user.User{}, nil, err
	}
	return u, a.Auth.SessionCookie(t), nil
}

func buildProviders(cfg OAuthConfig) ([]oauth.Provider, error) {
	var providers []oauth.Provider

	add := func(name string, build func() (oauth.Provider, error), c *oauth.Config) error {
		if c == nil {
			return nil
		}
		p, err := build()
		if err != nil {
			return fmt.Errorf("configure %s provider: %w", name, err)
		}
		providers = append(providers, p)
		return nil
	}

	if err := add(oauth.GitHubProviderName, func() (oauth.Provider, error) {
		return oauth.NewGitHubProvider(*cfg.GitHub)
	}, cfg.GitHub); err != nil {
		return nil, err
	}
	if err := add(oauth.GoogleProviderName, func() (oauth.Provider, error) {
		return oauth.NewGoogleProvider(*cfg.Google)
	}, cfg.Google); err != nil {
		return nil, err
	}
	if err := add(oauth.DiscordProviderName, func() (oauth.Provider, error) {
		return oauth.NewDiscordProvider(*cfg.Discord)
	}, cfg.Discord); err != nil {
		return nil, err
	}
	if err := add(oauth.FacebookProviderName, func() (oauth.Provider, error) {
		return oauth.NewFacebookProvider(*cfg.Facebook)
	}, cfg.Facebook); err != nil {
		return nil, err
	}

	return providers, nil
}
