package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// Profile is provider-agnostic identity information retrieved from a
// provider's userinfo endpoint. Email is always verified by the provider;
// adapters reject unverified emails before building a Profile.
type Profile struct {
	Provider string // provider identifier, e.g. "github"
	ID       string // provider's unique user identifier
	Handle   string // provider-side username, if the provider has one
	Email    string
	Name     string
	Picture  string // avatar URL, empty if none
}

// Provider abstracts provider-specific OAuth operations. Each provider
// (GitHub, Google, Discord, Facebook) implements this interface and handles
// all provider-specific details internally, including email verification
// checks.
type Provider interface {
	// Name returns the provider identifier (e.g., "google", "github").
	Name() string

	// AuthCodeURL generates the authorization URL for the OAuth flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchProfile retrieves user information using the access token.
	// Implementations must verify the user's email and return
	// ErrEmailNotVerified if the email is not verified.
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Config holds the client credentials for one provider. Empty Scopes fall
// back to the provider's defaults.
type Config struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

func (c Config) validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	return nil
}

// Option configures an OAuth provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient sets a custom HTTP client for OAuth requests. Useful for
// testing with httptest servers or injecting custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func contextWithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, client)
	}
	return ctx
}

// exchangeWith runs the code exchange, overriding the redirect URI when the
// caller supplies one (multi-domain installs use per-request redirects).
func exchangeWith(ctx context.Context, cfg *oauth2.Config, client *http.Client, code, redirectURI string) (*oauth2.Token, error) {
	if redirectURI != "" {
		override := *cfg
		override.RedirectURL = redirectURI
		cfg = &override
	}
	return cfg.Exchange(contextWithHTTPClient(ctx, client), code)
}
