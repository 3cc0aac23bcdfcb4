package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// FacebookProviderName is the identifier for the Facebook OAuth provider.
	FacebookProviderName = "facebook"
	facebookUserURL      = "https://graph.facebook.com/me?fields=id,name,email,picture.width(256)"
)

// FacebookDefaultScopes returns the default scopes for Facebook OAuth.
func FacebookDefaultScopes() []string {
	return []string{"email", "public_profile"}
}

// FacebookProvider implements Provider for Facebook OAuth.
type FacebookProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewFacebookProvider creates a Facebook OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewFacebookProvider(cfg Config, opts ...Option) (*FacebookProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = FacebookDefaultScopes()
	}

	return &FacebookProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoints.Facebook,
		},
		httpClient: o.httpClient,
	}, nil
}

// Name returns the provider identifier.
func (p *FacebookProvider) Name() string {
	return FacebookProviderName
}

// AuthCodeURL generates the authorization URL.
func (p *FacebookProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (p *FacebookProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	return exchangeWith(ctx, p.config, p.httpClient, code, redirectURI)
}

// FetchProfile retrieves user information from Facebook. Facebook only
// returns an email when the account has a confirmed one, so an empty email
// maps to ErrEmailNotVerified.
func (p *FacebookProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	ctx = contextWithHTTPClient(ctx, p.httpClient)
	client := p.config.Client(ctx, token)

	resp, err := client.Get(facebookUserURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch user: %w", err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from facebook user endpoint"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("user request failed: status=%d", resp.StatusCode))
	}

	var fu facebookUser
	if err := json.NewDecoder(resp.Body).Decode(&fu); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode user: %w", err))
	}

	if fu.Email == "" {
		return nil, ErrEmailNotVerified
	}

	return &Profile{
		Provider: FacebookProviderName,
		ID:       fu.ID,
		Email:    fu.Email,
		Name:     fu.Name,
		Picture:  fu.Picture.Data.URL,
	}, nil
}

// facebookUser represents the response from the Graph API me endpoint.
type facebookUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}
