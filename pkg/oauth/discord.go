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
	// DiscordProviderName is the identifier for the Discord OAuth provider.
	DiscordProviderName = "discord"
	discordUserURL      = "https://discord.com/api/users/@me"
	discordCDNURL       = "https://cdn.discordapp.com"
)

// DiscordDefaultScopes returns the default scopes for Discord OAuth.
func DiscordDefaultScopes() []string {
	return []string{"identify", "email"}
}

// DiscordProvider implements Provider for Discord OAuth.
type DiscordProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewDiscordProvider creates a Discord OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func NewDiscordProvider(cfg Config, opts ...Option) (*DiscordProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DiscordDefaultScopes()
	}

	return &DiscordProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoints.Discord,
		},
		httpClient: o.httpClient,
	}, nil
}

// Name returns the provider identifier.
func (p *DiscordProvider) Name() string {
	return DiscordProviderName
}

// AuthCodeURL generates the authorization URL.
func (p *DiscordProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (p *DiscordProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	return exchangeWith(ctx, p.config, p.httpClient, code, redirectURI)
}

// FetchProfile retrieves user information from Discord.
// Returns ErrEmailNotVerified if the account's email is not verified.
func (p *DiscordProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	ctx = contextWithHTTPClient(ctx, p.httpClient)
	client := p.config.Client(ctx, token)

	resp, err := client.Get(discordUserURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch user: %w", err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from discord user endpoint"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("user request failed: status=%d", resp.StatusCode))
	}

	var du discordUser
	if err := json.NewDecoder(resp.Body).Decode(&du); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode user: %w", err))
	}

	if !du.Verified || du.Email == "" {
		return nil, ErrEmailNotVerified
	}

	name := du.GlobalName
	if name == "" {
		name = du.Username
	}

	picture := ""
	if du.Avatar != "" {
		picture = fmt.Sprintf("%s/avatars/%s/%s.png", discordCDNURL, du.ID, du.Avatar)
	}

	return &Profile{
		Provider: DiscordProviderName,
		ID:       du.ID,
		Handle:   du.Username,
		Email:    du.Email,
		Name:     name,
		Picture:  picture,
	}, nil
}

// discordUser represents the response from Discord's users/@me endpoint.
type discordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Email      string `json:"email"`
	Verified   bool   `json:"verified"`
	Avatar     string `json:"avatar"`
}
