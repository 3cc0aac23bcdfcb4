package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/basekit/basekit/pkg/oauth"
)

var _ oauth.Provider = (*oauth.GitHubProvider)(nil)

// githubRewriteTransport intercepts requests to GitHub API endpoints and
// routes them to a local handler instead.
type githubRewriteTransport struct {
	base    http.RoundTripper
	handler http.Handler
}

func (t *githubRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Host, "github.com") {
		recorder := httptest.NewRecorder()
		t.handler.ServeHTTP(recorder, req)
		return recorder.Result(), nil
	}
	return t.base.RoundTrip(req)
}

func githubProvider(t *testing.T, handler http.Handler) *oauth.GitHubProvider {
	t.Helper()
	p, err := oauth.NewGitHubProvider(
		oauth.Config{ClientID: "test-id", ClientSecret: "test-secret"},
		oauth.WithHTTPClient(&http.Client{
			Transport: &githubRewriteTransport{base: http.DefaultTransport, handler: handler},
		}),
	)
	require.NoError(t, err)
	return p
}

func TestNewGitHubProvider(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.Config{ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)
		require.Equal(t, oauth.GitHubProviderName, p.Name())
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.NewGitHubProvider(oauth.Config{ClientSecret: "secret"})
		require.ErrorIs(t, err, oauth.ErrMissingClientID)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.NewGitHubProvider(oauth.Config{ClientID: "id"})
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
	})

	t.Run("default scopes applied", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGitHubProvider(oauth.Config{ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)

		u := p.AuthCodeURL("state")
		require.Contains(t, u, "read%3Auser")
		require.Contains(t, u, "user%3Aemail")
		require.Contains(t, u, "state=state")
	})
}

func TestGitHubProvider_Exchange(t *testing.T) {
	t.Parallel()

	p := githubProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "gh-test-token",
			"token_type":   "Bearer",
		})
	}))

	token, err := p.Exchange(context.Background(), "test-code", "")
	require.NoError(t, err)
	require.Equal(t, "gh-test-token", token.AccessToken)
}

func TestGitHubProvider_FetchProfile(t *testing.T) {
	t.Parallel()

	userHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         42,
			"login":      "octo",
			"name":       "Octo Cat",
			"avatar_url": "https://example.com/octo.png",
		})
	}
	token := &oauth2.Token{AccessToken: "test-token"}

	t.Run("primary verified email", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/user", userHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"email": "secondary@example.com", "primary": false, "verified": true},
				{"email": "primary@example.com", "primary": true, "verified": true},
			})
		})

		profile, err := githubProvider(t, mux).FetchProfile(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, oauth.GitHubProviderName, profile.Provider)
		require.Equal(t, "42", profile.ID)
		require.Equal(t, "octo", profile.Handle)
		require.Equal(t, "primary@example.com", profile.Email)
		require.Equal(t, "Octo Cat", profile.Name)
		require.Equal(t, "https://example.com/octo.png", profile.Picture)
	})

	t.Run("falls back to any verified email", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/user", userHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"email": "unverified@example.com", "primary": true, "verified": false},
				{"email": "verified@example.com", "primary": false, "verified": true},
			})
		})

		profile, err := githubProvider(t, mux).FetchProfile(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, "verified@example.com", profile.Email)
	})

	t.Run("no verified email", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/user", userHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"email": "nope@example.com", "primary": true, "verified": false},
			})
		})

		_, err := githubProvider(t, mux).FetchProfile(context.Background(), token)
		require.ErrorIs(t, err, oauth.ErrEmailNotVerified)
	})

	t.Run("user endpoint error", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := githubProvider(t, mux).FetchProfile(context.Background(), token)
		require.ErrorIs(t, err, oauth.ErrRequestFailed)
	})

	t.Run("bad JSON from user endpoint", func(t *testing.T) {
		t.Parallel()
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("not-json"))
		})

		_, err := githubProvider(t, mux).FetchProfile(context.Background(), token)
		require.ErrorIs(t, err, oauth.ErrDecodeFailed)
	})
}
