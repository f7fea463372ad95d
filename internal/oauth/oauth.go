// Package oauth wraps the Google and GitHub authorization-code flows used
// for social sign-in.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atelier/internal/config"
	"atelier/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Identity is the provider-agnostic result of a completed code exchange.
type Identity struct {
	Provider string
	Email    string
	Name     string
	Avatar   string
}

// Provider performs the authorization-code flow for one upstream.
type Provider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

type provider struct {
	name        string
	cfg         *oauth2.Config
	userInfoURL string
	mapIdentity func(body []byte) (*Identity, error)
}

// NewProviders builds the configured providers. A provider with no client
// ID is omitted, so deployments can enable Google and GitHub independently.
func NewProviders(cfg *config.Config) map[string]Provider {
	providers := make(map[string]Provider)

	if cfg.GoogleClientID != "" {
		providers[models.ProviderGoogle] = &provider{
			name: models.ProviderGoogle,
			cfg: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.OAuthRedirectBase + "/oauth/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
			mapIdentity: mapGoogleIdentity,
		}
	}

	if cfg.GitHubClientID != "" {
		providers[models.ProviderGitHub] = &provider{
			name: models.ProviderGitHub,
			cfg: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  cfg.OAuthRedirectBase + "/oauth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     github.Endpoint,
			},
			userInfoURL: "https://api.github.com/user",
			mapIdentity: mapGitHubIdentity,
		}
	}

	return providers
}

func (p *provider) Name() string {
	return p.name
}

func (p *provider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s code exchange failed: %w", p.name, err)
	}

	body, err := p.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return p.mapIdentity(body)
}

func (p *provider) fetchUserInfo(ctx context.Context, token *oauth2.Token) ([]byte, error) {
	client := p.cfg.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%s userinfo request failed: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s userinfo returned status %d", p.name, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func mapGoogleIdentity(body []byte) (*Identity, error) {
	var info struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google identity has no email")
	}
	return &Identity{
		Provider: models.ProviderGoogle,
		Email:    info.Email,
		Name:     info.Name,
		Avatar:   info.Picture,
	}, nil
}

func mapGitHubIdentity(body []byte) (*Identity, error) {
	var info struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
		ID        int64  `json:"id"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}

	email := info.Email
	// GitHub users can hide their email; fall back to the noreply form.
	if email == "" {
		email = strconv.FormatInt(info.ID, 10) + "+" + info.Login + "@users.noreply.github.com"
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &Identity{
		Provider: models.ProviderGitHub,
		Email:    strings.ToLower(email),
		Name:     name,
		Avatar:   info.AvatarURL,
	}, nil
}
