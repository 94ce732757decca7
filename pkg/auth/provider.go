package auth

import (
	"context"
	"fmt"

	"github.com/aetas/aetas/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// IdentityProvider runs the authorization code flow of an external login.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

type GoogleProvider struct {
	oauthConfig *oauth2.Config
	options     []option.ClientOption
}

func NewGoogleProvider(cfg config.Application, options ...option.ClientOption) *GoogleProvider {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/auth/google/callback",
		Scopes:       []string{oauth2api.OpenIDScope, oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
	}
	return &GoogleProvider{oauthConfig: oauthConfig, options: options}
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("unable to exchange code for token: %w", err)
	}

	options := append([]option.ClientOption{option.WithHTTPClient(g.oauthConfig.Client(ctx, token))}, g.options...)
	service, err := oauth2api.NewService(ctx, options...)
	if err != nil {
		return Identity{}, fmt.Errorf("unable to create userinfo client: %w", err)
	}
	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("unable to fetch userinfo: %w", err)
	}

	identity := Identity{Subject: info.Id, Email: info.Email, DisplayName: info.Name}
	if err := identity.Validate(); err != nil {
		return Identity{}, err
	}
	return identity, nil
}
