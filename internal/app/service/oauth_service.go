package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	ErrOAuthDisabled      = errors.New("oauth provider is not configured")
	ErrOAuthExchange      = errors.New("oauth code exchange failed")
	ErrOAuthEmailRequired = errors.New("oauth profile has no verified email")
)

// OAuthProfile is the subset of the provider's userinfo we keep.
type OAuthProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type OAuthService interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}

type googleOAuthService struct {
	oauthConfig *oauth2.Config
	userInfoURL string
}

// NewGoogleOAuthService returns a service that reports Enabled() == false when
// the client credentials are absent.
func NewGoogleOAuthService(cfg config.GoogleOAuthConfig) OAuthService {
	if !cfg.Enabled() {
		return &googleOAuthService{}
	}
	return newOAuthService(&oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}, googleUserInfoURL)
}

func newOAuthService(oauthConfig *oauth2.Config, userInfoURL string) *googleOAuthService {
	return &googleOAuthService{
		oauthConfig: oauthConfig,
		userInfoURL: userInfoURL,
	}
}

func (s *googleOAuthService) Enabled() bool {
	return s.oauthConfig != nil
}

func (s *googleOAuthService) AuthCodeURL(state string) string {
	if !s.Enabled() {
		return ""
	}
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token and fetches the profile.
func (s *googleOAuthService) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	if !s.Enabled() {
		return nil, ErrOAuthDisabled
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		logger.Warn("OAuth code exchange failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := s.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrOAuthExchange, resp.StatusCode)
	}

	var profile OAuthProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if profile.Email == "" || !profile.EmailVerified || profile.Subject == "" {
		return nil, ErrOAuthEmailRequired
	}
	return &profile, nil
}
