package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg"
	"Task_Mania/internal/repository/redis"
)

const (
	ProviderGoogle    = "google"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthService runs the Google authorization code flow.
type OAuthService struct {
	cfg         *oauth2.Config
	states      StateStore
	users       *UserService
	userInfoURL string
}

func NewOAuthService(cfg OAuthConfig, states StateStore, users *UserService) *OAuthService {
	return &OAuthService{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		states:      states,
		users:       users,
		userInfoURL: googleUserInfoURL,
	}
}

func (s *OAuthService) Enabled() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != ""
}

// AuthURL returns the consent page URL bound to a fresh single-use state.
func (s *OAuthService) AuthURL(ctx context.Context) (string, error) {
	state, err := pkg.RandState(24)
	if err != nil {
		return "", err
	}
	ok, err := s.states.Save(ctx, state, ProviderGoogle)
	if err != nil {
		return "", model.NewStoreError("save oauth state", err)
	}
	if !ok {
		return "", fmt.Errorf("oauth state collision: %w", model.ErrConflict)
	}
	return s.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

// Callback validates state, exchanges code and logs the Google user in.
func (s *OAuthService) Callback(ctx context.Context, state, code string) (*pkg.Pair, *model.User, error) {
	if state == "" || code == "" {
		return nil, nil, fmt.Errorf("missing state or code: %w", model.ErrInvalidInput)
	}
	provider, err := s.states.Consume(ctx, state)
	if errors.Is(err, redis.ErrStateNotFound) {
		return nil, nil, fmt.Errorf("unknown oauth state: %w", model.ErrInvalidInput)
	}
	if err != nil {
		return nil, nil, model.NewStoreError("consume oauth state", err)
	}
	if provider != ProviderGoogle {
		return nil, nil, fmt.Errorf("unexpected provider %q: %w", provider, model.ErrInvalidInput)
	}

	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange code: %w", model.ErrUnauthorized)
	}
	info, err := s.fetchUserInfo(ctx, s.cfg.Client(ctx, tok))
	if err != nil {
		return nil, nil, err
	}
	if !info.EmailVerified {
		return nil, nil, fmt.Errorf("google email not verified: %w", model.ErrUnauthorized)
	}
	return s.users.LoginExternal(ctx, ExternalProfile{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
		Source:  model.SourceGoogle,
	})
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, client *http.Client) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}
	var info googleUserInfo
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}
