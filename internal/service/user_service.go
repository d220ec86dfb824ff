package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg"
	"Task_Mania/internal/repository/redis"
)

// ErrBadCredentials covers unknown users and wrong passwords alike.
var ErrBadCredentials = errors.New("invalid username or password")

const minPasswordLen = 6

type UserService struct {
	repo   UserRepository
	tokens TokenStore
	emails *EmailService
}

func NewUserService(repo UserRepository, tokens TokenStore, emails *EmailService) *UserService {
	return &UserService{repo: repo, tokens: tokens, emails: emails}
}

func checkPassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password shorter than %d characters: %w", minPasswordLen, model.ErrInvalidInput)
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, username, password, email, code string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email required: %w", model.ErrInvalidInput)
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	if err := s.emails.VerifyCode(ctx, redis.ScopeRegister, email, code); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:           username,
		Password:           string(hash),
		Email:              email,
		Name:               username,
		RegistrationSource: model.SourceLocal,
	}
	if err = s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login issues a token pair and makes its access token the only valid
// session of the user.
func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, *model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil, ErrBadCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, ErrBadCredentials
	}
	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *UserService) startSession(ctx context.Context, user *model.User) (*pkg.Pair, error) {
	pair, err := pkg.GeneratePair(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err = s.tokens.SaveRefreshToken(ctx, user.ID, pair.RefreshToken, pkg.RefreshTTL); err != nil {
		return nil, err
	}
	if err = s.tokens.AddUserToken(ctx, user.ID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.tokens.DeleteUserToken(ctx, userID)
}

// Refresh rotates the pair. Only the refresh token issued last for the user
// is accepted, so logout and password changes revoke it.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	pair, claims, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, ErrBadCredentials
	}
	err = s.tokens.RotateRefreshToken(ctx, claims.UserID, refreshToken, pair.RefreshToken, pkg.RefreshTTL)
	if errors.Is(err, redis.ErrTokenNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err = s.tokens.AddUserToken(ctx, claims.UserID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	if err := s.emails.VerifyCode(ctx, redis.ScopeReset, email, code); err != nil {
		return err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}

// ChangePassword ends the current session on success.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.Logout(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ExternalProfile is what an identity provider tells us about a user.
type ExternalProfile struct {
	Email   string
	Name    string
	Picture string
	Source  string
}

// LoginExternal creates or refreshes the user behind an external identity and
// starts a session for it.
func (s *UserService) LoginExternal(ctx context.Context, p ExternalProfile) (*pkg.Pair, *model.User, error) {
	if p.Email == "" {
		return nil, nil, fmt.Errorf("provider returned no email: %w", model.ErrInvalidInput)
	}
	user, err := s.repo.UpsertOAuth(ctx, &model.User{
		Username:           usernameFromEmail(p.Email),
		Email:              p.Email,
		Name:               p.Name,
		ProfileImage:       p.Picture,
		RegistrationSource: p.Source,
	})
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// usernameFromEmail keeps usernames unique for provider accounts, which never
// choose one themselves.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if len(local) > 20 {
		local = local[:20]
	}
	return local + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
