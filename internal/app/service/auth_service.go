package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/pkg/logger"
	"github.com/ikkim/homecart-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// SessionRevoker records logged-out token ids until they expire.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, *util.TokenPair, error)
	Login(ctx context.Context, email, password string) (*model.User, *util.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, access *util.Claims, refreshToken string) error
	LoginWithOAuth(ctx context.Context, provider model.AuthProvider, profile *OAuthProfile) (*model.User, *util.TokenPair, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	revoker       SessionRevoker
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	revoker SessionRevoker,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		revoker:       revoker,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*model.User, *util.TokenPair, error) {
	email = normalizeEmail(email)
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         model.RoleUser,
		Provider:     model.ProviderCredentials,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *util.TokenPair, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued with the user's current role.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.User, *util.TokenPair, error) {
	claims, err := util.ValidateTokenOfType(refreshToken, s.jwtSecret, util.RefreshToken)
	if err != nil {
		logger.Warn("Refresh failed: invalid token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		logger.Warn("Refresh failed: token revoked", map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil, nil, ErrTokenRevoked
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.RemainingLifetime()); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Tokens refreshed", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

// Logout revokes the access token and, when it parses, the refresh token.
func (s *authService) Logout(ctx context.Context, access *util.Claims, refreshToken string) error {
	if err := s.revoker.Revoke(ctx, access.ID, access.RemainingLifetime()); err != nil {
		logger.Error("Failed to revoke access token", err, map[string]interface{}{
			"user_id": access.UserID,
		})
		return err
	}

	if refreshToken != "" {
		claims, err := util.ValidateTokenOfType(refreshToken, s.jwtSecret, util.RefreshToken)
		if err == nil && claims.UserID == access.UserID {
			if err := s.revoker.Revoke(ctx, claims.ID, claims.RemainingLifetime()); err != nil {
				logger.Error("Failed to revoke refresh token", err, map[string]interface{}{
					"user_id": access.UserID,
				})
				return err
			}
		}
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": access.UserID,
	})
	return nil
}

// LoginWithOAuth finds the account linked to the provider subject, links an
// existing account with the same email, or creates a new one.
func (s *authService) LoginWithOAuth(
	ctx context.Context,
	provider model.AuthProvider,
	profile *OAuthProfile,
) (*model.User, *util.TokenPair, error) {
	logger.Info("OAuth login attempt", map[string]interface{}{
		"provider": provider,
		"email":    profile.Email,
	})

	user, err := s.userRepo.FindByProvider(ctx, provider, profile.Subject)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	if user == nil {
		user, err = s.userRepo.FindByEmail(ctx, normalizeEmail(profile.Email))
		switch {
		case err == nil:
			user.Provider = provider
			user.ProviderUserID = profile.Subject
			if user.Image == "" {
				user.Image = profile.Picture
			}
			if err := s.userRepo.Update(ctx, user); err != nil {
				logger.Error("Failed to link OAuth account", err, map[string]interface{}{
					"user_id": user.ID,
				})
				return nil, nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = &model.User{
				Email:          normalizeEmail(profile.Email),
				Name:           profile.Name,
				Image:          profile.Picture,
				Role:           model.RoleUser,
				Provider:       provider,
				ProviderUserID: profile.Subject,
			}
			if err := s.userRepo.Create(ctx, user); err != nil {
				logger.Error("Failed to create OAuth user", err, map[string]interface{}{
					"email": profile.Email,
				})
				return nil, nil, err
			}
		default:
			return nil, nil, err
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("OAuth login successful", map[string]interface{}{
		"user_id":  user.ID,
		"provider": provider,
	})
	return user, tokens, nil
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}
