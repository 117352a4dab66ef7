package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bugtracker/internal/auth"
	"github.com/spec-kit/bugtracker/internal/config"
	"github.com/spec-kit/bugtracker/internal/domain"
	"github.com/spec-kit/bugtracker/internal/repository"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

// AuthService coordinates registration and login.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// RegisterInput describes the registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.UserRole
}

// Register creates an account. Role is fixed at creation.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" || input.Role == "" {
		return nil, apperrors.NewValidationError("username, email, password and role are required", nil)
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role: must be user, staff or admin", nil)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("username or email already exists", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, *domain.User, error) {
	if username == "" || password == "" {
		return "", time.Time{}, nil, apperrors.NewValidationError("username and password are required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid username or password")
		}
		return "", time.Time{}, nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid username or password")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}
