package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/demowall/backend/internal/apperrors"
	"github.com/demowall/backend/internal/auth/service"
	"github.com/demowall/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Create inserts a new user and sets its assigned ID.
	// Duplicate username or email fails with apperrors.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	// GetByUsername retrieves a user by username, apperrors.ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByID retrieves a user by ID, apperrors.ErrNotFound when absent.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// EnsureAdmin inserts the bootstrap admin unless username or email is taken.
	EnsureAdmin(ctx context.Context, username, email, passwordHash string) error
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// authService implements registration, login and profile lookup
type authService struct {
	userRepo       UserRepository
	tokenGenerator *service.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenGenerator *service.TokenGenerator, logger *zap.Logger) *authService {
	return &authService{
		userRepo:       userRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Register creates a new user account with the default role and active status
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", apperrors.ErrValidation)
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords fail identically so the endpoint cannot be used for enumeration;
// banned accounts fail with their own error even when the password is correct.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.Status == models.UserStatusBanned {
		return "", nil, apperrors.ErrBanned
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.Generate(user)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Int("userId", user.ID), zap.Error(err))
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// Profile retrieves the caller's own user record
func (s *authService) Profile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// EnsureAdmin seeds the bootstrap admin account from configured credentials.
// Idempotent: an existing user with the same username or email wins.
func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	return s.userRepo.EnsureAdmin(ctx, username, email, string(passwordHash))
}
