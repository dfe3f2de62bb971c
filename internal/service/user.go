package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"cipherstudio/internal/auth"
	"cipherstudio/internal/config"
	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
	"cipherstudio/internal/domain/repositories"
)

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries profile updates.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserService handles account registration, login, and profiles.
type UserService struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates an account and issues a token for it.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Username,
			validation.Required,
			validation.Length(config.MinUsernameLength, config.MaxUsernameLength),
		),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 0),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "id", user.ID, "username", user.Username)

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token.
// Returns domain.ErrUnauthorized for unknown accounts and wrong passwords
// alike, so the response does not reveal which one it was.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, &domain.UnauthorizedError{Message: "invalid credentials"}
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, &domain.UnauthorizedError{Message: "invalid credentials"}
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "id", user.ID)

	return &AuthResult{Token: token, User: user}, nil
}

// GetProfile retrieves the user's profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile updates username and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if len(name) < config.MinUsernameLength || len(name) > config.MaxUsernameLength {
			return nil, fmt.Errorf("%w: username must be %d-%d characters",
				domain.ErrValidation, config.MinUsernameLength, config.MaxUsernameLength)
		}
		user.Username = name
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}

	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
