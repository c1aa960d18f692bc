package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hanu-sports/storefront/internal/auth"
	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/repository"
	"github.com/rs/zerolog"
)

// UserService handles registration, login and profile lookups. Tokens are
// minted here so handlers never touch the signing secret.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger zerolog.Logger
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, logger zerolog.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, logger: logger}
}

type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
}

// Register creates a user account and returns the user with a fresh token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token. The
// same error comes back for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}
