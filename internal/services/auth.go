package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yatube/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type SignupInput struct {
	Username string `form:"username" validate:"required,max=150,excludesall=/?#&% "`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

// AuthService registers users and checks their credentials.
type AuthService struct {
	repo   Repository
	logger *zap.Logger
	cost   int
}

func NewAuthService(repo Repository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, logger: logger, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost, tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Register creates a user. A taken username is reported as a field error.
func (s *AuthService) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, fieldError("username", "A user with that username already exists.")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup user %q: %w", in.Username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:  in.Username,
		Password:  string(hash),
		CreatedAt: utcNow(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %q: %w", in.Username, err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate returns the user when the password matches.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// User loads the user behind a session id.
func (s *AuthService) User(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

