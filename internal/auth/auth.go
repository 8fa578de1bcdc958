package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/apperror"
	"github.com/wuwenbin0122/applytrackr/internal/db"
	"github.com/wuwenbin0122/applytrackr/internal/models"
)

var (
	ErrSecretRequired = errors.New("auth: jwt secret required")

	ErrMissingFields      = apperror.Validation("name, email, and password are required")
	ErrPasswordTooShort   = apperror.Validation(fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	ErrPasswordTooLong    = apperror.Validation(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	ErrEmailExists        = apperror.Conflict("Email already exists")
	ErrMissingCredentials = apperror.Validation("email and password are required")
	// Unknown email and wrong password share this value.
	ErrInvalidCredentials = apperror.Unauthenticated("Invalid email or password")
	ErrInvalidToken       = apperror.Unauthenticated("Invalid or expired token")
)

// UserStore is the credential store the service reads and writes.
// Implementations return db.ErrNotFound and db.ErrDuplicate.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type Service struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenService
	logger *zap.Logger
}

func NewService(users UserStore, hasher *PasswordHasher, tokens *TokenService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := models.NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if passwordLength(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(input.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := models.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.hasher.VerifyMissing(input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// CurrentUser resolves the account behind an authenticated request.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("current user: %w", err)
	}

	sanitized := user.Sanitize()
	return &sanitized, nil
}

func (s *Service) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Sanitize(),
	}, nil
}
