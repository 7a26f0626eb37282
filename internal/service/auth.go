package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/signon/signon-go/internal/model"
	"github.com/signon/signon-go/internal/repository"
)

var (
	// Preserved domain errors the boundary layer responds to specifically.
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Catch-all errors hiding the internal cause. The original failure is
	// logged here; only these cross the service boundary.
	ErrUserCreation   = errors.New("could not create user")
	ErrAuthentication = errors.New("could not authenticate user")
)

// DefaultRole is assigned to new users when registration omits a role.
const DefaultRole = "user"

// UserStore is the persistence contract the service depends on.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, name, email, passwordHash, role string) (*model.User, error)
}

// PasswordHasher is the credential hashing contract the service depends on.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// AuthService handles registration and credential verification.
type AuthService struct {
	store  UserStore
	hasher PasswordHasher
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, hasher PasswordHasher, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{store: store, hasher: hasher, logger: logger}
}

// normalizeEmail fixes the case policy: emails are compared and stored
// lowercase, so A@x.com and a@x.com are one account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a new user and returns the stored record without the
// password hash. A taken email fails with ErrEmailTaken; every other failure
// is logged and surfaces as ErrUserCreation.
//
// The lookup here only buys a friendly error on the common path. The unique
// index on users.email is what actually prevents two concurrent
// registrations from both succeeding, so the insert's duplicate error maps
// to ErrEmailTaken as well.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password, role string) (*model.User, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = DefaultRole
	}

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Error("user lookup failed during registration", "error", err)
		return nil, ErrUserCreation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("password hashing failed during registration", "error", err)
		return nil, ErrUserCreation
	}

	user, err := s.store.Insert(ctx, name, email, hash, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("user insert failed during registration", "error", err)
		return nil, ErrUserCreation
	}

	return user, nil
}

// AuthenticateUser verifies credentials and returns the full stored record,
// including the password hash; callers must sanitize before responding.
// An unknown email fails with ErrUserNotFound and a wrong password with
// ErrInvalidCredentials; every other failure is logged and surfaces as
// ErrAuthentication.
func (s *AuthService) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("user lookup failed during authentication", "error", err)
		return nil, ErrAuthentication
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "error", err)
		return nil, ErrAuthentication
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
