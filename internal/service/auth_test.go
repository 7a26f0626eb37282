package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/signon/signon-go/internal/crypto"
	"github.com/signon/signon-go/internal/model"
	"github.com/signon/signon-go/internal/repository"
)

// memStore is an in-memory UserStore for service tests.
type memStore struct {
	users  map[string]*model.User
	nextID int64

	findErr   error
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*model.User), nextID: 1}
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) Insert(_ context.Context, name, email, passwordHash, role string) (*model.User, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if _, ok := m.users[email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	now := time.Now()
	m.users[email] = &model.User{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.nextID++
	return &model.User{
		ID:        m.users[email].ID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
	}, nil
}

func newTestService(t *testing.T) (*AuthService, *memStore) {
	t.Helper()
	store := newMemStore()
	hasher, err := crypto.NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher() unexpected error: %v", err)
	}
	return NewAuthService(store, hasher, nil), store
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user")
	if err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}
	if user.Email != "alice@x.com" {
		t.Errorf("CreateUser() email = %q, want %q", user.Email, "alice@x.com")
	}
	if user.PasswordHash != "" {
		t.Error("CreateUser() returned record must not carry the password hash")
	}
	if user.ID == 0 {
		t.Error("CreateUser() returned record has no generated id")
	}
}

func TestCreateUserDefaultRole(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "")
	if err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}
	if user.Role != DefaultRole {
		t.Errorf("CreateUser() role = %q, want %q", user.Role, DefaultRole)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, store := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user"); err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}

	_, err := svc.CreateUser(context.Background(), "Bob", "alice@x.com", "x", "user")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateUser() error = %v, want ErrEmailTaken", err)
	}

	if store.users["alice@x.com"].Name != "Alice" {
		t.Error("existing record was modified by the failed registration")
	}
}

func TestCreateUserDuplicateEmailDifferentCase(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user"); err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}

	_, err := svc.CreateUser(context.Background(), "Bob", "ALICE@X.COM", "Secret123", "user")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateUser() error = %v, want ErrEmailTaken for same email in different case", err)
	}
}

func TestCreateUserInsertRace(t *testing.T) {
	svc, store := newTestService(t)

	// Lookup passes but the insert hits the unique index, as when two
	// registrations race.
	store.insertErr = repository.ErrDuplicateEmail

	_, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateUser() error = %v, want ErrEmailTaken from insert backstop", err)
	}
}

func TestCreateUserStoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.findErr = errors.New("connection refused")

	_, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user")
	if !errors.Is(err, ErrUserCreation) {
		t.Fatalf("CreateUser() error = %v, want ErrUserCreation", err)
	}
	if errors.Is(err, store.findErr) {
		t.Error("CreateUser() must not expose the underlying store error")
	}
}

func TestAuthenticateUserRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user")
	if err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}

	user, err := svc.AuthenticateUser(context.Background(), "alice@x.com", "Secret123")
	if err != nil {
		t.Fatalf("AuthenticateUser() unexpected error: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("AuthenticateUser() id = %d, want %d", user.ID, created.ID)
	}
	if user.PasswordHash == "" {
		t.Error("AuthenticateUser() should return the full record including the hash")
	}
}

func TestAuthenticateUserNormalizesEmail(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), "Alice", "Alice@X.com", "Secret123", "user"); err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}

	if _, err := svc.AuthenticateUser(context.Background(), " alice@x.com ", "Secret123"); err != nil {
		t.Fatalf("AuthenticateUser() unexpected error: %v", err)
	}
}

func TestAuthenticateUserUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AuthenticateUser(context.Background(), "nobody@x.com", "Secret123")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("AuthenticateUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestAuthenticateUserWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user"); err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}

	_, err := svc.AuthenticateUser(context.Background(), "alice@x.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("AuthenticateUser() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateUserCorruptHash(t *testing.T) {
	svc, store := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), "Alice", "alice@x.com", "Secret123", "user"); err != nil {
		t.Fatalf("CreateUser() unexpected error: %v", err)
	}
	store.users["alice@x.com"].PasswordHash = "not-a-bcrypt-hash"

	_, err := svc.AuthenticateUser(context.Background(), "alice@x.com", "Secret123")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("AuthenticateUser() error = %v, want ErrAuthentication", err)
	}
}

func TestAuthenticateUserStoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.findErr = errors.New("connection refused")

	_, err := svc.AuthenticateUser(context.Background(), "alice@x.com", "Secret123")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("AuthenticateUser() error = %v, want ErrAuthentication", err)
	}
}
