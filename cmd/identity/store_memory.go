package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskd/cmd/internal/ids"
)

// MemoryStore is a dev-mode fallback when no database is configured.
// It honors the same contract as PostgresStore, including case-sensitive
// email uniqueness.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]User
	byEmail map[string]string // email -> user id
}

// NewMemoryStore constructs an in-memory identity Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// CreateUser registers a new user with a hashed credential.
func (s *MemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return CreateUserResult{}, err
	}

	name := NormalizeName(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "name is required"}
	}
	if email == "" {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.Password) == "" {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pwHash, err := HashPassword(in.Password)
	if err != nil {
		return CreateUserResult{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return CreateUserResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return CreateUserResult{}, ConflictError{Op: op, Field: "email"}
	}

	u := User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		CreatedAt:    now,
	}
	s.byID[id] = u
	s.byEmail[email] = id

	return CreateUserResult{User: u}, nil
}

// GetUserByEmail looks a user up by the exact stored email (case-sensitive).
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.byID[id], nil
}

// GetUserByID looks a user up by id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}
