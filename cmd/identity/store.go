package identity

import (
	"context"
	"time"
)

// User is taskd's canonical security principal.
// PasswordHash is stored server-side and must never be serialized to clients.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string

	CreatedAt time.Time
}

// CreateUserInput describes a user registration request.
// Password is the plaintext credential; the store hashes it before persisting.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Now      time.Time
}

// CreateUserResult returns the created user.
type CreateUserResult struct {
	User User
}

// Store is the identity persistence boundary.
//
// Contract:
//   - CreateUser returns a ConflictError (field "email") when the email is
//     already registered. Email uniqueness is case-sensitive on the exact
//     stored value.
//   - GetUserByEmail / GetUserByID return a NotFoundError when no row matches.
//   - Users are immutable after creation and are never deleted.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (CreateUserResult, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
}
