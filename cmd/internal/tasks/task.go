// Package tasks owns the per-user task records and their HTTP surface.
// Every operation here runs behind the identity middleware; ownership is
// enforced against the authenticated caller on each access.
package tasks

import (
	"context"
	"time"
)

// Task is a single task record. UserID references the owning user and is
// never null; CreatedAt drives the default newest-first ordering.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTaskInput describes a task creation request.
type CreateTaskInput struct {
	UserID      string
	Title       string
	Description *string
	Completed   bool
	Now         time.Time
}

// UpdateTaskInput carries the mutable fields. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Store is the task persistence boundary.
//
// Contract:
//   - CreateTask returns a NotFoundError (resource "user") when the owning
//     user does not exist.
//   - GetTaskByID fetches by id regardless of owner; the ownership check is
//     the caller's job and is repeated per operation.
//   - ListTasksByOwner returns the owner's tasks newest-first.
type Store interface {
	CreateTask(ctx context.Context, in CreateTaskInput) (Task, error)
	ListTasksByOwner(ctx context.Context, userID string) ([]Task, error)
	GetTaskByID(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (Task, error)
	DeleteTask(ctx context.Context, id string) error
}
