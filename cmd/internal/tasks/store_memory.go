package tasks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskd/cmd/internal/ids"
)

// MemoryStore is a dev-mode fallback when no database is configured.
// In memory mode the user FK cannot be checked, so CreateTask trusts the
// caller-supplied owner id.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[string]Task
}

// NewMemoryStore constructs an in-memory task Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Task)}
}

// CreateTask persists a new task owned by in.UserID.
func (s *MemoryStore) CreateTask(ctx context.Context, in CreateTaskInput) (Task, error) {
	const op = "tasks.CreateTask"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "title is required"}
	}
	if strings.TrimSpace(in.UserID) == "" {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing user_id"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ids.NewULID(now)
	if err != nil {
		return Task{}, err
	}

	t := Task{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Completed:   in.Completed,
		UserID:      in.UserID,
		CreatedAt:   now,
	}

	s.mu.Lock()
	s.byID[id] = t
	s.mu.Unlock()

	return t, nil
}

// ListTasksByOwner returns all of the owner's tasks, newest first.
func (s *MemoryStore) ListTasksByOwner(ctx context.Context, userID string) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.byID))
	for _, t := range s.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetTaskByID fetches a task by id regardless of owner.
func (s *MemoryStore) GetTaskByID(ctx context.Context, id string) (Task, error) {
	const op = "tasks.GetTaskByID"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return Task{}, NotFoundError{Op: op, Resource: "task"}
	}
	return t, nil
}

// UpdateTask applies the non-nil fields and returns the updated record.
func (s *MemoryStore) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (Task, error) {
	const op = "tasks.UpdateTask"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return Task{}, NotFoundError{Op: op, Resource: "task"}
	}

	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}

	s.byID[id] = t
	return t, nil
}

// DeleteTask removes a task by id.
func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	const op = "tasks.DeleteTask"

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return NotFoundError{Op: op, Resource: "task"}
	}
	delete(s.byID, id)
	return nil
}
