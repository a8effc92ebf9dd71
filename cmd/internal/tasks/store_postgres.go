package tasks

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskd/cmd/internal/ids"
)

// PostgresStore implements task persistence over PostgreSQL.
// The pgx pool is owned by the caller; this store must NOT close it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the task store (default "taskd").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("tasks: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("tasks: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with safe defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "taskd",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("tasks: nil pool")
	}
	return st, nil
}

const taskColumns = "id, title, description, completed, user_id, created_at"

// CreateTask persists a new task owned by in.UserID.
func (s *PostgresStore) CreateTask(ctx context.Context, in CreateTaskInput) (Task, error) {
	const op = "tasks.CreateTask"

	if s == nil || s.pool == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
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

	table := pgIdent(s.schema, "tasks")
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, title, description, completed, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, title, in.Description, in.Completed, in.UserID, now,
	)
	if err != nil {
		if pgIsForeignKeyViolation(err) {
			return Task{}, NotFoundError{Op: op, Resource: "user"}
		}
		return Task{}, err
	}

	return Task{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Completed:   in.Completed,
		UserID:      in.UserID,
		CreatedAt:   now,
	}, nil
}

// ListTasksByOwner returns all of the owner's tasks, newest first.
func (s *PostgresStore) ListTasksByOwner(ctx context.Context, userID string) ([]Task, error) {
	const op = "tasks.ListTasksByOwner"

	if s == nil || s.pool == nil {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if strings.TrimSpace(userID) == "" {
		return nil, OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing user_id"}
	}

	table := pgIdent(s.schema, "tasks")
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM `+table+`
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0, 16)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTaskByID fetches a task by id regardless of owner.
func (s *PostgresStore) GetTaskByID(ctx context.Context, id string) (Task, error) {
	const op = "tasks.GetTaskByID"

	if s == nil || s.pool == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if strings.TrimSpace(id) == "" {
		return Task{}, NotFoundError{Op: op, Resource: "task"}
	}

	table := pgIdent(s.schema, "tasks")
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM `+table+` WHERE id = $1`,
		id,
	)

	var t Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, NotFoundError{Op: op, Resource: "task"}
		}
		return Task{}, err
	}
	return t, nil
}

// UpdateTask applies the non-nil fields and returns the updated record.
func (s *PostgresStore) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (Task, error) {
	const op = "tasks.UpdateTask"

	if s == nil || s.pool == nil {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if strings.TrimSpace(id) == "" {
		return Task{}, NotFoundError{Op: op, Resource: "task"}
	}

	table := pgIdent(s.schema, "tasks")
	row := s.pool.QueryRow(ctx,
		`UPDATE `+table+` SET
		   title       = COALESCE($2, title),
		   description = COALESCE($3, description),
		   completed   = COALESCE($4, completed)
		 WHERE id = $1
		 RETURNING `+taskColumns,
		id, in.Title, in.Description, in.Completed,
	)

	var t Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, NotFoundError{Op: op, Resource: "task"}
		}
		return Task{}, err
	}
	return t, nil
}

// DeleteTask removes a task by id.
func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	const op = "tasks.DeleteTask"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if strings.TrimSpace(id) == "" {
		return NotFoundError{Op: op, Resource: "task"}
	}

	table := pgIdent(s.schema, "tasks")
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "task"}
	}
	return nil
}

func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgIsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23503" // foreign_key_violation
}
