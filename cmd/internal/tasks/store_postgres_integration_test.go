package tasks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskd/cmd/internal/ids"
)

// Integration tests are opt-in and require TASKD_DATABASE_URL.
// In non-CI runs, unreachable Postgres skips these tests to keep local runs fast.

func TestPostgresStore_CreateTask_AndFetch(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyTasksSchema(t, pool, schema)

	s := mustNewTaskStore(t, pool, schema)
	userID := mustSeedUser(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	desc := "two cartons"
	created, err := s.CreateTask(ctx, CreateTaskInput{
		Title:       "buy milk",
		Description: &desc,
		UserID:      userID,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.ID == "" || created.Completed {
		t.Fatalf("unexpected task: %+v", created)
	}

	got, err := s.GetTaskByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != "buy milk" || got.UserID != userID {
		t.Fatalf("fetch mismatch: %+v", got)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("description mismatch: %v", got.Description)
	}
}

func TestPostgresStore_CreateTask_UnknownOwner_FKViolation(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyTasksSchema(t, pool, schema)

	s := mustNewTaskStore(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.CreateTask(ctx, CreateTaskInput{
		Title:  "orphan",
		UserID: mustNewULIDLike(t),
		Now:    time.Now().UTC(),
	})
	if !IsNotFound(err) {
		t.Fatalf("expected not found for unknown owner, got: %v", err)
	}
}

func TestPostgresStore_ListTasksByOwner_NewestFirst(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyTasksSchema(t, pool, schema)

	s := mustNewTaskStore(t, pool, schema)
	userA := mustSeedUser(t, pool, schema)
	userB := mustSeedUser(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, title := range []string{"first", "second", "third"} {
		_, err := s.CreateTask(ctx, CreateTaskInput{
			Title:  title,
			UserID: userA,
			Now:    base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
	}
	if _, err := s.CreateTask(ctx, CreateTaskInput{Title: "not A's", UserID: userB, Now: base}); err != nil {
		t.Fatalf("create for B: %v", err)
	}

	list, err := s.ListTasksByOwner(ctx, userA)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(list))
	}
	if list[0].Title != "third" || list[1].Title != "second" || list[2].Title != "first" {
		t.Fatalf("unexpected ordering: %q %q %q", list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestPostgresStore_UpdateTask_PartialFields(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyTasksSchema(t, pool, schema)

	s := mustNewTaskStore(t, pool, schema)
	userID := mustSeedUser(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, err := s.CreateTask(ctx, CreateTaskInput{
		Title:  "buy milk",
		UserID: userID,
		Now:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Only completed is set; title and description stay untouched.
	done := true
	updated, err := s.UpdateTask(ctx, created.ID, UpdateTaskInput{Completed: &done})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed {
		t.Fatalf("completed not applied")
	}
	if updated.Title != "buy milk" {
		t.Fatalf("title must be unchanged, got %q", updated.Title)
	}
	if updated.Description != nil {
		t.Fatalf("description must be unchanged, got %v", updated.Description)
	}

	// Now retitle without touching completed.
	title := "buy oat milk"
	updated, err = s.UpdateTask(ctx, created.ID, UpdateTaskInput{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if updated.Title != "buy oat milk" || !updated.Completed {
		t.Fatalf("partial update mismatch: %+v", updated)
	}
}

func TestPostgresStore_UpdateDelete_NotFound(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })
	mustApplyTasksSchema(t, pool, schema)

	s := mustNewTaskStore(t, pool, schema)
	userID := mustSeedUser(t, pool, schema)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	title := "x"
	if _, err := s.UpdateTask(ctx, mustNewULIDLike(t), UpdateTaskInput{Title: &title}); !IsNotFound(err) {
		t.Fatalf("expected not found on update, got: %v", err)
	}
	if err := s.DeleteTask(ctx, mustNewULIDLike(t)); !IsNotFound(err) {
		t.Fatalf("expected not found on delete, got: %v", err)
	}

	created, err := s.CreateTask(ctx, CreateTaskInput{Title: "ephemeral", UserID: userID, Now: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTask(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got: %v", err)
	}
}

// ---- helpers ----

func mustNewTaskStore(t *testing.T, pool *pgxpool.Pool, schema string) *PostgresStore {
	t.Helper()
	s, err := NewPostgresStore(pool, WithSchema(schema))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func mustSeedUser(t *testing.T, pool *pgxpool.Pool, schema string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := mustNewULIDLike(t)
	users := pgIdent(schema, "users")
	_, err := pool.Exec(ctx,
		`INSERT INTO `+users+` (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		id, "Task Owner", id+"@example.com", "not-a-real-hash",
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv("TASKD_DATABASE_URL"))
	if raw == "" {
		t.Skip("integration test skipped: TASKD_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(raw)
	if err != nil {
		t.Fatalf("parse TASKD_DATABASE_URL: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()

	c, err := pool.Acquire(pingCtx)
	if err != nil {
		pool.Close()
		if shouldSkipIntegration(err) {
			t.Skipf("integration test skipped: Postgres unreachable (TASKD_DATABASE_URL set): %v", err)
		}
		t.Fatalf("acquire: %v", err)
	}
	c.Release()

	return pool
}

func mustCreateTestSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	schema := "taskd_it_" + strings.ToLower(mustNewULIDLike(t))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, `CREATE SCHEMA `+pgxIdent1(schema)); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return schema
}

func mustDropSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+pgxIdent1(schema)+` CASCADE`)
}

func mustApplyTasksSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	users := pgIdent(schema, "users")
	tasksTable := pgIdent(schema, "tasks")

	schemaSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

  CONSTRAINT chk_users_id_ulid_len CHECK (char_length(id) = 26),
  CONSTRAINT uq_users_email UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NULL,
  completed BOOLEAN NOT NULL DEFAULT FALSE,
  user_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

  CONSTRAINT chk_tasks_id_ulid_len CHECK (char_length(id) = 26),
  CONSTRAINT chk_tasks_user_id_ulid_len CHECK (char_length(user_id) = 26)
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_id
  ON %s (user_id);

CREATE INDEX IF NOT EXISTS idx_tasks_user_created
  ON %s (user_id, created_at DESC, id DESC);
`, users, tasksTable, users, tasksTable, tasksTable)

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
}

func shouldSkipIntegration(err error) bool {
	if err == nil {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "no such host") {
		return true
	}
	return false
}

func mustNewULIDLike(t *testing.T) string {
	t.Helper()

	id, err := ids.NewULID(time.Now().UTC())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	return id
}

func pgxIdent1(ident string) string {
	// pgx.Identifier safely quotes identifiers, preventing SQL injection in dynamic DDL.
	return pgx.Identifier{ident}.Sanitize()
}
