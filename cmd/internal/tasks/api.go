package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	authapi "taskd/cmd/internal/auth/api"
)

// Config controls tasks API behavior.
type Config struct {
	MaxBodyBytes int64
}

// Handler serves the /todos CRUD endpoints.
type Handler struct {
	log   *slog.Logger
	cfg   Config
	tasks Store
}

// NewHandler constructs a tasks Handler.
func NewHandler(log *slog.Logger, store Store, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, errors.New("tasks: nil store")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{log: log, cfg: cfg, tasks: store}, nil
}

// Register wires task routes onto the provided mux. Every route is
// protected: protect must wrap handlers with the identity middleware.
func (h *Handler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	if h == nil || mux == nil || protect == nil {
		return
	}
	mux.Handle("POST /todos", protect(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /todos", protect(http.HandlerFunc(h.handleList)))
	mux.Handle("PUT /todos/{id}", protect(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /todos/{id}", protect(http.HandlerFunc(h.handleDelete)))
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type listResponse struct {
	Message string `json:"message"`
	Data    []Task `json:"data"`
}

type updateResponse struct {
	Message string `json:"message"`
	Data    Task   `json:"data"`
}

type deleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := authapi.IdentityFrom(r.Context())
	if !ok || claims.UserID == "" {
		writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}

	t, err := h.tasks.CreateTask(r.Context(), CreateTaskInput{
		UserID:      claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		if IsNotFound(err) {
			// Token refers to a user that no longer exists.
			writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
			return
		}
		h.log.Error("tasks.create.fail", "err", err, "user_id", claims.UserID)
		writeServerError(w, "Failed to create todo", err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := authapi.IdentityFrom(r.Context())
	if !ok || claims.UserID == "" {
		writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
		return
	}

	list, err := h.tasks.ListTasksByOwner(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error("tasks.list.fail", "err", err, "user_id", claims.UserID)
		writeServerError(w, "Failed to fetch todos", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Message: "success", Data: list})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := authapi.IdentityFrom(r.Context())
	if !ok || claims.UserID == "" {
		writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := r.PathValue("id")
	if _, ok := h.ownedTask(w, r, id, claims.UserID); !ok {
		return
	}

	updated, err := h.tasks.UpdateTask(r.Context(), id, UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		if IsNotFound(err) {
			// Deleted between the ownership check and the update.
			writeMessage(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.log.Error("tasks.update.fail", "err", err, "task_id", id)
		writeServerError(w, "Failed to update todo", err)
		return
	}

	writeJSON(w, http.StatusOK, updateResponse{Message: "success", Data: updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := authapi.IdentityFrom(r.Context())
	if !ok || claims.UserID == "" {
		writeMessage(w, http.StatusUnauthorized, "User not found or unauthorized")
		return
	}

	id := r.PathValue("id")
	if _, ok := h.ownedTask(w, r, id, claims.UserID); !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		if IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.log.Error("tasks.delete.fail", "err", err, "task_id", id)
		writeServerError(w, "Failed to delete todo", err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Status: "success", Message: "Todo deleted"})
}

// ownedTask fetches a task and enforces the ownership check. A missing task
// and another user's task are reported identically as not found, so foreign
// ids cannot be probed. The check is re-run on every call, never cached.
func (h *Handler) ownedTask(w http.ResponseWriter, r *http.Request, id, userID string) (Task, bool) {
	t, err := h.tasks.GetTaskByID(r.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			writeMessage(w, http.StatusNotFound, "Todo not found")
			return Task{}, false
		}
		h.log.Error("tasks.fetch.fail", "err", err, "task_id", id)
		writeServerError(w, "Failed to fetch todo", err)
		return Task{}, false
	}
	if t.UserID != userID {
		writeMessage(w, http.StatusNotFound, "Todo not found")
		return Task{}, false
	}
	return t, true
}
