package handler

import (
	"errors"
	"net/http"

	"github.com/Dan9191/task-service/internal/middleware"
	"github.com/Dan9191/task-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	msgUserNotFound = "User not found."
	msgTaskUpdated  = "Task updated successfully."
	msgTaskDeleted  = "Task deleted successfully."
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type authResponse struct {
	Auth  bool    `json:"auth"`
	Token *string `json:"token"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeValidation(w, err)
		return
	}

	token, err := h.svc.Register(r.Context(), *req.Username, *req.Password)
	if err != nil {
		h.writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Auth: true, Token: &token})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeValidation(w, err)
		return
	}

	token, err := h.svc.Login(r.Context(), *req.Username, *req.Password)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeText(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, authResponse{Auth: false})
	case err != nil:
		h.writeInternal(w, r, err)
	default:
		writeJSON(w, http.StatusOK, authResponse{Auth: true, Token: &token})
	}
}

// CreateTask handles task creation for the authenticated user
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeInternal(w, r, errors.New("user ID not found in context"))
		return
	}

	var req createTaskRequest
	if err := decode(w, r, &req); err != nil {
		h.writeValidation(w, err)
		return
	}

	task, err := h.svc.CreateTask(r.Context(), userID, *req.Title, req.Description)
	if err != nil {
		h.writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTask handles overwriting the title and description of a task
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeInternal(w, r, errors.New("user ID not found in context"))
		return
	}

	var req updateTaskRequest
	if err := decode(w, r, &req); err != nil {
		h.writeValidation(w, err)
		return
	}

	if err := h.svc.UpdateTask(r.Context(), userID, mux.Vars(r)["id"], req.toUpdate()); err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, msgTaskUpdated)
}

// DeleteTask handles task removal
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.writeInternal(w, r, errors.New("user ID not found in context"))
		return
	}

	if err := h.svc.DeleteTask(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, msgTaskDeleted)
}

func (h *Handler) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found.")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Task belongs to another user.")
	default:
		h.writeInternal(w, r, err)
	}
}
