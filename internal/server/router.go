package server

import (
	"net/http"

	"github.com/Dan9191/task-service/internal/handler"
	"github.com/Dan9191/task-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the public, protected and health routes.
func NewRouter(h *handler.Handler, tokens middleware.TokenVerifier, health http.Handler, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(log))

	// Public routes
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.Handle("/health", health).Methods(http.MethodGet)

	// Protected routes
	tasks := r.PathPrefix("/tasks").Subrouter()
	tasks.Use(middleware.AuthMiddleware(tokens, log))
	tasks.HandleFunc("", h.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id}", h.UpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id}", h.DeleteTask).Methods(http.MethodDelete)

	return r
}
