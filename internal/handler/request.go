package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dan9191/task-service/internal/models"
)

const maxBodyBytes = 1 << 20

// ValidationError describes a request body that cannot be processed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type validator interface {
	validate() error
}

type credentialsRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (r *credentialsRequest) validate() error {
	if r.Username == nil {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if r.Password == nil {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

type createTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (r *createTaskRequest) validate() error {
	if r.Title == nil {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// validate accepts any subset of fields; an empty update is a no-op.
func (r *updateTaskRequest) validate() error {
	return nil
}

func (r *updateTaskRequest) toUpdate() models.TaskUpdate {
	return models.TaskUpdate{Title: r.Title, Description: r.Description}
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v validator) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &ValidationError{Field: "body", Message: "request body too large"}
		}
		return &ValidationError{Field: "body", Message: "malformed JSON body"}
	}
	return v.validate()
}
