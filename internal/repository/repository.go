package repository

import (
	"context"
	"errors"

	"github.com/Dan9191/task-service/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// Store is the credential and task store used by the service layer.
// Updates and deletes of a missing id are not errors: they report false.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	// FindUserByUsername returns the first user registered under username.
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateTask(ctx context.Context, task *models.Task) error
	FindTaskByID(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	Ping(ctx context.Context) error
}
