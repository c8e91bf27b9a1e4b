package repository

import (
	"context"
	"sync"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users and tasks in process memory.
// Users are kept in registration order so lookups return the first match.
type MemoryRepository struct {
	mu    sync.RWMutex
	users []models.User
	tasks map[string]models.Task
}

// NewMemoryRepository initializes an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]models.Task)}
}

func (r *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = uuid.NewString()
	r.users = append(r.users, *user)
	return nil
}

func (r *MemoryRepository) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateTask(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = uuid.NewString()
	r.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r *MemoryRepository) FindTaskByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneTask(task)
	return &found, nil
}

func (r *MemoryRepository) UpdateTask(_ context.Context, id string, update models.TaskUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		d := *update.Description
		task.Description = &d
	}
	r.tasks[id] = task
	return true, nil
}

func (r *MemoryRepository) DeleteTask(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

// cloneTask copies the description so callers never share the stored pointer.
func cloneTask(t models.Task) models.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}
