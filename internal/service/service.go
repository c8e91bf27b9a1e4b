package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/Dan9191/task-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer issues a signed token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Notifier is told about new registrations.
type Notifier interface {
	NotifyRegistration(ctx context.Context, username string) error
}

// notifyTimeout caps how long a registration waits on its notice.
const notifyTimeout = 5 * time.Second

// Service handles business logic
type Service struct {
	repo             repository.Store
	hasher           PasswordHasher
	tokens           TokenIssuer
	notifier         Notifier
	log              *logrus.Logger
	enforceOwnership bool
	notifyTimeout    time.Duration
}

// NewService initializes a new service.
// With enforceOwnership set, tasks can only be updated or deleted by their creator.
func NewService(repo repository.Store, hasher PasswordHasher, tokens TokenIssuer, notifier Notifier, log *logrus.Logger, enforceOwnership bool) *Service {
	return &Service{
		repo:             repo,
		hasher:           hasher,
		tokens:           tokens,
		notifier:         notifier,
		log:              log,
		enforceOwnership: enforceOwnership,
		notifyTimeout:    notifyTimeout,
	}
}

// Register creates a new user with hashed password and returns a token for it.
// Usernames are not unique: registering the same name twice creates two users.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyRegistration(notifyCtx, user.Username); err != nil {
		s.log.Warnf("Registration notice for %s not delivered: %v", user.Username, err)
	}

	s.log.WithField("user_id", user.ID).Infof("User registered: %s", user.Username)
	return token, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Login for unknown user: %s", username)
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.WithField("user_id", user.ID).Warnf("Wrong password for user: %s", username)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	s.log.WithField("user_id", user.ID).Infof("User logged in: %s", user.Username)
	return token, nil
}

// CreateTask creates a task owned by userID
func (s *Service) CreateTask(ctx context.Context, userID, title string, description *string) (*models.Task, error) {
	task := &models.Task{
		Title:       title,
		Description: description,
		UserID:      userID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", userID).Infof("Task created: %s", task.ID)
	return task, nil
}

// UpdateTask overwrites the supplied fields of task id.
// A missing id is a silent no-op unless ownership is enforced.
func (s *Service) UpdateTask(ctx context.Context, userID, id string, update models.TaskUpdate) error {
	if err := s.checkOwner(ctx, userID, id); err != nil {
		return err
	}

	matched, err := s.repo.UpdateTask(ctx, id, update)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "matched": matched}).Infof("Task updated: %s", id)
	return nil
}

// DeleteTask removes task id.
// A missing id is a silent no-op unless ownership is enforced.
func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.checkOwner(ctx, userID, id); err != nil {
		return err
	}

	matched, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "matched": matched}).Infof("Task deleted: %s", id)
	return nil
}

func (s *Service) checkOwner(ctx context.Context, userID, id string) error {
	if !s.enforceOwnership {
		return nil
	}

	task, err := s.repo.FindTaskByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if task.UserID != userID {
		s.log.WithField("user_id", userID).Warnf("Denied access to task %s", id)
		return ErrForbidden
	}
	return nil
}
