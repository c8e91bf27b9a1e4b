package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresRepository provides database operations on PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository initializes a new repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate applies pending schema migrations.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	migrationFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(database.DialectPostgres, r.db, migrationFS)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	id := uuid.NewString()
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, id, user.Username, user.PasswordHash); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// FindUserByUsername retrieves the earliest user registered under username.
// seq is assigned on insert, so ties on created_at cannot reorder matches.
func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, password_hash
		FROM users
		WHERE username = $1
		ORDER BY seq
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateTask creates a new task in the database
func (r *PostgresRepository) CreateTask(ctx context.Context, task *models.Task) error {
	id := uuid.NewString()
	query := `
		INSERT INTO tasks (id, title, description, user_id)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, id, task.Title, task.Description, task.UserID); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = id
	return nil
}

// FindTaskByID retrieves a task by id
func (r *PostgresRepository) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{}
	var description sql.NullString
	query := `
		SELECT id, title, description, user_id
		FROM tasks
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&task.ID, &task.Title, &description, &task.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if description.Valid {
		task.Description = &description.String
	}
	return task, nil
}

// UpdateTask overwrites the supplied fields of a task
func (r *PostgresRepository) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (bool, error) {
	query := `
		UPDATE tasks
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, update.Title, update.Description)
	if err != nil {
		return false, fmt.Errorf("failed to update task: %w", err)
	}
	return affected(res)
}

// DeleteTask removes a task by id
func (r *PostgresRepository) DeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return affected(res)
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
