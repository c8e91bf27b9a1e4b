package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported values for STORE_DRIVER.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	JWTSecret       string            `env:"JWT_SECRET"`
	JWTKeyID        string            `env:"JWT_KEY_ID" envDefault:"primary"`
	JWTPreviousKeys map[string]string `env:"JWT_PREVIOUS_KEYS" envSeparator:"," envKeyValSeparator:":"`
	TokenTTL        time.Duration     `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost      int               `env:"BCRYPT_COST" envDefault:"8"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURL      string `env:"MONGODB_URL" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"task_management_app"`
	DBConn        string `env:"DB_CONN" envDefault:"host=localhost port=5432 user=test password=test dbname=tasks sslmode=disable"`

	EnforceTaskOwnership bool   `env:"ENFORCE_TASK_OWNERSHIP" envDefault:"false"`
	HealthcheckSchedule  string `env:"HEALTHCHECK_SCHEDULE" envDefault:"@every 30s"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     string        `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SenderEmail  string        `env:"SENDER_EMAIL"`
	AdminEmail   string        `env:"ADMIN_EMAIL"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is read first if present.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTKeyID == "" {
		return fmt.Errorf("JWT_KEY_ID must not be empty")
	}
	for kid, secret := range c.JWTPreviousKeys {
		if kid == "" || secret == "" {
			return fmt.Errorf("JWT_PREVIOUS_KEYS entries must be kid:secret")
		}
		if kid == c.JWTKeyID {
			return fmt.Errorf("JWT_PREVIOUS_KEYS must not redefine the active key %q", kid)
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURL == "" {
			return fmt.Errorf("MONGODB_URL is required")
		}
	case StorePostgres:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// NotificationsEnabled reports whether sign-up notices can be delivered.
func (c *Config) NotificationsEnabled() bool {
	return c.SMTPHost != "" && c.AdminEmail != ""
}
