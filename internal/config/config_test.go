package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "primary", cfg.JWTKeyID)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 8, cfg.BcryptCost)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "task_management_app", cfg.MongoDatabase)
	assert.False(t, cfg.EnforceTaskOwnership)
	assert.Equal(t, 10*time.Second, cfg.SMTPTimeout)
}

func TestNewConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "current")
	t.Setenv("JWT_KEY_ID", "k2")
	t.Setenv("JWT_PREVIOUS_KEYS", "k1:old,k0:older")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENFORCE_TASK_OWNERSHIP", "true")
	t.Setenv("PORT", "9090")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "k2", cfg.JWTKeyID)
	assert.Equal(t, map[string]string{"k1": "old", "k0": "older"}, cfg.JWTPreviousKeys)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.True(t, cfg.EnforceTaskOwnership)
}

func TestNewConfig_WithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := NewConfig()
	assert.NoError(t, err)
}

func TestNewConfig_MalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=\"unterminated\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			JWTSecret:   "s",
			JWTKeyID:    "primary",
			TokenTTL:    time.Hour,
			StoreDriver: StoreMemory,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "redis" }, wantErr: "unknown STORE_DRIVER"},
		{name: "empty kid", mutate: func(c *Config) { c.JWTKeyID = "" }, wantErr: "JWT_KEY_ID"},
		{name: "previous key redefines active", mutate: func(c *Config) {
			c.JWTPreviousKeys = map[string]string{"primary": "x"}
		}, wantErr: "active key"},
		{name: "previous key without secret", mutate: func(c *Config) {
			c.JWTPreviousKeys = map[string]string{"old": ""}
		}, wantErr: "kid:secret"},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "TOKEN_TTL"},
		{name: "postgres without dsn", mutate: func(c *Config) {
			c.StoreDriver = StorePostgres
			c.DBConn = ""
		}, wantErr: "DB_CONN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNotificationsEnabled(t *testing.T) {
	cfg := &Config{SMTPHost: "smtp.example.com"}
	assert.False(t, cfg.NotificationsEnabled())

	cfg.AdminEmail = "admin@example.com"
	assert.True(t, cfg.NotificationsEnabled())
}
