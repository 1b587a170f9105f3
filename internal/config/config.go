package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Remote docstore backends.
const (
	BackendMemory = "memory"
	BackendGDrive = "gdrive"
)

type Config struct {
	// HTTP server
	Port string

	// Local store
	SQLiteDBPath string

	// Remote docstore
	RemoteBackend string

	// Google OAuth (gdrive backend and cmd/oauth-init)
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string

	// Identity (the household account the remote document is keyed by)
	UserID     string
	UserEmail  string
	UserName   string
	AutoSignIn bool

	// AMQP (optional; empty URL keeps remote sync in-process)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	SyncInterval time.Duration

	// Dashboard
	DefaultProjectionMonths int
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finance-planner.db"),

		RemoteBackend: getEnv("REMOTE_BACKEND", BackendMemory),

		GoogleOAuthClientFile: getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:  getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON: getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:  getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		UserID:     getEnv("PLANNER_USER_ID", ""),
		UserEmail:  getEnv("PLANNER_USER_EMAIL", ""),
		UserName:   getEnv("PLANNER_USER_NAME", ""),
		AutoSignIn: getEnvBool("PLANNER_AUTO_SIGNIN", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finance_planner"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_state"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		DefaultProjectionMonths: getEnvInt("PROJECTION_MONTHS", 12),
	}
}

// Validate checks the configuration and returns one error naming every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.RemoteBackend {
	case BackendMemory:
	case BackendGDrive:
		if c.GoogleOAuthClientFile == "" && c.GoogleOAuthClientJSON == "" {
			problems = append(problems, "gdrive backend requires GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON")
		}
		if c.GoogleOAuthTokenFile == "" && c.GoogleOAuthTokenJSON == "" {
			problems = append(problems, "gdrive backend requires GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid remote backend '%s': must be one of [%s %s]",
			c.RemoteBackend, BackendMemory, BackendGDrive))
	}

	if c.AutoSignIn && c.UserID == "" {
		problems = append(problems, "PLANNER_AUTO_SIGNIN requires PLANNER_USER_ID")
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLITE_DB_PATH must not be empty")
	}

	if c.SyncInterval <= 0 {
		problems = append(problems, fmt.Sprintf("invalid sync interval %s: must be positive", c.SyncInterval))
	}

	if c.DefaultProjectionMonths < 0 {
		problems = append(problems, fmt.Sprintf("invalid projection months %d: must not be negative", c.DefaultProjectionMonths))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
