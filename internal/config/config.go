package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	// HTTP Server
	Port string `env:"PORT" envDefault:"8081"`

	// Backend selection
	DataBackend string `env:"DATA_BACKEND" envDefault:"memory"`

	// Database
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/gastos.db"`

	// AMQP (optional; record backup pipeline)
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"gastos"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"sync_records"`

	// Identity provider (Google OAuth sign-in)
	GoogleOAuthClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleOAuthClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleOAuthRedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:"http://localhost:8081/auth/callback"`
	AllowedEmails           []string `env:"ALLOWED_EMAILS" envSeparator:","`
	SessionSecret           string   `env:"SESSION_SECRET"`
	SessionTTL              time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// Google Sheets backup (worker)
	GoogleSpreadsheetID  string `env:"GOOGLE_SPREADSHEET_ID"`
	BackupLedgerSheet    string `env:"BACKUP_LEDGER_SHEET" envDefault:"Gastos"`
	BackupPurchasesSheet string `env:"BACKUP_PURCHASES_SHEET" envDefault:"Tarjeta"`

	// Worker
	SyncBatchSize int           `env:"SYNC_BATCH_SIZE" envDefault:"10"`
	SyncInterval  time.Duration `env:"SYNC_INTERVAL" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// AuthEnabled reports whether the Google sign-in flow is configured.
// Without it the record routes run open, so production setups must always
// set it; tests and local smoke runs may leave it off.
func (c *Config) AuthEnabled() bool {
	return c.GoogleOAuthClientID != "" && c.GoogleOAuthClientSecret != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate sign-in configuration when enabled
	if c.AuthEnabled() {
		if c.SessionSecret == "" {
			errors = append(errors, "SESSION_SECRET is required when Google sign-in is configured")
		}
		if len(c.AllowedEmails) == 0 {
			errors = append(errors, "ALLOWED_EMAILS cannot be empty when Google sign-in is configured")
		}
		for _, email := range c.AllowedEmails {
			if !strings.Contains(email, "@") {
				errors = append(errors, fmt.Sprintf("invalid allowed email '%s'", email))
			}
		}
		if _, err := url.Parse(c.GoogleOAuthRedirectURL); err != nil || c.GoogleOAuthRedirectURL == "" {
			errors = append(errors, fmt.Sprintf("invalid OAuth redirect URL '%s'", c.GoogleOAuthRedirectURL))
		}
		if c.SessionTTL < time.Minute || c.SessionTTL > 31*24*time.Hour {
			errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be between 1 minute and 31 days", c.SessionTTL))
		}
	}

	// Validate worker configuration
	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
