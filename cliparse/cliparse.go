package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AllowedOrigin string

	// Session cleanup thresholds. An active session expires after
	// InactiveTimeoutMinutes without activity or MaxDurationHours total.
	CleanupIntervalMinutes int
	InactiveTimeoutMinutes int
	MaxDurationHours       int
}

// ParseFlags validates flags and applies env fallbacks and defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("forkful", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.AllowedOrigin, "origin", "", "Allowed CORS origin (default: echo request origin)")

	// Cleanup tuning
	fs.IntVar(&cfg.CleanupIntervalMinutes, "cleanup-interval", 0, "Minutes between session cleanup runs")
	fs.IntVar(&cfg.InactiveTimeoutMinutes, "inactive-timeout", 0, "Minutes of inactivity before a session expires")
	fs.IntVar(&cfg.MaxDurationHours, "max-duration", 0, "Hours before a session expires regardless of activity")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3414 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}

	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = os.Getenv("ALLOWED_ORIGIN")
	}

	if cfg.CleanupIntervalMinutes == 0 {
		cfg.CleanupIntervalMinutes = envInt("SESSION_CLEANUP_INTERVAL_MINUTES", 30)
	}
	if cfg.InactiveTimeoutMinutes == 0 {
		cfg.InactiveTimeoutMinutes = envInt("SESSION_INACTIVE_TIMEOUT_MINUTES", 30)
	}
	if cfg.MaxDurationHours == 0 {
		cfg.MaxDurationHours = envInt("SESSION_MAX_DURATION_HOURS", 1)
	}

	return cfg, nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
