package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file. ENV_PATH overrides
// the default location; a missing file is fine outside local development.
func LoadDotEnv() {
	path := os.Getenv("ENV_PATH")
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		slog.Debug("no .env file loaded", "path", path, "error", err)
	}
}

// GetOr returns the value of key or fallback when unset.
func GetOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
