package internal

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config carries the environment-derived settings for the CLI and the
// embedded blob server.
type Config struct {
	Port     int    // blob server listen port
	DataDir  string // blob server document directory
	ShareURL string // base URL of the remote blob store
	DBPath   string // annotation database path
}

// LoadConfig reads configuration from the environment with fallbacks
func LoadConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".threadmark")

	return Config{
		Port:     envInt("THREADMARK_PORT", 8460),
		DataDir:  envStr("THREADMARK_DATA_DIR", filepath.Join(base, "shared")),
		ShareURL: envStr("THREADMARK_SHARE_URL", "http://localhost:8460"),
		DBPath:   envStr("THREADMARK_DB", filepath.Join(base, "threadmark.db")),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
