package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage Configuration
	Storage StorageConfig `json:"storage"`

	// Polling Configuration
	Poll PollConfig `json:"poll"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`

	// Environment: development, staging, production
	Environment string `json:"environment"`
}

// StorageConfig locates the on-device key-value database.
type StorageConfig struct {
	// Path of the SQLite file backing the key-value store.
	Path string `json:"path"`
}

// PollConfig holds the refresh intervals of the two synchronizer timers.
// The conversation timer runs while a conversation is open, the chat-list
// timer while the list is open; never both at once.
type PollConfig struct {
	ConversationInterval time.Duration `json:"conversation_interval"`
	ChatListInterval     time.Duration `json:"chat_list_interval"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

// LoadConfig reads configuration from the environment, with a .env file
// picked up when present. Missing variables fall back to the defaults the
// mobile app hard-coded (2s conversation poll, 3s chat-list poll).
func LoadConfig() *Config {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	return &Config{
		Storage: StorageConfig{
			Path: getEnvOrDefault("LP_DB_PATH", "langpal.db"),
		},
		Poll: PollConfig{
			ConversationInterval: envMillis("LP_CONVERSATION_POLL_MS", 2000),
			ChatListInterval:     envMillis("LP_CHAT_LIST_POLL_MS", 3000),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LP_LOG_LEVEL", "info"),
		},
		Environment: getEnvOrDefault("LP_ENV", "development"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envMillis(key string, defaultMillis int) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(defaultMillis) * time.Millisecond
}
