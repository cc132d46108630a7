package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	TelegramToken  string
	TelegramAPIURL string

	GeminiAPIKey string
	GeminiModel  string

	DatabasePath string

	// FreeDailyLimit is how many AI requests a free user gets per calendar day.
	FreeDailyLimit int
	// MaxHistory is how many recent conversation turns are fed back to the model.
	MaxHistory int
	// MaxMessageLength caps the AI reply before it gets the truncation marker.
	MaxMessageLength int

	JWTSecret        string
	OwnerSetupSecret string

	Port string
}

func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:   envOr("TELEGRAM_API_URL", "https://api.telegram.org"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		DatabasePath:     envOr("DATABASE_PATH", "bot.db"),
		FreeDailyLimit:   envIntOr("FREE_DAILY_LIMIT", 10),
		MaxHistory:       envIntOr("MAX_HISTORY", 10),
		MaxMessageLength: envIntOr("MAX_MESSAGE_LENGTH", 4000),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		OwnerSetupSecret: os.Getenv("OWNER_SETUP_SECRET"),
		Port:             envOr("PORT", "8080"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
