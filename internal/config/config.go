package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// Document store. DATABASE_DSN is mandatory; the process refuses to start without it.
	DBDriver    string `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false"`

	// Redis backs sessions and revoked token ids.
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret     string        `env:"JWT_SECRET,required,notEmpty"`
	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// AuthRateLimit is the number of login/register attempts per second allowed per client IP.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Comma-separated list of words masked in chat messages.
	ChatCensoredWords string `env:"CHAT_CENSORED_WORDS" envDefault:""`
	ChatHistorySize   int    `env:"CHAT_HISTORY_SIZE" envDefault:"50"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.ChatHistorySize < 0 {
		return fmt.Errorf("CHAT_HISTORY_SIZE must not be negative")
	}
	return nil
}

// CensoredWords parses the comma-separated CHAT_CENSORED_WORDS value.
func (c *Config) CensoredWords() []string {
	if c.ChatCensoredWords == "" {
		return nil
	}
	parts := strings.Split(c.ChatCensoredWords, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}
