package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	LogLevel         string
	DatabaseDriver   string
	DatabaseURL      string
	RedisURL         string
	RedisChannel     string
	NATSURL          string
	NATSSubject      string
	JWTSecret        string
	QuizCacheTTL     time.Duration
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
	ShutdownTimeout  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
// Variables use the QUIZ_ prefix, e.g. QUIZ_DATABASE_URL.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Quiz API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("redis.channel", "quiz.submissions")
	v.SetDefault("nats.subject", "quiz.submission.graded")
	v.SetDefault("quiz.cache_ttl", "5m")
	v.SetDefault("submit.rate_limit", 30)
	v.SetDefault("submit.rate_window", "1m")
	v.SetDefault("shutdown.timeout", "10s")

	cacheTTL, err := parseDuration(v, "quiz.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "submit.rate_window")
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := parseDuration(v, "shutdown.timeout")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		LogLevel:         strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:   strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		RedisChannel:     v.GetString("redis.channel"),
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		JWTSecret:        v.GetString("jwt.secret"),
		QuizCacheTTL:     cacheTTL,
		SubmitRateLimit:  v.GetInt("submit.rate_limit"),
		SubmitRateWindow: rateWindow,
		ShutdownTimeout:  shutdownTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = 30
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return duration, nil
}
