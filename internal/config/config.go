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
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	FocusLossLimit   int
	ResultCacheTTL   time.Duration
	ProgressCacheTTL time.Duration
	EventChannelBase string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DOJANG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Dojang Exam API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("focus_loss_limit", 3)
	v.SetDefault("result.cache_ttl", "10m")
	v.SetDefault("progress.cache_ttl", "1m")
	v.SetDefault("event.channel_base", "dojang.exams")

	resultTTL, err := parseTTL(v.GetString("result.cache_ttl"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid result cache ttl: %w", err)
	}

	progressTTL, err := parseTTL(v.GetString("progress.cache_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid progress cache ttl: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		FocusLossLimit:   v.GetInt("focus_loss_limit"),
		ResultCacheTTL:   resultTTL,
		ProgressCacheTTL: progressTTL,
		EventChannelBase: v.GetString("event.channel_base"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.FocusLossLimit <= 0 {
		cfg.FocusLossLimit = 3
	}

	return cfg, nil
}

func parseTTL(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
