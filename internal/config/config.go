package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	CORS      CORSConfig
	Predictor PredictorConfig
	Batch     BatchConfig
	Session   SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PredictorConfig holds settings for the remote prediction service.
type PredictorConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	RateLimitRPS float64 `mapstructure:"rate_limit_rps"`
	// RecommendationsEnabled toggles the /recommendations proxy route.
	RecommendationsEnabled bool `mapstructure:"recommendations_enabled"`
}

// Timeout returns the HTTP client timeout, defaulting to 30s.
func (p *PredictorConfig) Timeout() time.Duration {
	if p.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// BatchConfig holds upload and batch sizing settings.
type BatchConfig struct {
	SoftLimit      int    `mapstructure:"soft_limit"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	CSVDialect     string `mapstructure:"csv_dialect"`
}

// SessionConfig holds settings for the in-memory batch store.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	MaxBatches    int           `mapstructure:"max_batches"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Load reads configuration from environment variables with the CHURNFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHURNFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "text")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Predictor defaults
	v.SetDefault("predictor.base_url", "http://localhost:5000")
	v.SetDefault("predictor.timeout_secs", 30)
	v.SetDefault("predictor.rate_limit_rps", 0)
	v.SetDefault("predictor.recommendations_enabled", true)

	// Batch defaults
	v.SetDefault("batch.soft_limit", 1000)
	v.SetDefault("batch.max_upload_bytes", 10<<20)
	v.SetDefault("batch.csv_dialect", "simple")

	// Session defaults
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.max_batches", 100)
	v.SetDefault("session.sweep_interval", "1m")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "CHURNFLOW_SERVER_PORT",
		"server.read_timeout":               "CHURNFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "CHURNFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":                "CHURNFLOW_SERVER_ENVIRONMENT",
		"log.level":                         "CHURNFLOW_LOG_LEVEL",
		"log.format":                        "CHURNFLOW_LOG_FORMAT",
		"cors.allowed_origins":              "CHURNFLOW_CORS_ALLOWED_ORIGINS",
		"predictor.base_url":                "CHURNFLOW_PREDICTOR_BASE_URL",
		"predictor.timeout_secs":            "CHURNFLOW_PREDICTOR_TIMEOUT_SECS",
		"predictor.rate_limit_rps":          "CHURNFLOW_PREDICTOR_RATE_LIMIT_RPS",
		"predictor.recommendations_enabled": "CHURNFLOW_PREDICTOR_RECOMMENDATIONS_ENABLED",
		"batch.soft_limit":                  "CHURNFLOW_BATCH_SOFT_LIMIT",
		"batch.max_upload_bytes":            "CHURNFLOW_BATCH_MAX_UPLOAD_BYTES",
		"batch.csv_dialect":                 "CHURNFLOW_BATCH_CSV_DIALECT",
		"session.ttl":                       "CHURNFLOW_SESSION_TTL",
		"session.max_batches":               "CHURNFLOW_SESSION_MAX_BATCHES",
		"session.sweep_interval":            "CHURNFLOW_SESSION_SWEEP_INTERVAL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CHURNFLOW_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CHURNFLOW_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Predictor = PredictorConfig{
		BaseURL:                strings.TrimRight(v.GetString("predictor.base_url"), "/"),
		TimeoutSecs:            v.GetInt("predictor.timeout_secs"),
		RateLimitRPS:           v.GetFloat64("predictor.rate_limit_rps"),
		RecommendationsEnabled: v.GetBool("predictor.recommendations_enabled"),
	}

	cfg.Batch = BatchConfig{
		SoftLimit:      v.GetInt("batch.soft_limit"),
		MaxUploadBytes: v.GetInt64("batch.max_upload_bytes"),
		CSVDialect:     strings.ToLower(v.GetString("batch.csv_dialect")),
	}

	cfg.Session = SessionConfig{
		TTL:           v.GetDuration("session.ttl"),
		MaxBatches:    v.GetInt("session.max_batches"),
		SweepInterval: v.GetDuration("session.sweep_interval"),
	}

	return cfg, nil
}
