package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Engine    EngineConfig    `yaml:"engine"`
	Sweeper   SweeperConfig   `yaml:"sweeper"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// AuthConfig holds API token authentication configuration
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// DatabaseConfig holds PostgreSQL configuration for message persistence
type DatabaseConfig struct {
	Enabled        bool   `yaml:"enabled"`
	URL            string `yaml:"url"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured query timeout as a duration
func (c DatabaseConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds Redis configuration for session storage and counters
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	URL     string `yaml:"url"`
}

// EngineConfig holds response engine tuning parameters.
// Scoring weights live here, not in code, so they can be tuned per tenant.
type EngineConfig struct {
	KeywordWeight        float64 `yaml:"keyword_weight"`
	PatternWeight        float64 `yaml:"pattern_weight"`
	DefaultConfidence    float64 `yaml:"default_confidence"`
	FlowConfidence       float64 `yaml:"flow_confidence"`
	ProactiveConfidence  float64 `yaml:"proactive_confidence"`
	FallbackConfidence   float64 `yaml:"fallback_confidence"`
	ProactiveIdleMinutes int     `yaml:"proactive_idle_minutes"`
	SessionTTLMinutes    int     `yaml:"session_ttl_minutes"`
	SentimentCacheSize   int     `yaml:"sentiment_cache_size"`
	MaxSuggestions       int     `yaml:"max_suggestions"`
	EmpathyThreshold     float64 `yaml:"empathy_threshold"`
}

// ProactiveIdle returns the idle window before a re-engagement nudge fires
func (c EngineConfig) ProactiveIdle() time.Duration {
	return time.Duration(c.ProactiveIdleMinutes) * time.Minute
}

// SessionTTL returns the session eviction window
func (c EngineConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// SweeperConfig holds proactive engagement sweeper configuration
type SweeperConfig struct {
	Enabled             bool `yaml:"enabled"`
	TickIntervalSeconds int  `yaml:"tick_interval_seconds"`
}

// TickInterval returns the sweep interval as a duration
func (c SweeperConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalSeconds) * time.Second
}

// ArchiveConfig holds S3 transcript archival settings
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
	Region   string `yaml:"region"`
	Compress bool   `yaml:"compress"`
}

// AnalyticsConfig holds analytics event tracking settings
type AnalyticsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 3
	}
	if cfg.Database.TimeoutSeconds == 0 {
		cfg.Database.TimeoutSeconds = 15
	}
	cfg.Engine.applyDefaults()
	if cfg.Sweeper.TickIntervalSeconds == 0 {
		cfg.Sweeper.TickIntervalSeconds = 60
	}
	if cfg.Archive.S3Prefix == "" {
		cfg.Archive.S3Prefix = "supportbot/transcripts/"
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "us-east-1"
	}

	return &cfg, nil
}

func (e *EngineConfig) applyDefaults() {
	if e.KeywordWeight == 0 {
		e.KeywordWeight = 0.1
	}
	if e.PatternWeight == 0 {
		e.PatternWeight = 0.3
	}
	if e.DefaultConfidence == 0 {
		e.DefaultConfidence = 0.3
	}
	if e.FlowConfidence == 0 {
		e.FlowConfidence = 0.9
	}
	if e.ProactiveConfidence == 0 {
		e.ProactiveConfidence = 0.8
	}
	if e.FallbackConfidence == 0 {
		e.FallbackConfidence = 0.5
	}
	if e.ProactiveIdleMinutes == 0 {
		e.ProactiveIdleMinutes = 5
	}
	if e.SessionTTLMinutes == 0 {
		e.SessionTTLMinutes = 240
	}
	if e.SentimentCacheSize == 0 {
		e.SentimentCacheSize = 4096
	}
	if e.MaxSuggestions == 0 {
		e.MaxSuggestions = 3
	}
	if e.EmpathyThreshold == 0 {
		e.EmpathyThreshold = 0.7
	}
}

// DefaultEngineConfig returns engine defaults without reading a file.
func DefaultEngineConfig() EngineConfig {
	var e EngineConfig
	e.applyDefaults()
	return e
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.Auth.Token = v
		cfg.Auth.Enabled = true
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
		if !cfg.Database.Enabled {
			cfg.Database.Enabled = true
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
		cfg.Archive.Enabled = true
	}
	if v := os.Getenv("ARCHIVE_S3_REGION"); v != "" {
		cfg.Archive.Region = v
	}

	return cfg, nil
}
