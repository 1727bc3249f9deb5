package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source kinds understood by the ingestion layer.
const (
	SourceNone  = "none"
	SourceHTTP  = "http"
	SourceRedis = "redis"
	SourceSQL   = "sql"
)

// defaultSQLQuery returns the ten newest rows, oldest first.
const defaultSQLQuery = "SELECT * FROM (SELECT message, type, device, created_at FROM device_logs ORDER BY created_at DESC LIMIT 10) recent ORDER BY created_at"

// Config represents the full runtime configuration tree.
type Config struct {
	App        AppConfig
	Tile       TileConfig
	Source     SourceConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Cors       CORSConfig
	Monitoring MonitoringConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	Name    string
	Env     string
	Version string
	Port    string
}

// TileConfig governs the log buffer and the rendered widget.
type TileConfig struct {
	Title           string
	Capacity        int
	RecentEntries   int
	RefreshInterval int
}

// SourceConfig describes the external log feed polled in the background.
type SourceConfig struct {
	Kind         string
	URL          string
	RedisKey     string
	SQLDriver    string
	SQLDSN       string
	SQLQuery     string
	PollInterval time.Duration
	FetchTimeout time.Duration
	RetryDelay   time.Duration
}

// RedisConfig stores redis connectivity info.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
}

// RateLimitConfig manages throttling parameters.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
	RedisPrefix       string
}

// CORSConfig declares cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// MonitoringConfig adds observability tunables.
type MonitoringConfig struct {
	PrometheusEnabled bool
	SentryDSN         string
	SentrySampleRate  float64
}

// Load reads from environment (optionally .env) and builds Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getenv("APP_NAME", "device-logs-tile"),
			Env:     getenv("APP_ENV", "production"),
			Version: getenv("APP_VERSION", "0.1.0"),
			Port:    getenv("PORT", "8080"),
		},
		Tile: TileConfig{
			Title:           getenv("TILE_TITLE", "Device Logs"),
			Capacity:        getInt("TILE_LOG_CAPACITY", 50),
			RecentEntries:   getInt("TILE_RECENT", 8),
			RefreshInterval: getInt("TILE_REFRESH_SECONDS", 10),
		},
		Source: SourceConfig{
			Kind:         strings.ToLower(getenv("SOURCE_KIND", SourceNone)),
			URL:          getenv("SOURCE_URL", ""),
			RedisKey:     getenv("SOURCE_REDIS_KEY", "device:logs"),
			SQLDriver:    strings.ToLower(getenv("SOURCE_SQL_DRIVER", "postgres")),
			SQLDSN:       getenv("SOURCE_SQL_DSN", ""),
			SQLQuery:     getenv("SOURCE_SQL_QUERY", defaultSQLQuery),
			PollInterval: getDuration("SOURCE_POLL_INTERVAL", 10*time.Second),
			FetchTimeout: getDuration("SOURCE_FETCH_TIMEOUT", 5*time.Second),
			RetryDelay:   getDuration("SOURCE_RETRY_DELAY", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Username: getenv("REDIS_USER", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TLS:      getBool("REDIS_TLS", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getInt("RATE_LIMIT_PER_MIN", 120),
			Burst:             getInt("RATE_LIMIT_BURST", 20),
			RedisPrefix:       getenv("RATE_LIMIT_PREFIX", "ratelimit"),
		},
		Cors: CORSConfig{
			AllowedOrigins:   splitAndTrim(getenv("CORS_ORIGINS", "")),
			AllowedMethods:   splitAndTrim(getenv("CORS_METHODS", "GET,POST,DELETE,OPTIONS")),
			AllowedHeaders:   splitAndTrim(getenv("CORS_HEADERS", "Content-Type,Accept,X-Requested-With,X-Request-ID")),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			SentryDSN:         getenv("SENTRY_DSN", ""),
			SentrySampleRate:  getFloat("SENTRY_SAMPLE_RATE", 0.2),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Tile.Capacity <= 0 {
		return fmt.Errorf("tile capacity must be positive, got %d", c.Tile.Capacity)
	}
	if c.Tile.RefreshInterval <= 0 {
		return fmt.Errorf("tile refresh interval must be positive, got %d", c.Tile.RefreshInterval)
	}
	switch c.Source.Kind {
	case SourceNone:
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("SOURCE_URL is required for http source")
		}
	case SourceRedis:
		if c.Redis.Addr == "" || c.Source.RedisKey == "" {
			return fmt.Errorf("REDIS_ADDR and SOURCE_REDIS_KEY are required for redis source")
		}
	case SourceSQL:
		if c.Source.SQLDSN == "" {
			return fmt.Errorf("SOURCE_SQL_DSN is required for sql source")
		}
		switch c.Source.SQLDriver {
		case "postgres", "mysql":
		default:
			return fmt.Errorf("unsupported sql driver %s", c.Source.SQLDriver)
		}
	default:
		return fmt.Errorf("unsupported source kind %s", c.Source.Kind)
	}
	if c.Source.Kind != SourceNone && (c.Source.PollInterval <= 0 || c.Source.FetchTimeout <= 0) {
		return fmt.Errorf("source poll interval and fetch timeout must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getDuration accepts Go duration strings ("30s") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
