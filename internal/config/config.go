package config

import (
	"os"
	"strconv"
)

// Placeholder values left behind when provisioning never ran. A DB host equal
// to one of these means "use the ephemeral backend".
const (
	DBHostPlaceholder    = "DB_HOST_PLACEHOLDER"
	DBHostUnprovisioned  = "YOUR_RDS_ENDPOINT"
	DBHostTestMode       = "TEST_MODE"
	EndpointPlaceholder  = "APP_TIER_ENDPOINT_PLACEHOLDER"
	RedisHostPlaceholder = "REDIS_HOST_PLACEHOLDER"
)

// DatabaseConfig holds the durable (Postgres) connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN builds the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// RedisConfig holds the ephemeral (Redis) connection parameters. Redis also
// backs the session flash store shared by both tiers.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 数据层与展示层共用配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    RedisConfig
	// DataTierEndpoint is the base URL the presentation tier calls.
	DataTierEndpoint string
	// FrontendURL is where the data tier redirects after a direct-mode write.
	FrontendURL string
	Debug       bool
	Log         struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment, resolving the data-tier
// endpoint and Redis host through the fallback chain
// (env var → SSM parameter store → local override file → localhost default).
func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", DBHostPlaceholder)
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "properties")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	redisHost := ResolveRedisHost()
	cfg.Redis.Addr = redisHost + ":" + getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.DataTierEndpoint = ResolveDataTierEndpoint()
	cfg.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:8081")

	cfg.Debug = getEnv("DEBUG", "false") == "true"
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

// DBHostIsSentinel reports whether the configured DB host is one of the fixed
// placeholder values that force the ephemeral backend.
func DBHostIsSentinel(host string) bool {
	switch host {
	case "", DBHostPlaceholder, DBHostUnprovisioned, DBHostTestMode:
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
