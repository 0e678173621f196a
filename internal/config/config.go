package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"checkout"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	RunOnce     bool   `env:"RUN_ONCE" envDefault:"false"`
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Buffer      BufferConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/checkout.db"`
}

type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	Name            string        `env:"DB_NAME" envDefault:"checkout"`
	User            string        `env:"DB_USER" envDefault:"checkout"`
	Password        string        `env:"DB_PASSWORD"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"DB_CONN_LIFETIME" envDefault:"1h"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED" envDefault:"false"`
	URL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type BufferConfig struct {
	Path         string        `env:"BOLTDB_PATH" envDefault:"./data/buffer.db"`
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"30s"`
	MaxRetry     int           `env:"MAX_RETRY_ATTEMPTS" envDefault:"3"`
	Retention    time.Duration `env:"BUFFER_RETENTION" envDefault:"24h"`
}

type ContextConfig struct {
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type LoggerConfig struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Encoding string `env:"LOG_ENCODING" envDefault:"json"`
}

type MigrationsConfig struct {
	Enabled bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	Path    string `env:"MIGRATIONS_PATH" envDefault:"./assets/migrations"`
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg.Database)
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Buffer.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive")
	}
	if c.Buffer.MaxRetry < 0 {
		return fmt.Errorf("MAX_RETRY_ATTEMPTS must not be negative")
	}
	return nil
}

func buildPostgresURL(db DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.SSLMode,
	)
}
