package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "BAKERY"

const defaultDSN = "host=localhost user=postgres password=postgres dbname=bakery port=5432 sslmode=disable TimeZone=UTC"

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Ledger LedgerConfig
}

type AppConfig struct {
	Env         string `envconfig:"BAKERY_APP_ENV" default:"development"`
	HTTPPort    string `envconfig:"BAKERY_HTTP_PORT" default:"8080"`
	LogLevel    string `envconfig:"BAKERY_LOG_LEVEL" default:"info"`
	Timezone    string `envconfig:"BAKERY_TIMEZONE" default:"Local"`
	CORSOrigins string `envconfig:"BAKERY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Location resolves the zone used to decide what "today" is for inventory entries.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type DBConfig struct {
	Driver          string        `envconfig:"BAKERY_DB_DRIVER" default:"postgres"`
	DSN             string        `envconfig:"BAKERY_DB_DSN"`
	MaxOpenConns    int           `envconfig:"BAKERY_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BAKERY_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BAKERY_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL             string        `envconfig:"BAKERY_REDIS_URL"`
	ProductCacheTTL time.Duration `envconfig:"BAKERY_PRODUCT_CACHE_TTL" default:"5m"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"BAKERY_JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"BAKERY_JWT_TTL" default:"24h"`
	// SecurityCode keeps older clients working: when set, a matching body code
	// is accepted in place of a manager token.
	SecurityCode string `envconfig:"BAKERY_SECURITY_CODE"`
}

type LedgerConfig struct {
	ChunkSize        int           `envconfig:"BAKERY_LEDGER_CHUNK_SIZE" default:"20"`
	TxTimeout        time.Duration `envconfig:"BAKERY_LEDGER_TX_TIMEOUT" default:"15s"`
	ReorderChunkSize int           `envconfig:"BAKERY_REORDER_CHUNK_SIZE" default:"25"`
}

// Load reads an optional .env file and then the BAKERY_* environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("BAKERY_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("BAKERY_JWT_SECRET must be at least 32 characters")
	}

	switch c.DB.Driver {
	case "postgres":
		if c.DB.DSN == "" {
			c.DB.DSN = defaultDSN
		}
	case "sqlite":
		if c.DB.DSN == "" {
			c.DB.DSN = "bakery.db"
		}
	default:
		return fmt.Errorf("unsupported BAKERY_DB_DRIVER %q", c.DB.Driver)
	}

	if c.Ledger.ChunkSize <= 0 {
		return errors.New("BAKERY_LEDGER_CHUNK_SIZE must be positive")
	}
	if c.Ledger.ReorderChunkSize <= 0 {
		return errors.New("BAKERY_REORDER_CHUNK_SIZE must be positive")
	}
	if c.Ledger.TxTimeout <= 0 {
		return errors.New("BAKERY_LEDGER_TX_TIMEOUT must be positive")
	}
	return nil
}

// UsingDefaultDSN reports whether the postgres DSN fell back to the local default.
func (c *Config) UsingDefaultDSN() bool {
	return c.DB.Driver == "postgres" && c.DB.DSN == defaultDSN
}

func (c *Config) CORSOrigins() string {
	parts := strings.Split(c.App.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}
