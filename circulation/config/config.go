package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrReadConfig is returned when the config file exists but cannot be read or parsed.
	ErrReadConfig = errors.New("read config")
)

// Config is the complete librarian configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Circulation CirculationConfig `yaml:"circulation"`
	Fines       FinesConfig       `yaml:"fines"`
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Retry       RetryConfig       `yaml:"retry"`
	Log         LogConfig         `yaml:"log"`
	OTel        OTelConfig        `yaml:"otel"`
}

// StoreConfig selects the event store engine.
type StoreConfig struct {
	Driver      string `yaml:"driver" env:"LIBRARY_STORE_DRIVER" validate:"oneof=memory sqlite postgres"`
	SQLitePath  string `yaml:"sqlitePath" env:"LIBRARY_STORE_SQLITE_PATH" validate:"required_if=Driver sqlite"`
	PostgresDSN string `yaml:"postgresDSN" env:"LIBRARY_STORE_POSTGRES_DSN" validate:"required_if=Driver postgres"`
	ReplicaDSN  string `yaml:"replicaDSN" env:"LIBRARY_STORE_REPLICA_DSN"`
	Adapter     string `yaml:"adapter" env:"LIBRARY_STORE_ADAPTER" validate:"oneof=pgx sql sqlx"`
	TableName   string `yaml:"tableName" env:"LIBRARY_STORE_TABLE" validate:"required"`
	MaxConns    int32  `yaml:"maxConns" env:"LIBRARY_STORE_MAX_CONNS" validate:"gte=1"`
	MinConns    int32  `yaml:"minConns" env:"LIBRARY_STORE_MIN_CONNS" validate:"gte=0,ltefield=MaxConns"`
}

// CatalogConfig selects the catalog backend. DSN is a file path for sqlite.
type CatalogConfig struct {
	Driver     string `yaml:"driver" env:"LIBRARY_CATALOG_DRIVER" validate:"oneof=memory sqlite postgres"`
	DSN        string `yaml:"dsn" env:"LIBRARY_CATALOG_DSN" validate:"required_unless=Driver memory"`
	ImportFile string `yaml:"importFile" env:"LIBRARY_CATALOG_IMPORT_FILE"`
}

type CirculationConfig struct {
	LoanPeriodDays int `yaml:"loanPeriodDays" env:"LIBRARY_LOAN_PERIOD_DAYS" validate:"gte=1"`
	BorrowingLimit int `yaml:"borrowingLimit" env:"LIBRARY_BORROWING_LIMIT" validate:"gte=0"`
}

// FinesConfig is in whole currency units. MaxFine 0 means uncapped.
type FinesConfig struct {
	RatePerDay int64  `yaml:"ratePerDay" env:"LIBRARY_FINE_RATE_PER_DAY" validate:"gte=0"`
	MaxFine    int64  `yaml:"maxFine" env:"LIBRARY_FINE_MAX" validate:"gte=0"`
	Currency   string `yaml:"currency" env:"LIBRARY_FINE_CURRENCY" validate:"len=3,uppercase"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr" env:"LIBRARY_HTTP_ADDR" validate:"required"`
	CORSOrigins    []string      `yaml:"corsOrigins" env:"LIBRARY_HTTP_CORS_ORIGINS"`
	RateLimitRPS   float64       `yaml:"rateLimitRPS" env:"LIBRARY_HTTP_RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst int           `yaml:"rateLimitBurst" env:"LIBRARY_HTTP_RATE_LIMIT_BURST" validate:"gte=0"`
	ReadTimeout    time.Duration `yaml:"readTimeout" env:"LIBRARY_HTTP_READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout   time.Duration `yaml:"writeTimeout" env:"LIBRARY_HTTP_WRITE_TIMEOUT" validate:"gte=0"`
}

// AuthConfig gates the admin routes. The secret is required unless auth is disabled.
type AuthConfig struct {
	Disabled          bool          `yaml:"disabled" env:"LIBRARY_AUTH_DISABLED"`
	JWTSecret         string        `yaml:"jwtSecret" env:"LIBRARY_JWT_SECRET" validate:"omitempty,min=16"`
	TokenTTL          time.Duration `yaml:"tokenTTL" env:"LIBRARY_TOKEN_TTL" validate:"gt=0"`
	AdminPasswordHash string        `yaml:"adminPasswordHash" env:"LIBRARY_ADMIN_PASSWORD_HASH"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts" env:"LIBRARY_RETRY_MAX_ATTEMPTS" validate:"gte=1"`
	BaseDelay   time.Duration `yaml:"baseDelay" env:"LIBRARY_RETRY_BASE_DELAY" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LIBRARY_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"LIBRARY_LOG_FORMAT" validate:"oneof=text json"`
}

type OTelConfig struct {
	Enabled     bool   `yaml:"enabled" env:"LIBRARY_OTEL_ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"LIBRARY_OTEL_ENDPOINT" validate:"required_if=Enabled true"`
	Insecure    bool   `yaml:"insecure" env:"LIBRARY_OTEL_INSECURE"`
	ServiceName string `yaml:"serviceName" env:"LIBRARY_OTEL_SERVICE_NAME" validate:"required"`
}

// Default returns a configuration that runs fully in memory with auth disabled.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:    DriverMemory,
			Adapter:   AdapterPGX,
			TableName: "events",
			MaxConns:  8,
			MinConns:  2,
		},
		Catalog: CatalogConfig{
			Driver: DriverMemory,
		},
		Circulation: CirculationConfig{
			LoanPeriodDays: 14,
			BorrowingLimit: 3,
		},
		Fines: FinesConfig{
			RatePerDay: 5,
			MaxFine:    500,
			Currency:   "INR",
		},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Auth: AuthConfig{
			Disabled: true,
			TokenTTL: 8 * time.Hour,
		},
		Retry: RetryConfig{
			MaxAttempts: 6,
			BaseDelay:   10 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OTel: OTelConfig{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "librarian",
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when path is empty),
// the given .env files and the process environment, in that order.
// Missing .env files are ignored, a missing YAML file is an error.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Join(ErrReadConfig, err)
		}

		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Join(ErrReadConfig, fmt.Errorf("parse %s: %w", path, err))
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, errors.Join(ErrReadConfig, err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the struct rules plus the rules that span sections.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	if !c.Auth.Disabled && c.Auth.JWTSecret == "" {
		return errors.Join(ErrInvalidConfig, errors.New("auth.jwtSecret is required when auth is enabled"))
	}

	return nil
}

// FinePolicy converts the fines section.
func (c Config) FinePolicy() core.FinePolicy {
	return core.FinePolicy{
		RatePerDay: core.Amount(c.Fines.RatePerDay),
		MaxFine:    core.Amount(c.Fines.MaxFine),
	}
}
