package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
)

const (
	EnvPrefix = "TOYSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "TOYSTORE_APP_ENV"
	EnvLogLevel        = "TOYSTORE_LOG_LEVEL"
	EnvStorageDriver   = "TOYSTORE_STORAGE_DRIVER"
	EnvCartScope       = "TOYSTORE_CART_SCOPE"
	EnvDBDSN           = "TOYSTORE_DB_DSN"
	EnvRedisURL        = "TOYSTORE_REDIS_URL"
	EnvRedisAddr       = "TOYSTORE_REDIS_ADDR"
	EnvAuthVerifier    = "TOYSTORE_AUTH_VERIFIER"
	EnvAuthDelay       = "TOYSTORE_AUTH_SIMULATED_DELAY"
	EnvCatalogPath     = "TOYSTORE_CATALOG_PATH"
	EnvStorageKeySpace = "TOYSTORE_STORAGE_NAMESPACE"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Password PasswordConfig
	Catalog  CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TOYSTORE_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"TOYSTORE_LOG_LEVEL" default:"warn"`
	LogWarnStack bool   `envconfig:"TOYSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Driver    string `envconfig:"TOYSTORE_STORAGE_DRIVER" default:"sqlite"`
	CartScope string `envconfig:"TOYSTORE_CART_SCOPE" default:"shared"`
	Namespace string `envconfig:"TOYSTORE_STORAGE_NAMESPACE" default:"toystore"`
}

// DriverKind returns the parsed driver; Load has already validated it.
func (s StorageConfig) DriverKind() enums.StorageDriver {
	d, _ := enums.ParseStorageDriver(s.Driver)
	return d
}

// Scope returns the parsed cart scope; Load has already validated it.
func (s StorageConfig) Scope() enums.CartScope {
	scope, _ := enums.ParseCartScope(s.CartScope)
	return scope
}

type DBConfig struct {
	DSN         string `envconfig:"TOYSTORE_DB_DSN" default:"toystore.db"`
	AutoMigrate bool   `envconfig:"TOYSTORE_DB_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"TOYSTORE_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"TOYSTORE_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"TOYSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TOYSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TOYSTORE_REDIS_URL"`
	Address      string        `envconfig:"TOYSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"TOYSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TOYSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TOYSTORE_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"TOYSTORE_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"TOYSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TOYSTORE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"TOYSTORE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type AuthConfig struct {
	Verifier          string        `envconfig:"TOYSTORE_AUTH_VERIFIER" default:"simulated"`
	SimulatedDelay    time.Duration `envconfig:"TOYSTORE_AUTH_SIMULATED_DELAY" default:"1s"`
	MinPasswordLength int           `envconfig:"TOYSTORE_AUTH_MIN_PASSWORD_LENGTH" default:"1"`
}

// VerifierKind returns the parsed verifier kind; Load has already validated it.
func (a AuthConfig) VerifierKind() enums.VerifierKind {
	kind, _ := enums.ParseVerifierKind(a.Verifier)
	return kind
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TOYSTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TOYSTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TOYSTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TOYSTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TOYSTORE_ARGON_KEY_LEN" default:"32"`
}

type CatalogConfig struct {
	Path string `envconfig:"TOYSTORE_CATALOG_PATH"`
}

func (c *Config) validate() error {
	driver, err := enums.ParseStorageDriver(c.Storage.Driver)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvStorageDriver, err)
	}
	if _, err := enums.ParseCartScope(c.Storage.CartScope); err != nil {
		return fmt.Errorf("%s: %w", EnvCartScope, err)
	}
	if _, err := enums.ParseVerifierKind(c.Auth.Verifier); err != nil {
		return fmt.Errorf("%s: %w", EnvAuthVerifier, err)
	}
	if strings.TrimSpace(c.Storage.Namespace) == "" {
		return fmt.Errorf("%s must not be empty", EnvStorageKeySpace)
	}
	if c.Auth.SimulatedDelay < 0 {
		return fmt.Errorf("%s must not be negative", EnvAuthDelay)
	}
	if c.Auth.MinPasswordLength < 1 {
		c.Auth.MinPasswordLength = 1
	}

	switch driver {
	case enums.StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis driver", EnvRedisURL, EnvRedisAddr)
		}
	case enums.StorageDriverSQLite, enums.StorageDriverPostgres:
		if strings.TrimSpace(c.DB.DSN) == "" {
			return fmt.Errorf("%s is required for the %s driver", EnvDBDSN, driver)
		}
		if driver == enums.StorageDriverPostgres && c.DB.DSN == "toystore.db" {
			return fmt.Errorf("%s must be a postgres url for the postgres driver", EnvDBDSN)
		}
	}
	return nil
}
