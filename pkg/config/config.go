package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "RETAILPULSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "RETAILPULSE_DB_DSN"
	EnvDBHost = "RETAILPULSE_DB_HOST"
	EnvDBUser = "RETAILPULSE_DB_USER"
	EnvDBName = "RETAILPULSE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Tax          TaxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Tax.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RETAILPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"RETAILPULSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RETAILPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RETAILPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RETAILPULSE_DB_DSN"`
	Driver string `envconfig:"RETAILPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RETAILPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"RETAILPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RETAILPULSE_DB_USER"`
	LegacyPassword string `envconfig:"RETAILPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"RETAILPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"RETAILPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RETAILPULSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RETAILPULSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RETAILPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RETAILPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RETAILPULSE_REDIS_URL"`
	Address      string        `envconfig:"RETAILPULSE_REDIS_ADDR"`
	Password     string        `envconfig:"RETAILPULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"RETAILPULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RETAILPULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RETAILPULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RETAILPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RETAILPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RETAILPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// TaxConfig carries the default rate used the first time a tax type is
// resolved with no persisted policy row.
type TaxConfig struct {
	DefaultGSTRate string `envconfig:"RETAILPULSE_TAX_DEFAULT_GST_RATE" default:"0.09"`
}

func (t TaxConfig) validate() error {
	rate, err := decimal.NewFromString(t.DefaultGSTRate)
	if err != nil {
		return fmt.Errorf("invalid default GST rate %q: %w", t.DefaultGSTRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("default GST rate cannot be negative")
	}
	return nil
}

// DefaultGSTRateDecimal returns the configured default rate. Load validates
// the raw string, so callers can rely on the parse succeeding.
func (t TaxConfig) DefaultGSTRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(t.DefaultGSTRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RETAILPULSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RETAILPULSE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
