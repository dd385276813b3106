package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Report       ReportConfig
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
	if err := cfg.Report.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALESREPORT_APP_ENV" default:"dev"`
	Port         string `envconfig:"SALESREPORT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SALESREPORT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALESREPORT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SALESREPORT_DB_DSN"`
	Driver string `envconfig:"SALESREPORT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SALESREPORT_DB_HOST"`
	Port     int    `envconfig:"SALESREPORT_DB_PORT" default:"5432"`
	User     string `envconfig:"SALESREPORT_DB_USER"`
	Password string `envconfig:"SALESREPORT_DB_PASSWORD"`
	Name     string `envconfig:"SALESREPORT_DB_NAME"`
	SSLMode  string `envconfig:"SALESREPORT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALESREPORT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SALESREPORT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SALESREPORT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALESREPORT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// Configured reports whether enough settings exist to open a connection.
func (db DBConfig) Configured() bool {
	return db.DSN != ""
}

// IsSQLite reports whether the report store runs on the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SALESREPORT_REDIS_URL"`
	Address      string        `envconfig:"SALESREPORT_REDIS_ADDR"`
	Password     string        `envconfig:"SALESREPORT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALESREPORT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALESREPORT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALESREPORT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALESREPORT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALESREPORT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALESREPORT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was provided. The report cache is optional.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// ReportConfig holds the policy parameters for the seller report.
type ReportConfig struct {
	BonusFirstRate     decimal.Decimal `envconfig:"SALESREPORT_BONUS_FIRST_RATE" default:"0.15"`
	BonusTopThreeRate  decimal.Decimal `envconfig:"SALESREPORT_BONUS_TOP_THREE_RATE" default:"0.10"`
	BonusDefaultRate   decimal.Decimal `envconfig:"SALESREPORT_BONUS_DEFAULT_RATE" default:"0.05"`
	SkipInvalidRecords bool            `envconfig:"SALESREPORT_SKIP_INVALID_RECORDS" default:"false"`
	CacheTTL           time.Duration   `envconfig:"SALESREPORT_REPORT_CACHE_TTL" default:"1h"`
	SheetName          string          `envconfig:"SALESREPORT_XLSX_SHEET_NAME" default:"Sellers"`
	Retention          time.Duration   `envconfig:"SALESREPORT_REPORT_RETENTION" default:"720h"`
	RetentionInterval  time.Duration   `envconfig:"SALESREPORT_REPORT_RETENTION_INTERVAL" default:"24h"`
}

func (r ReportConfig) validate() error {
	rates := map[string]decimal.Decimal{
		EnvBonusFirstRate:    r.BonusFirstRate,
		EnvBonusTopThreeRate: r.BonusTopThreeRate,
		EnvBonusDefaultRate:  r.BonusDefaultRate,
	}
	for name, rate := range rates {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be between 0 and 1, got %s", name, rate)
		}
	}
	if r.Retention < 0 {
		return fmt.Errorf("%s must not be negative, got %s", EnvReportRetention, r.Retention)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SALESREPORT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		if db.Name == "" {
			return nil
		}
		db.DSN = db.Name
		return nil
	}
	if db.Host == "" && db.User == "" && db.Name == "" {
		// no store configured; commands that need one check Configured().
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
