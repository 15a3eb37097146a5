package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "RBOS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "RBOS_DB_DSN"
	EnvDBHost = "RBOS_DB_HOST"
	EnvDBUser = "RBOS_DB_USER"
	EnvDBName = "RBOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	CartStore    CartStoreConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"RBOS_APP_ENV" required:"true"`
	Port         string   `envconfig:"RBOS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"RBOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"RBOS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"RBOS_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RBOS_DB_DSN"`
	Driver string `envconfig:"RBOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RBOS_DB_HOST"`
	LegacyPort     int    `envconfig:"RBOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RBOS_DB_USER"`
	LegacyPassword string `envconfig:"RBOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"RBOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"RBOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RBOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RBOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RBOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RBOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RBOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RBOS_REDIS_ADDR"`
	Password     string        `envconfig:"RBOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"RBOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RBOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RBOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RBOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RBOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RBOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig covers the identity collaborator's access tokens. The cart
// gateway only verifies and reads the subject claim; minting lives with
// the identity service and is exposed here for tests and dev tooling.
type JWTConfig struct {
	Secret            string `envconfig:"RBOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RBOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RBOS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GatewayConfig configures the client-side cart gateway (the storefront
// engine's HTTP client).
type GatewayConfig struct {
	BaseURL string        `envconfig:"RBOS_GATEWAY_BASE_URL"`
	Timeout time.Duration `envconfig:"RBOS_GATEWAY_TIMEOUT" default:"10s"`
}

// CartStoreConfig locates the durable slots used by the local cart store.
type CartStoreConfig struct {
	Dir string `envconfig:"RBOS_CART_STORE_DIR" default:".rbos"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RBOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RBOS_AUTO_MIGRATE" default:"false"`
	SeedMenu    bool `envconfig:"RBOS_SEED_MENU" default:"false"`
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
