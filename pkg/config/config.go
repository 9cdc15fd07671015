package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Pricing       PricingConfig
	Korapay       KorapayConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"LAUTECH_APP_ENV" required:"true"`
	Port         string `envconfig:"LAUTECH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LAUTECH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LAUTECH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LAUTECH_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LAUTECH_DB_DSN"`
	Driver string `envconfig:"LAUTECH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LAUTECH_DB_HOST"`
	LegacyPort     int    `envconfig:"LAUTECH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LAUTECH_DB_USER"`
	LegacyPassword string `envconfig:"LAUTECH_DB_PASSWORD"`
	LegacyName     string `envconfig:"LAUTECH_DB_NAME"`
	LegacySSLMode  string `envconfig:"LAUTECH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LAUTECH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LAUTECH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LAUTECH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LAUTECH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LAUTECH_REDIS_URL" required:"true"`
	Password     string        `envconfig:"LAUTECH_REDIS_PASSWORD"`
	DB           int           `envconfig:"LAUTECH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LAUTECH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LAUTECH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LAUTECH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LAUTECH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LAUTECH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LAUTECH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LAUTECH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LAUTECH_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LAUTECH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LAUTECH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LAUTECH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LAUTECH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LAUTECH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LAUTECH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LAUTECH_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LAUTECH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LAUTECH_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LAUTECH_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LAUTECH_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate     bool `envconfig:"LAUTECH_AUTO_MIGRATE" default:"false"`
	AllowSimulation bool `envconfig:"LAUTECH_ALLOW_PAYMENT_SIMULATION" default:"false"`
}

type PricingConfig struct {
	TokenUnitPrice int    `envconfig:"LAUTECH_TOKEN_UNIT_PRICE" default:"1000"`
	InspectionFee  int    `envconfig:"LAUTECH_INSPECTION_FEE" default:"2000"`
	Currency       string `envconfig:"LAUTECH_CURRENCY" default:"NGN"`
}

type KorapayConfig struct {
	PublicKey     string `envconfig:"LAUTECH_KORAPAY_PUBLIC_KEY"`
	SecretKey     string `envconfig:"LAUTECH_KORAPAY_SECRET_KEY"`
	WebhookSecret string `envconfig:"LAUTECH_KORAPAY_WEBHOOK_SECRET"`
	CheckoutBase  string `envconfig:"LAUTECH_KORAPAY_CHECKOUT_BASE" default:"https://checkout.korapay.com/checkout"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LAUTECH_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"LAUTECH_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"LAUTECH_PUBSUB_DOMAIN_TOPIC" default:"rentals-domain-events"`
	DomainSubscription string `envconfig:"LAUTECH_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LAUTECH_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LAUTECH_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LAUTECH_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
