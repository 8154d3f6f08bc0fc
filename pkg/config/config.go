package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
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
	Catalog       CatalogConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Housekeeping  HousekeepingConfig
	Metrics       MetricsConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EDELGUUR_APP_ENV" required:"true"`
	Port         string `envconfig:"EDELGUUR_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"EDELGUUR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EDELGUUR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"EDELGUUR_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"EDELGUUR_DB_DSN"`

	Host     string `envconfig:"EDELGUUR_DB_HOST"`
	Port     int    `envconfig:"EDELGUUR_DB_PORT" default:"5432"`
	User     string `envconfig:"EDELGUUR_DB_USER"`
	Password string `envconfig:"EDELGUUR_DB_PASSWORD"`
	Name     string `envconfig:"EDELGUUR_DB_NAME"`
	SSLMode  string `envconfig:"EDELGUUR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EDELGUUR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EDELGUUR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EDELGUUR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EDELGUUR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EDELGUUR_REDIS_URL"`
	Address      string        `envconfig:"EDELGUUR_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"EDELGUUR_REDIS_PASSWORD"`
	DB           int           `envconfig:"EDELGUUR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EDELGUUR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EDELGUUR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EDELGUUR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EDELGUUR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EDELGUUR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"EDELGUUR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"EDELGUUR_JWT_ISSUER" default:"edelguur"`
	ExpirationMinutes      int    `envconfig:"EDELGUUR_JWT_EXPIRATION_MINUTES" default:"10080"`
	RefreshTokenTTLMinutes int    `envconfig:"EDELGUUR_REFRESH_TOKEN_TTL_MINUTES" default:"20160"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EDELGUUR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EDELGUUR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EDELGUUR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EDELGUUR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EDELGUUR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"EDELGUUR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"EDELGUUR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"EDELGUUR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"EDELGUUR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"EDELGUUR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"EDELGUUR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool `envconfig:"EDELGUUR_AUTO_MIGRATE" default:"false"`
	DomainEvents bool `envconfig:"EDELGUUR_FEATURE_DOMAIN_EVENTS" default:"true"`
}

// CatalogConfig holds storefront listing knobs.
type CatalogConfig struct {
	PopularStatusID int64 `envconfig:"EDELGUUR_POPULAR_STATUS_ID" default:"3"`
	ShowcaseLimit   int   `envconfig:"EDELGUUR_SHOWCASE_LIMIT" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"EDELGUUR_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"EDELGUUR_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"EDELGUUR_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string        `envconfig:"EDELGUUR_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string        `envconfig:"EDELGUUR_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	UploadTimeout time.Duration `envconfig:"EDELGUUR_GCS_UPLOAD_TIMEOUT" default:"60s"`
}

type MediaConfig struct {
	MaxUploadMB   int `envconfig:"EDELGUUR_MAX_UPLOAD_MB" default:"10"`
	MaxFiles      int `envconfig:"EDELGUUR_MEDIA_MAX_FILES" default:"5"`
	ImageMaxWidth int `envconfig:"EDELGUUR_MEDIA_IMAGE_MAX_WIDTH" default:"1000"`
}

// MaxUploadBytes returns the per-request multipart limit.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"EDELGUUR_PUBSUB_DOMAIN_TOPIC" default:"edelguur-domain-events"`
	OrdersTopic string `envconfig:"EDELGUUR_PUBSUB_ORDERS_TOPIC" default:"edelguur-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"EDELGUUR_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"EDELGUUR_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"EDELGUUR_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// HousekeepingConfig drives the retention worker.
type HousekeepingConfig struct {
	IntervalMinutes     int `envconfig:"EDELGUUR_HOUSEKEEPING_INTERVAL_MINUTES" default:"60"`
	OutboxRetentionDays int `envconfig:"EDELGUUR_OUTBOX_RETENTION_DAYS" default:"30"`
	DLQRetentionDays    int `envconfig:"EDELGUUR_DLQ_RETENTION_DAYS" default:"90"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"EDELGUUR_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"EDELGUUR_METRICS_PATH" default:"/metrics"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"EDELGUUR_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// ensureDSN assembles a postgres URL from the discrete EDELGUUR_DB_* settings
// when no DSN is given.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	set := map[string]bool{EnvDBHost: db.Host != "", EnvDBUser: db.User != "", EnvDBName: db.Name != ""}
	var missing []string
	for _, env := range discreteDBEnvVars {
		if !set[env] {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.User),
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	db.DSN = u.String()
	return nil
}

// validate reports every inconsistent setting at once.
func (c *Config) validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}
	check(c.JWT.AccessTokenTTL() > 0, "%s must be positive", EnvJWTExpMins)
	check(c.JWT.RefreshTokenTTL() > c.JWT.AccessTokenTTL(), "%s must exceed %s", EnvRefreshTokenTTLMinutes, EnvJWTExpMins)
	check(c.Outbox.BatchSize > 0, "outbox batch size must be positive")
	check(c.Outbox.MaxAttempts > 0, "outbox max attempts must be positive")
	check(c.Housekeeping.OutboxRetentionDays > 0, "outbox retention days must be positive")
	check(c.Housekeeping.DLQRetentionDays > 0, "dlq retention days must be positive")
	check(c.Catalog.ShowcaseLimit > 0, "showcase limit must be positive")
	return err
}
