package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Identity  IdentityConfig
	Email     EmailConfig
	Storage   StorageConfig
	Scheduler SchedulerConfig
	Portal    PortalConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitMB           int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	ReminderKey string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token verification and access code hashing.
type AuthConfig struct {
	JWTSecret             string
	JWTIssuer             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// IdentityConfig covers the identity provider's user sync webhook.
type IdentityConfig struct {
	WebhookSecret string
}

// EmailConfig points at the transactional email API.
type EmailConfig struct {
	BaseURL        string
	APIKey         string
	From           string
	TimeoutSeconds int
	RetryCount     int
}

// Enabled reports whether outbound email is configured.
func (e EmailConfig) Enabled() bool {
	return e.BaseURL != "" && e.APIKey != ""
}

// StorageConfig selects the blob backend.
type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadMB           int
}

// SchedulerConfig holds cron expressions for background jobs.
type SchedulerConfig struct {
	Enabled           bool
	CleanupCron       string
	AccessCodeCron    string
	OutboxCron        string
	ReminderCron      string
	OutboxBatchSize   int
	OutboxMaxAttempts int
	OutboxBackoffSecs int
	JobTimeoutSeconds int
}

// PortalConfig carries domain settings.
type PortalConfig struct {
	Timezone             string
	PublicURL            string
	ReminderHourUTC      int
	FirstReminderMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "pebec-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitMB:           getEnvAsInt("HTTP_BODY_LIMIT_MB", 12),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("APP_NAME", "pebec-portal"),
			MaxConns:        maxConns,
			MinConns:        minConns,
			RunMigrations:   runMigrations,
			ConnMaxIdleSec:  connMaxIdle,
			ConnMaxLifeSec:  connMaxLife,
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			ReminderKey: getEnv("REDIS_REMINDER_KEY", "pebec:reminders:tickets"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			JWTIssuer:             os.Getenv("AUTH_JWT_ISSUER"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Identity: IdentityConfig{
			WebhookSecret: os.Getenv("IDENTITY_WEBHOOK_SECRET"),
		},
		Email: EmailConfig{
			BaseURL:        os.Getenv("EMAIL_API_BASE_URL"),
			APIKey:         os.Getenv("EMAIL_API_KEY"),
			From:           getEnv("EMAIL_FROM", "PEBEC <noreply@pebec.gov.ng>"),
			TimeoutSeconds: getEnvAsInt("EMAIL_TIMEOUT_SECONDS", 15),
			RetryCount:     getEnvAsInt("EMAIL_RETRY_COUNT", 2),
		},
		Storage: StorageConfig{
			Mode:                  getEnv("STORAGE_MODE", "local"),
			LocalBasePath:         getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			CloudConnectionString: os.Getenv("STORAGE_AZURE_CONNECTION_STRING"),
			CloudContainer:        getEnv("STORAGE_AZURE_CONTAINER", "pebec-uploads"),
			MaxUploadMB:           getEnvAsInt("STORAGE_MAX_UPLOAD_MB", 10),
		},
		Scheduler: SchedulerConfig{
			Enabled:           getEnvAsBool("SCHEDULER_ENABLED", true),
			CleanupCron:       getEnv("SCHEDULER_CLEANUP_CRON", "0 0 2 * * *"),
			AccessCodeCron:    getEnv("SCHEDULER_ACCESS_CODE_CRON", "0 0 0 1 * *"),
			OutboxCron:        getEnv("SCHEDULER_OUTBOX_CRON", "@every 15s"),
			ReminderCron:      getEnv("SCHEDULER_REMINDER_CRON", "@every 1m"),
			OutboxBatchSize:   getEnvAsInt("OUTBOX_BATCH_SIZE", 50),
			OutboxMaxAttempts: getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 8),
			OutboxBackoffSecs: getEnvAsInt("OUTBOX_BACKOFF_SECONDS", 30),
			JobTimeoutSeconds: getEnvAsInt("SCHEDULER_JOB_TIMEOUT_SECONDS", 120),
		},
		Portal: PortalConfig{
			Timezone:             getEnv("PORTAL_TIMEZONE", "Africa/Lagos"),
			PublicURL:            getEnv("PORTAL_PUBLIC_URL", "https://pebec.gov.ng"),
			ReminderHourUTC:      getEnvAsInt("PORTAL_REMINDER_HOUR_UTC", 9),
			FirstReminderMinutes: getEnvAsInt("PORTAL_FIRST_REMINDER_MINUTES", 2),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// JobTimeout bounds a single scheduled job run.
func (s SchedulerConfig) JobTimeout() time.Duration {
	if s.JobTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(s.JobTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
