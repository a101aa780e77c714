package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevSessionSecret signs session cookies outside production when no
	// secret is configured.
	DevSessionSecret = "policymatcher-dev-session-secret"

	GuardAdmin         = "admin"
	GuardAuthenticated = "authenticated"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketReports string
	UseSSL        bool
	Region        string
}

type SecurityConfig struct {
	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookie     string
	SecureCookie      bool
	AdminEmail        string
	ProgramWriteGuard string
}

type AppSettings struct {
	BaseOrigin string
	PageSize   int
}

type QueueConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type JobsConfig struct {
	ReminderSpec  string
	IntegritySpec string
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Security    SecurityConfig
	App         AppSettings
	Queue       QueueConfig
	Jobs        JobsConfig
	Logging     LoggingConfig
}

// Load reads .env, config.yaml and POLICYMATCHER_* environment variables, in
// increasing order of precedence.
func Load() (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("POLICYMATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindPlainEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Security.ProgramWriteGuard {
	case GuardAdmin, GuardAuthenticated:
	default:
		return fmt.Errorf("security.programwriteguard: unknown policy %q", c.Security.ProgramWriteGuard)
	}
	if c.App.PageSize <= 0 {
		return fmt.Errorf("app.pagesize must be positive, got %d", c.App.PageSize)
	}
	if c.Queue.ClaimInterval <= 0 {
		return fmt.Errorf("queue.claiminterval must be positive, got %s", c.Queue.ClaimInterval)
	}
	if c.Security.SessionSecret == "" {
		if c.Environment == EnvProduction {
			return errors.New("security.sessionsecret is required in production")
		}
		c.Security.SessionSecret = DevSessionSecret
	}
	c.App.BaseOrigin = strings.TrimRight(c.App.BaseOrigin, "/")
	return nil
}

// PostgresDSN returns the configured DSN, or assembles one from the
// host/port/name/user/password keys.
func (c PostgresConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	return u.String()
}

// bindPlainEnv lets the unprefixed DB_* variables of a plain .env file select
// the database, next to the prefixed names.
func bindPlainEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"postgres.host":          "DB_HOST",
		"postgres.port":          "DB_PORT",
		"postgres.name":          "DB_NAME",
		"postgres.user":          "DB_USER",
		"postgres.password":      "DB_PASSWORD",
		"security.sessionsecret": "SESSION_SECRET",
		"security.adminemail":    "ADMIN_EMAIL",
	}
	for key, plain := range bindings {
		prefixed := "POLICYMATCHER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, plain); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.host", "db_postgresql")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.name", "main_db")
	v.SetDefault("postgres.user", "admin")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", false)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketreports", "policymatcher-reports")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.sessionsecret", "")
	v.SetDefault("security.sessionttl", "24h")
	v.SetDefault("security.sessioncookie", "pm_session")
	v.SetDefault("security.securecookie", false)
	v.SetDefault("security.adminemail", "")
	v.SetDefault("security.programwriteguard", GuardAdmin)

	v.SetDefault("app.baseorigin", "https://www.bizinfo.go.kr")
	v.SetDefault("app.pagesize", 10)

	v.SetDefault("queue.stream", "policymatcher:tasks")
	v.SetDefault("queue.group", "policymatcher-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.claiminterval", "30s")

	v.SetDefault("jobs.reminderspec", "0 0 * * * *")
	v.SetDefault("jobs.integrityspec", "0 30 3 * * *")

	v.SetDefault("logging.level", "info")
}
