package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix            = "LEGALPRO"
	defaultHTTPAddress   = "0.0.0.0:5000"
	defaultDatabaseDSN   = "legalpro.db"
	defaultLogLevel      = "info"
	defaultTokenTTL      = 7 * 24 * time.Hour
	defaultAppBaseURL    = "http://localhost:8080"
	defaultUploadsDir    = "uploads"
	defaultSMTPPort      = 587
	defaultMinioBucket   = "legalpro-documents"
	defaultAllowedOrigin = "http://localhost:8080"
	defaultTimeZone      = "UTC"

	// DatabaseDriverSQLite selects the embedded pure-Go SQLite driver.
	DatabaseDriverSQLite = "sqlite"
	// DatabaseDriverPostgres selects the PostgreSQL driver.
	DatabaseDriverPostgres = "postgres"

	// StorageDriverDisk keeps uploads in a flat local directory.
	StorageDriverDisk = "disk"
	// StorageDriverMinio keeps uploads in an S3-compatible bucket.
	StorageDriverMinio = "minio"
)

// SMTPConfig describes the outbound mail relay. An empty host disables mail delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// MinioConfig describes the S3-compatible bucket used when storage.driver is minio.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress      string
	DatabaseDriver   string
	DatabaseDSN      string
	SigningSecret    string
	TokenTTL         time.Duration
	CookieSecure     bool
	ExposeResetToken bool
	AppBaseURL       string
	AllowedOrigins   []string
	SMTP             SMTPConfig
	UploadsDir       string
	StorageDriver    string
	Minio            MinioConfig
	RedisURL         string
	LogLevel         string
	// CalendarLocation is the wall clock hearing times are read in.
	CalendarLocation *time.Location
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.driver", DatabaseDriverSQLite)
	configViper.SetDefault("database.dsn", defaultDatabaseDSN)
	configViper.SetDefault("auth.token_ttl", defaultTokenTTL)
	configViper.SetDefault("auth.cookie_secure", false)
	configViper.SetDefault("auth.expose_reset_token", false)
	configViper.SetDefault("app.base_url", defaultAppBaseURL)
	configViper.SetDefault("cors.allowed_origins", []string{defaultAllowedOrigin})
	configViper.SetDefault("smtp.port", defaultSMTPPort)
	configViper.SetDefault("smtp.from", "no-reply@legalpro.local")
	configViper.SetDefault("uploads.dir", defaultUploadsDir)
	configViper.SetDefault("storage.driver", StorageDriverDisk)
	configViper.SetDefault("storage.minio.bucket", defaultMinioBucket)
	configViper.SetDefault("storage.minio.use_ssl", true)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("scheduling.time_zone", defaultTimeZone)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:      configViper.GetString("http.address"),
		DatabaseDriver:   strings.ToLower(strings.TrimSpace(configViper.GetString("database.driver"))),
		DatabaseDSN:      configViper.GetString("database.dsn"),
		SigningSecret:    configViper.GetString("auth.signing_secret"),
		TokenTTL:         configViper.GetDuration("auth.token_ttl"),
		CookieSecure:     configViper.GetBool("auth.cookie_secure"),
		ExposeResetToken: configViper.GetBool("auth.expose_reset_token"),
		AppBaseURL:       strings.TrimRight(configViper.GetString("app.base_url"), "/"),
		AllowedOrigins:   configViper.GetStringSlice("cors.allowed_origins"),
		SMTP: SMTPConfig{
			Host:     configViper.GetString("smtp.host"),
			Port:     configViper.GetInt("smtp.port"),
			Username: configViper.GetString("smtp.username"),
			Password: configViper.GetString("smtp.password"),
			From:     configViper.GetString("smtp.from"),
		},
		UploadsDir:    configViper.GetString("uploads.dir"),
		StorageDriver: strings.ToLower(strings.TrimSpace(configViper.GetString("storage.driver"))),
		Minio: MinioConfig{
			Endpoint:  configViper.GetString("storage.minio.endpoint"),
			AccessKey: configViper.GetString("storage.minio.access_key"),
			SecretKey: configViper.GetString("storage.minio.secret_key"),
			Bucket:    configViper.GetString("storage.minio.bucket"),
			UseSSL:    configViper.GetBool("storage.minio.use_ssl"),
		},
		RedisURL: configViper.GetString("redis.url"),
		LogLevel: configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	timeZone := strings.TrimSpace(configViper.GetString("scheduling.time_zone"))
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		return AppConfig{}, fmt.Errorf("scheduling.time_zone %q: %w", timeZone, err)
	}
	cfg.CalendarLocation = location

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.DatabaseDriver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres:
	default:
		return fmt.Errorf("database.driver %q is not supported", c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.StorageDriver {
	case StorageDriverDisk:
		if strings.TrimSpace(c.UploadsDir) == "" {
			return fmt.Errorf("uploads.dir is required")
		}
	case StorageDriverMinio:
		if strings.TrimSpace(c.Minio.Endpoint) == "" || strings.TrimSpace(c.Minio.Bucket) == "" {
			return fmt.Errorf("storage.minio.endpoint and storage.minio.bucket are required")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.StorageDriver)
	}
	return nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c AppConfig) MailEnabled() bool {
	return strings.TrimSpace(c.SMTP.Host) != ""
}
