package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Classifier ClassifierConfig
	Bulk       BulkConfig
	Export     ExportConfig
	Email      EmailConfig
	Redis      RedisConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// RedisConfig holds the progress event bus settings. An empty Addr disables
// publishing.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// BulkConfig holds bulk upload settings.
type BulkConfig struct {
	MaxFileSizeMB   int64 `mapstructure:"max_file_size_mb"`
	CallTimeoutSecs int   `mapstructure:"call_timeout_secs"`
}

// CallTimeout returns the per-call bound for external calls made while
// processing a batch.
func (b *BulkConfig) CallTimeout() time.Duration {
	if b.CallTimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(b.CallTimeoutSecs) * time.Second
}

// ExportConfig holds training export settings.
type ExportConfig struct {
	PresignExpiry       int64 `mapstructure:"presign_expiry"`
	RecoveryPollSecs    int   `mapstructure:"recovery_poll_secs"`
	StaleAfterMins      int   `mapstructure:"stale_after_mins"`
	RecoveryConcurrency int   `mapstructure:"recovery_concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ClassifierEndpointConfig holds settings for a single classification service endpoint.
type ClassifierEndpointConfig struct {
	Name        string `mapstructure:"name"`
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Enabled reports whether the endpoint is configured.
func (c *ClassifierEndpointConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ClassifierConfig holds classification service settings.
type ClassifierConfig struct {
	Primary         ClassifierEndpointConfig `mapstructure:"primary"`
	Secondary       ClassifierEndpointConfig `mapstructure:"secondary"`
	RefineThreshold float64                  `mapstructure:"refine_threshold"`
}

// SecondaryConfig returns the secondary endpoint config, or nil if not configured.
func (c *ClassifierConfig) SecondaryConfig() *ClassifierEndpointConfig {
	if c.Secondary.Enabled() {
		return &c.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds access token verification settings. Tokens are issued by
// the identity service; this service only verifies them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FILEWISE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FILEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "filewise")
	v.SetDefault("db.password", "filewise_secret")
	v.SetDefault("db.name", "filewise_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "filewise")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "filewise-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Classifier defaults
	v.SetDefault("classifier.primary.name", "primary")
	v.SetDefault("classifier.primary.endpoint", "http://localhost:8090")
	v.SetDefault("classifier.primary.api_key", "")
	v.SetDefault("classifier.primary.model", "")
	v.SetDefault("classifier.primary.timeout_secs", 120)
	v.SetDefault("classifier.secondary.name", "secondary")
	v.SetDefault("classifier.secondary.endpoint", "")
	v.SetDefault("classifier.secondary.api_key", "")
	v.SetDefault("classifier.secondary.model", "")
	v.SetDefault("classifier.secondary.timeout_secs", 120)
	v.SetDefault("classifier.refine_threshold", 0.75)

	// Bulk upload defaults
	v.SetDefault("bulk.max_file_size_mb", 50)
	v.SetDefault("bulk.call_timeout_secs", 120)

	// Export defaults
	v.SetDefault("export.presign_expiry", 900)
	v.SetDefault("export.recovery_poll_secs", 60)
	v.SetDefault("export.stale_after_mins", 15)
	v.SetDefault("export.recovery_concurrency", 2)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@filewise.app")
	v.SetDefault("email.from_name", "Filewise")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "filewise:batch-progress")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "FILEWISE_SERVER_PORT",
		"server.read_timeout":               "FILEWISE_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "FILEWISE_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":           "FILEWISE_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":                "FILEWISE_SERVER_ENVIRONMENT",
		"db.host":                           "FILEWISE_DB_HOST",
		"db.port":                           "FILEWISE_DB_PORT",
		"db.user":                           "FILEWISE_DB_USER",
		"db.password":                       "FILEWISE_DB_PASSWORD",
		"db.name":                           "FILEWISE_DB_NAME",
		"db.sslmode":                        "FILEWISE_DB_SSLMODE",
		"db.max_open":                       "FILEWISE_DB_MAX_OPEN",
		"db.max_idle":                       "FILEWISE_DB_MAX_IDLE",
		"jwt.secret":                        "FILEWISE_JWT_SECRET",
		"jwt.issuer":                        "FILEWISE_JWT_ISSUER",
		"s3.region":                         "FILEWISE_S3_REGION",
		"s3.bucket":                         "FILEWISE_S3_BUCKET",
		"s3.endpoint":                       "FILEWISE_S3_ENDPOINT",
		"s3.access_key":                     "FILEWISE_S3_ACCESS_KEY",
		"s3.secret_key":                     "FILEWISE_S3_SECRET_KEY",
		"s3.presign_expiry":                 "FILEWISE_S3_PRESIGN_EXPIRY",
		"log.level":                         "FILEWISE_LOG_LEVEL",
		"log.format":                        "FILEWISE_LOG_FORMAT",
		"cors.allowed_origins":              "FILEWISE_CORS_ALLOWED_ORIGINS",
		"classifier.primary.name":           "FILEWISE_CLASSIFIER_PRIMARY_NAME",
		"classifier.primary.endpoint":       "FILEWISE_CLASSIFIER_PRIMARY_ENDPOINT",
		"classifier.primary.api_key":        "FILEWISE_CLASSIFIER_PRIMARY_API_KEY",
		"classifier.primary.model":          "FILEWISE_CLASSIFIER_PRIMARY_MODEL",
		"classifier.primary.timeout_secs":   "FILEWISE_CLASSIFIER_PRIMARY_TIMEOUT_SECS",
		"classifier.secondary.name":         "FILEWISE_CLASSIFIER_SECONDARY_NAME",
		"classifier.secondary.endpoint":     "FILEWISE_CLASSIFIER_SECONDARY_ENDPOINT",
		"classifier.secondary.api_key":      "FILEWISE_CLASSIFIER_SECONDARY_API_KEY",
		"classifier.secondary.model":        "FILEWISE_CLASSIFIER_SECONDARY_MODEL",
		"classifier.secondary.timeout_secs": "FILEWISE_CLASSIFIER_SECONDARY_TIMEOUT_SECS",
		"classifier.refine_threshold":       "FILEWISE_CLASSIFIER_REFINE_THRESHOLD",
		"bulk.max_file_size_mb":             "FILEWISE_BULK_MAX_FILE_SIZE_MB",
		"bulk.call_timeout_secs":            "FILEWISE_BULK_CALL_TIMEOUT_SECS",
		"export.presign_expiry":             "FILEWISE_EXPORT_PRESIGN_EXPIRY",
		"email.provider":                    "FILEWISE_EMAIL_PROVIDER",
		"email.region":                      "FILEWISE_EMAIL_REGION",
		"email.from_address":                "FILEWISE_EMAIL_FROM_ADDRESS",
		"email.from_name":                   "FILEWISE_EMAIL_FROM_NAME",
		"email.frontend_url":                "FILEWISE_EMAIL_FRONTEND_URL",
		"redis.addr":                        "FILEWISE_REDIS_ADDR",
		"redis.password":                    "FILEWISE_REDIS_PASSWORD",
		"redis.db":                          "FILEWISE_REDIS_DB",
		"redis.channel":                     "FILEWISE_REDIS_CHANNEL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FILEWISE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FILEWISE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Classifier = ClassifierConfig{
		Primary:         endpointConfig(v, "classifier.primary"),
		Secondary:       endpointConfig(v, "classifier.secondary"),
		RefineThreshold: v.GetFloat64("classifier.refine_threshold"),
	}
	if !cfg.Classifier.Primary.Enabled() {
		return nil, fmt.Errorf("classifier.primary.endpoint is required")
	}

	cfg.Bulk = BulkConfig{
		MaxFileSizeMB:   v.GetInt64("bulk.max_file_size_mb"),
		CallTimeoutSecs: v.GetInt("bulk.call_timeout_secs"),
	}
	cfg.Export = ExportConfig{
		PresignExpiry:       v.GetInt64("export.presign_expiry"),
		RecoveryPollSecs:    v.GetInt("export.recovery_poll_secs"),
		StaleAfterMins:      v.GetInt("export.stale_after_mins"),
		RecoveryConcurrency: v.GetInt("export.recovery_concurrency"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		Channel:  v.GetString("redis.channel"),
	}

	return cfg, nil
}

func endpointConfig(v *viper.Viper, prefix string) ClassifierEndpointConfig {
	return ClassifierEndpointConfig{
		Name:        v.GetString(prefix + ".name"),
		Endpoint:    strings.TrimRight(strings.TrimSpace(v.GetString(prefix+".endpoint")), "/"),
		APIKey:      v.GetString(prefix + ".api_key"),
		Model:       v.GetString(prefix + ".model"),
		TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
