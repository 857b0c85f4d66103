package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Auth   AuthConfig
	GNS    GNSConfig
	S3     S3Config
	Email  EmailConfig
	Log    LogConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// AuthConfig points the ESF service at the auth service.
// An empty URL makes the ESF service validate tokens itself.
type AuthConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GNSConfig holds the external tax gateway endpoint and the fixed header set
// sent on every call.
type GNSConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	SubmitPath    string        `mapstructure:"submit_path"`
	FetchPath     string        `mapstructure:"fetch_path"`
	UpdatePath    string        `mapstructure:"update_path"`
	DeletePath    string        `mapstructure:"delete_path"`
	XRoadClient   string        `mapstructure:"x_road_client"`
	ClientUUID    string        `mapstructure:"client_uuid"`
	Authorization string        `mapstructure:"authorization"`
	UserTIN       string        `mapstructure:"user_tin"`
	ExchangeCode  string        `mapstructure:"exchange_code"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// S3Config holds the archive bucket settings. An empty bucket disables archiving.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// EmailConfig holds failure notification settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	NotifyAddress string `mapstructure:"notify_address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the ESF_ prefix.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("ESF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8002")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "esf_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "24h")
	v.SetDefault("jwt.issuer", "esf-auth")

	// Auth client defaults
	v.SetDefault("auth.url", "")
	v.SetDefault("auth.timeout", "5s")

	// GNS defaults
	v.SetDefault("gns.base_url", "http://localhost:8003")
	v.SetDefault("gns.submit_path", "/gns/receive")
	v.SetDefault("gns.fetch_path", "/gns/receive")
	v.SetDefault("gns.update_path", "/gns/receive")
	v.SetDefault("gns.delete_path", "/gns/receive")
	v.SetDefault("gns.x_road_client", "")
	v.SetDefault("gns.client_uuid", "")
	v.SetDefault("gns.authorization", "")
	v.SetDefault("gns.user_tin", "")
	v.SetDefault("gns.exchange_code", "")
	v.SetDefault("gns.timeout", "10s")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "esf")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@esf.local")
	v.SetDefault("email.from_name", "ESF Service")
	v.SetDefault("email.notify_address", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "ESF_SERVER_PORT",
		"server.read_timeout":  "ESF_SERVER_READ_TIMEOUT",
		"server.write_timeout": "ESF_SERVER_WRITE_TIMEOUT",
		"server.environment":   "ESF_SERVER_ENVIRONMENT",
		"db.host":              "ESF_DB_HOST",
		"db.port":              "ESF_DB_PORT",
		"db.user":              "ESF_DB_USER",
		"db.password":          "ESF_DB_PASSWORD",
		"db.name":              "ESF_DB_NAME",
		"db.sslmode":           "ESF_DB_SSLMODE",
		"db.max_open":          "ESF_DB_MAX_OPEN",
		"db.max_idle":          "ESF_DB_MAX_IDLE",
		"jwt.secret":           "ESF_JWT_SECRET",
		"jwt.access_expiry":    "ESF_JWT_ACCESS_EXPIRY",
		"jwt.issuer":           "ESF_JWT_ISSUER",
		"auth.url":             "ESF_AUTH_URL",
		"auth.timeout":         "ESF_AUTH_TIMEOUT",
		"gns.base_url":         "ESF_GNS_BASE_URL",
		"gns.submit_path":      "ESF_GNS_SUBMIT_PATH",
		"gns.fetch_path":       "ESF_GNS_FETCH_PATH",
		"gns.update_path":      "ESF_GNS_UPDATE_PATH",
		"gns.delete_path":      "ESF_GNS_DELETE_PATH",
		"gns.x_road_client":    "ESF_GNS_X_ROAD_CLIENT",
		"gns.client_uuid":      "ESF_GNS_CLIENT_UUID",
		"gns.authorization":    "ESF_GNS_AUTHORIZATION",
		"gns.user_tin":         "ESF_GNS_USER_TIN",
		"gns.exchange_code":    "ESF_GNS_EXCHANGE_CODE",
		"gns.timeout":          "ESF_GNS_TIMEOUT",
		"s3.region":            "ESF_S3_REGION",
		"s3.bucket":            "ESF_S3_BUCKET",
		"s3.endpoint":          "ESF_S3_ENDPOINT",
		"s3.access_key":        "ESF_S3_ACCESS_KEY",
		"s3.secret_key":        "ESF_S3_SECRET_KEY",
		"s3.prefix":            "ESF_S3_PREFIX",
		"email.provider":       "ESF_EMAIL_PROVIDER",
		"email.region":         "ESF_EMAIL_REGION",
		"email.from_address":   "ESF_EMAIL_FROM_ADDRESS",
		"email.from_name":      "ESF_EMAIL_FROM_NAME",
		"email.notify_address": "ESF_EMAIL_NOTIFY_ADDRESS",
		"log.level":            "ESF_LOG_LEVEL",
		"log.format":           "ESF_LOG_FORMAT",
		"cors.allowed_origins": "ESF_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Container platforms set PORT; it wins unless ESF_SERVER_PORT is explicit.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ESF_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.Auth = AuthConfig{
		URL:     strings.TrimRight(v.GetString("auth.url"), "/"),
		Timeout: v.GetDuration("auth.timeout"),
	}
	cfg.GNS = GNSConfig{
		BaseURL:       strings.TrimRight(v.GetString("gns.base_url"), "/"),
		SubmitPath:    v.GetString("gns.submit_path"),
		FetchPath:     v.GetString("gns.fetch_path"),
		UpdatePath:    v.GetString("gns.update_path"),
		DeletePath:    v.GetString("gns.delete_path"),
		XRoadClient:   v.GetString("gns.x_road_client"),
		ClientUUID:    v.GetString("gns.client_uuid"),
		Authorization: v.GetString("gns.authorization"),
		UserTIN:       v.GetString("gns.user_tin"),
		ExchangeCode:  v.GetString("gns.exchange_code"),
		Timeout:       v.GetDuration("gns.timeout"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		FromName:      v.GetString("email.from_name"),
		NotifyAddress: v.GetString("email.notify_address"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	return cfg, nil
}

// URL joins the gateway base URL with one of the configured paths.
func (g *GNSConfig) URL(path string) string {
	if path == "" {
		return g.BaseURL
	}
	return g.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
