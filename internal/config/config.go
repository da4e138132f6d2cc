// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON file and environment
// variables (optionally loaded from a .env file).
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in Options.StorageDriver.
const (
	StorageS3         = "s3"
	StorageCloudinary = "cloudinary"
)

// Options holds the configuration values for the server.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Config is the path to the JSON config file.
	Config string `env:"CONFIG"`

	// JWTSecret signs access tokens (HS256).
	JWTSecret string `env:"JWT_SECRET"`
	// TokenTTL is the lifetime of a login session and its access token.
	TokenTTL time.Duration `env:"TOKEN_TTL"`

	// RedisURL enables rate limiting of register/login when set.
	RedisURL        string        `env:"REDIS_URL"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX"`

	// StorageDriver selects the object store: "s3", "cloudinary" or empty
	// to disable uploads.
	StorageDriver string `env:"STORAGE_DRIVER"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	// S3PublicURL is the base for public object URLs; defaults to
	// S3Endpoint/S3Bucket.
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	CloudinaryName      string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER"`

	// TLSCert and TLSKey switch the server to HTTPS when both are set.
	TLSCert string `env:"TLS_CERT"`
	TLSKey  string `env:"TLS_KEY"`

	// AllowedOrigins lists CORS origins for browser clients.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:","`
	// TrustProxy honours X-Forwarded-For and X-Real-IP from a reverse proxy.
	TrustProxy bool `env:"TRUST_PROXY"`

	// SessionCleanupInterval is how often expired sessions are purged.
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// LogLevel is the zap level name.
	LogLevel string `env:"LOG_LEVEL"`
}

// fileOptions mirrors Options for the JSON file, with durations written as
// strings such as "24h".
type fileOptions struct {
	Addr                   string   `json:"address"`
	DatabaseDSN            string   `json:"database_dsn"`
	JWTSecret              string   `json:"jwt_secret"`
	TokenTTL               string   `json:"token_ttl"`
	RedisURL               string   `json:"redis_url"`
	RateLimitWindow        string   `json:"rate_limit_window"`
	RateLimitMax           int      `json:"rate_limit_max"`
	StorageDriver          string   `json:"storage_driver"`
	S3Endpoint             string   `json:"s3_endpoint"`
	S3Region               string   `json:"s3_region"`
	S3Bucket               string   `json:"s3_bucket"`
	S3AccessKey            string   `json:"s3_access_key"`
	S3SecretKey            string   `json:"s3_secret_key"`
	S3PublicURL            string   `json:"s3_public_url"`
	CloudinaryName         string   `json:"cloudinary_cloud_name"`
	CloudinaryAPIKey       string   `json:"cloudinary_api_key"`
	CloudinaryAPISecret    string   `json:"cloudinary_api_secret"`
	CloudinaryFolder       string   `json:"cloudinary_folder"`
	TLSCert                string   `json:"tls_cert"`
	TLSKey                 string   `json:"tls_key"`
	AllowedOrigins         []string `json:"allowed_origins"`
	TrustProxy             bool     `json:"trust_proxy"`
	SessionCleanupInterval string   `json:"session_cleanup_interval"`
	ShutdownTimeout        string   `json:"shutdown_timeout"`
	LogLevel               string   `json:"log_level"`
}

// Parse reads the process flags, the JSON config file and the environment.
// Sources are applied in that order, later ones winning.
func Parse() (*Options, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return ParseArgs(os.Args[1:])
}

// ParseArgs is Parse with explicit arguments.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.JWTSecret, "s", "dev-secret-change-me", "jwt signing secret")
	fs.DurationVar(&options.TokenTTL, "ttl", 24*time.Hour, "session lifetime")
	fs.StringVar(&options.RedisURL, "r", "", "redis url for rate limiting")
	fs.DurationVar(&options.RateLimitWindow, "rate-window", time.Minute, "rate limit window")
	fs.IntVar(&options.RateLimitMax, "rate-max", 10, "requests per window on auth routes")
	fs.StringVar(&options.StorageDriver, "storage", "", "object storage driver: s3 | cloudinary")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to server TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to server TLS key")
	fs.BoolVar(&options.TrustProxy, "trust-proxy", false, "take client addresses from proxy headers")
	fs.DurationVar(&options.SessionCleanupInterval, "cleanup", time.Hour, "expired session cleanup interval")
	fs.DurationVar(&options.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	fs.StringVar(&options.LogLevel, "log", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.S3Region = "us-east-1"
	options.CloudinaryFolder = "twohearts"

	// CONFIG has to be known before the file is read.
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			if err := applyFile(options, options.Config); err != nil {
				return nil, err
			}
		}
	}

	if err := cleanenv.ReadEnv(options); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func applyFile(o *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	setString(&o.Addr, f.Addr)
	setString(&o.DatabaseDSN, f.DatabaseDSN)
	setString(&o.JWTSecret, f.JWTSecret)
	setString(&o.RedisURL, f.RedisURL)
	setString(&o.StorageDriver, f.StorageDriver)
	setString(&o.S3Endpoint, f.S3Endpoint)
	setString(&o.S3Region, f.S3Region)
	setString(&o.S3Bucket, f.S3Bucket)
	setString(&o.S3AccessKey, f.S3AccessKey)
	setString(&o.S3SecretKey, f.S3SecretKey)
	setString(&o.S3PublicURL, f.S3PublicURL)
	setString(&o.CloudinaryName, f.CloudinaryName)
	setString(&o.CloudinaryAPIKey, f.CloudinaryAPIKey)
	setString(&o.CloudinaryAPISecret, f.CloudinaryAPISecret)
	setString(&o.CloudinaryFolder, f.CloudinaryFolder)
	setString(&o.TLSCert, f.TLSCert)
	setString(&o.TLSKey, f.TLSKey)
	setString(&o.LogLevel, f.LogLevel)
	if f.RateLimitMax > 0 {
		o.RateLimitMax = f.RateLimitMax
	}
	if len(f.AllowedOrigins) > 0 {
		o.AllowedOrigins = f.AllowedOrigins
	}
	if f.TrustProxy {
		o.TrustProxy = true
	}

	durations := []struct {
		dst *time.Duration
		raw string
		key string
	}{
		{&o.TokenTTL, f.TokenTTL, "token_ttl"},
		{&o.RateLimitWindow, f.RateLimitWindow, "rate_limit_window"},
		{&o.SessionCleanupInterval, f.SessionCleanupInterval, "session_cleanup_interval"},
		{&o.ShutdownTimeout, f.ShutdownTimeout, "shutdown_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the combinations that cannot work at runtime.
func (o *Options) Validate() error {
	if o.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if o.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	switch strings.ToLower(o.StorageDriver) {
	case "":
	case StorageS3:
		if o.S3Bucket == "" || o.S3Endpoint == "" {
			return fmt.Errorf("s3 storage needs S3_ENDPOINT and S3_BUCKET")
		}
	case StorageCloudinary:
		if o.CloudinaryName == "" || o.CloudinaryAPIKey == "" || o.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary storage needs cloud name, api key and api secret")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", o.StorageDriver)
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	return nil
}

// UseTLS reports whether the server should listen with HTTPS.
func (o *Options) UseTLS() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
