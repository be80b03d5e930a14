package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string

	// DBPoolSize is the maximum number of concurrent database connections (default 10).
	DBPoolSize int
	// DBAcquireTimeout bounds one store round trip, including the wait for a pooled connection.
	DBAcquireTimeout time.Duration

	// Env is "dev" (default) or "prod".
	Env string

	// CredentialScheme is "plain" (default) or "bcrypt".
	CredentialScheme string

	// LoginRedirectURL is returned to the client after a successful login.
	LoginRedirectURL string

	// StaticDir, when set, is served at / for the browser pages.
	StaticDir string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// AuthRatePerMinute and AuthRateBurst limit /register and /login per client IP.
	AuthRatePerMinute int
	AuthRateBurst     int

	// MaxBodyBytes caps request bodies on POST routes.
	MaxBodyBytes int64
}

// Load reads the environment. A .env file in the working directory, if any,
// is applied first without overriding variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "3000"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBName:    getEnv("DB_NAME", "accounts"),
		DBUser:    getEnv("DB_USER", "accounts"),
		DBPass:    getEnv("DB_PASSWORD", getEnv("DB_PASS", "")),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		DBPoolSize:       getEnvInt("DB_POOL_SIZE", 10),
		DBAcquireTimeout: getEnvDuration("DB_ACQUIRE_TIMEOUT", 5*time.Second),

		Env:              getEnv("ENV", "dev"),
		CredentialScheme: getEnv("CREDENTIAL_SCHEME", "plain"),
		LoginRedirectURL: getEnv("LOGIN_REDIRECT_URL", "/welcome.html"),
		StaticDir:        getEnv("STATIC_DIR", ""),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		AuthRatePerMinute: getEnvInt("AUTH_RATE_PER_MINUTE", 10),
		AuthRateBurst:     getEnvInt("AUTH_RATE_BURST", 5),

		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.CredentialScheme != "plain" && c.CredentialScheme != "bcrypt" {
		errs = append(errs, fmt.Errorf("CREDENTIAL_SCHEME must be plain or bcrypt, got %q", c.CredentialScheme))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.Env == "prod" && c.DBPass == "" {
		errs = append(errs, errors.New("DB_PASSWORD must be set in prod"))
	}
	return errors.Join(errs...)
}

// TLSEnabled reports whether the API should serve HTTPS.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
