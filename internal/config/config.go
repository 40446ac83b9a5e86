package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults
const (
	DefaultAddr          = ":8080"
	DefaultDBPath        = "bookclub.db"
	DefaultStaticDir     = "static"
	DefaultAppURL        = "https://tripleabookclub.com"
	DefaultEmailFrom     = "Triple A Book Club <noreply@tripleabookclub.com>"
	DefaultAdminEmail    = "admin@tripleabookclub.com"
	DefaultRateLimit     = 10
	DefaultSlowQueryMs   = 50
	DefaultSlowRequestMs = 200
)

// Config holds every runtime setting of the server.
type Config struct {
	Env           string
	Addr          string
	DBPath        string
	StaticDir     string
	AppURL        string
	SessionSecret []byte
	CSRFKey       []byte
	ResendAPIKey  string
	EmailFrom     string
	ReplyTo       string
	AdminEmail    string
	AdminPassword string
	RateLimit     int // requests per second per IP
	SlowQuery     time.Duration
	SlowRequest   time.Duration

	// GeneratedSecrets is true when session or CSRF secrets were generated
	// at boot because none were configured.
	GeneratedSecrets bool
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads an optional .env file, then the environment.
// PRE: none
// POST: Returns a validated Config or an error naming the first bad setting
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:           get("BOOKCLUB_ENV", EnvDevelopment),
		Addr:          get("BOOKCLUB_ADDR", DefaultAddr),
		DBPath:        get("BOOKCLUB_DB_PATH", DefaultDBPath),
		StaticDir:     get("BOOKCLUB_STATIC_DIR", DefaultStaticDir),
		AppURL:        get("BOOKCLUB_APP_URL", DefaultAppURL),
		ResendAPIKey:  getenv("RESEND_API_KEY"),
		EmailFrom:     get("BOOKCLUB_EMAIL_FROM", DefaultEmailFrom),
		ReplyTo:       getenv("BOOKCLUB_REPLY_TO"),
		AdminEmail:    get("BOOKCLUB_ADMIN_EMAIL", DefaultAdminEmail),
		AdminPassword: getenv("BOOKCLUB_ADMIN_PASSWORD"),
	}

	var err error
	if cfg.RateLimit, err = positiveInt(getenv, "BOOKCLUB_RATE_LIMIT", DefaultRateLimit); err != nil {
		return Config{}, err
	}
	ms, err := positiveInt(getenv, "BOOKCLUB_SLOW_QUERY_MS", DefaultSlowQueryMs)
	if err != nil {
		return Config{}, err
	}
	cfg.SlowQuery = time.Duration(ms) * time.Millisecond
	if ms, err = positiveInt(getenv, "BOOKCLUB_SLOW_REQUEST_MS", DefaultSlowRequestMs); err != nil {
		return Config{}, err
	}
	cfg.SlowRequest = time.Duration(ms) * time.Millisecond

	if secret := getenv("BOOKCLUB_SESSION_SECRET"); secret != "" {
		if len(secret) < 32 {
			return Config{}, errors.New("BOOKCLUB_SESSION_SECRET must be at least 32 characters")
		}
		cfg.SessionSecret = []byte(secret)
	} else if cfg.IsProduction() {
		return Config{}, errors.New("BOOKCLUB_SESSION_SECRET is required in production")
	} else {
		if cfg.SessionSecret, err = randomKey(); err != nil {
			return Config{}, err
		}
		cfg.GeneratedSecrets = true
	}

	if keyHex := getenv("BOOKCLUB_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return Config{}, errors.New("BOOKCLUB_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		cfg.CSRFKey = key
	} else if cfg.IsProduction() {
		return Config{}, errors.New("BOOKCLUB_CSRF_KEY is required in production")
	} else {
		if cfg.CSRFKey, err = randomKey(); err != nil {
			return Config{}, err
		}
		cfg.GeneratedSecrets = true
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction && cfg.Env != "test" {
		return Config{}, fmt.Errorf("BOOKCLUB_ENV must be development, production or test, got %q", cfg.Env)
	}
	return cfg, nil
}

func positiveInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func randomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}
