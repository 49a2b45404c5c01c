package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	MongoURI       string
	MongoDatabase  string
	PostgresURI    string
	RedisURI       string
	JWTSecret      string
	IDTokenTTL     time.Duration
	EncryptionKey  string // base64 AES-256 key; journal content is stored in plaintext when empty
	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Host           string   // Raw HOST env (e.g. https://api.soloura.app)
	AllowedHost    string   // Hostname only for strict host check (production only)
	Environment    string   // ENV: production, development, etc.
	GeminiAPIKey   string
	GeminiModel    string
	Timezone       string // IANA zone used for day bucketing when a request carries none
	StoreBackend   string // mongo | memory
}

// Overlay is the subset of settings that may be tuned from a YAML file.
// Secrets and connection strings stay in the environment.
type Overlay struct {
	Port           string   `yaml:"port"`
	Timezone       string   `yaml:"timezone"`
	GeminiModel    string   `yaml:"gemini_model"`
	StoreBackend   string   `yaml:"store_backend"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	IDTokenTTL     string   `yaml:"id_token_ttl"`
}

// Load reads configuration from the environment. When CONFIG_FILE is set, the YAML
// overlay it names is applied on top.
func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	ttl, err := time.ParseDuration(getEnv("ID_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ID_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "soloura"),
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/soloura?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		IDTokenTTL:     ttl,
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		Host:           host,
		AllowedHost:    allowedHost,
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		Timezone:       getEnv("TIMEZONE", "Local"),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		overlay, err := LoadOverlay(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(overlay); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadOverlay reads a YAML overlay file.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &o, nil
}

// Apply copies every non-empty overlay value onto c.
func (c *Config) Apply(o *Overlay) error {
	if o == nil {
		return nil
	}
	if o.Port != "" {
		c.Port = o.Port
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.GeminiModel != "" {
		c.GeminiModel = o.GeminiModel
	}
	if o.StoreBackend != "" {
		c.StoreBackend = strings.ToLower(o.StoreBackend)
	}
	if len(o.AllowedOrigins) > 0 {
		c.AllowedOrigins = o.AllowedOrigins
	}
	if o.IDTokenTTL != "" {
		ttl, err := time.ParseDuration(o.IDTokenTTL)
		if err != nil {
			return fmt.Errorf("invalid id_token_ttl: %w", err)
		}
		c.IDTokenTTL = ttl
	}
	return nil
}

// Validate checks the settings that would otherwise fail late, at first use.
func (c *Config) Validate() error {
	var errs []error
	if c.StoreBackend != StoreMongo && c.StoreBackend != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreBackend))
	}
	if c.IDTokenTTL <= 0 {
		errs = append(errs, errors.New("ID_TOKEN_TTL must be positive"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE: %w", err))
	}
	if c.IsProduction() {
		if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
			errs = append(errs, errors.New("JWT_SECRET must be set in production"))
		}
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY must be set in production"))
		}
	}
	return errors.Join(errs...)
}

// Location returns the configured default zone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
