package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Backend  BackendConfig
	Identity IdentityConfig
	Lead     LeadConfig
	Server   ServerConfig
	Log      LogConfig
}

type BackendConfig struct {
	URL     string        `env:"LUSTBOT_BACKEND_URL" envDefault:"http://localhost:8000/lustbot"`
	Timeout time.Duration `env:"LUSTBOT_BACKEND_TIMEOUT" envDefault:"0s"`
	// Static bearer token. Ignored when OAuth client credentials are set.
	Token             string   `env:"LUSTBOT_BACKEND_TOKEN"`
	OAuthTokenURL     string   `env:"LUSTBOT_OAUTH_TOKEN_URL"`
	OAuthClientID     string   `env:"LUSTBOT_OAUTH_CLIENT_ID"`
	OAuthClientSecret string   `env:"LUSTBOT_OAUTH_CLIENT_SECRET"`
	OAuthScopes       []string `env:"LUSTBOT_OAUTH_SCOPES" envSeparator:","`
}

const (
	IdentityFile     = "file"
	IdentityMemory   = "memory"
	IdentityDatabase = "database"
)

type IdentityConfig struct {
	Store       string `env:"LUSTBOT_IDENTITY_STORE" envDefault:"file"`
	File        string `env:"LUSTBOT_IDENTITY_FILE"`
	DatabaseURL string `env:"DB_URL"`
	// MigrationsDir overrides the migrations compiled into the binary.
	MigrationsDir string `env:"LUSTBOT_MIGRATIONS_DIR"`
	// Profile scopes identities inside a shared database.
	Profile string `env:"LUSTBOT_PROFILE"`
}

type LeadConfig struct {
	PatternsFile string        `env:"LUSTBOT_LEAD_PATTERNS_FILE"`
	Delay        time.Duration `env:"LUSTBOT_LEAD_DELAY" envDefault:"1s"`
}

type ServerConfig struct {
	Port          string `env:"PORT" envDefault:"8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
	// Secure marks cookies Secure; enable behind HTTPS.
	SecureCookies bool `env:"LUSTBOT_SECURE_COOKIES" envDefault:"false"`
}

type LogConfig struct {
	Level string `env:"LUSTBOT_LOG_LEVEL" envDefault:"info"`
	File  string `env:"LUSTBOT_LOG_FILE"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Backend.URL = strings.TrimSpace(c.Backend.URL)
	if c.Backend.URL == "" {
		return fmt.Errorf("LUSTBOT_BACKEND_URL must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("invalid LUSTBOT_BACKEND_TIMEOUT %s", c.Backend.Timeout)
	}

	c.Identity.Store = strings.ToLower(strings.TrimSpace(c.Identity.Store))
	switch c.Identity.Store {
	case IdentityFile, IdentityMemory:
	case IdentityDatabase:
		if c.Identity.DatabaseURL == "" {
			return fmt.Errorf("LUSTBOT_IDENTITY_STORE=database requires DB_URL")
		}
	default:
		return fmt.Errorf("invalid LUSTBOT_IDENTITY_STORE %q: want file, memory or database", c.Identity.Store)
	}
	if c.Identity.File == "" {
		c.Identity.File = defaultIdentityFile()
	}
	if c.Identity.Profile == "" {
		c.Identity.Profile = defaultProfile()
	}

	port := strings.TrimSpace(c.Server.Port)
	if strings.Contains(port, " ") || port == "" {
		return fmt.Errorf("invalid PORT value: %q", c.Server.Port)
	}
	c.Server.Port = port
	return nil
}

// Addr is the web host listen address. PORT may be ":8080" or
// "127.0.0.1:8080" as well as a bare port.
func (s ServerConfig) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

func defaultIdentityFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "lustbot", "identity.json")
}

func defaultProfile() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "default"
}
