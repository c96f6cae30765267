// Package config loads service settings from an optional YAML file and the
// environment. Environment values win over file values.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	Version string `env:"BUILD_VERSION" envDefault:"dev"`

	DatabasePath  string `env:"DATABASE_PATH"`
	EncryptionKey string `env:"ENCRYPTION_KEY"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"./dist"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	FirebaseProjectID     string `env:"FIREBASE_PROJECT_ID"`
	FirebaseServiceJSON   string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseServiceBase64 string `env:"FIREBASE_SERVICE_ACCOUNT_BASE64"`
	DevPrincipal          string `env:"DEV_PRINCIPAL"`

	SuperAdminPrincipals []string `env:"SUPER_ADMIN_PRINCIPALS" envSeparator:","`
	CORSAllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	BackendConnectTimeout time.Duration `env:"BACKEND_CONNECT_TIMEOUT" envDefault:"10s"`
	QueryStaleTime        time.Duration `env:"QUERY_STALE_TIME" envDefault:"30s"`
	QueryFetchTimeout     time.Duration `env:"QUERY_FETCH_TIMEOUT" envDefault:"30s"`
	GateWait              time.Duration `env:"GATE_WAIT" envDefault:"2s"`

	SnapshotInterval  time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"0s"`
	SnapshotPrincipal string        `env:"SNAPSHOT_PRINCIPAL"`
}

// FileConfig is the YAML settings file
type FileConfig struct {
	SuperAdmins []string `yaml:"super_admins"`
	CORS        struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Snapshots struct {
		Principal string `yaml:"principal"`
	} `yaml:"snapshots"`
}

// LoadFile reads and parses a settings file
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file: %w", err)
	}
	return fc, nil
}

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.SuperAdminPrincipals = fc.SuperAdmins
		cfg.CORSAllowedOrigins = fc.CORS.AllowedOrigins
		cfg.SnapshotPrincipal = fc.Snapshots.Principal
		log.Printf("Loaded settings file %s", path)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.SuperAdminPrincipals = trimAll(cfg.SuperAdminPrincipals)
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default in production
func (c Config) Validate() error {
	if !c.IsDevelopment() {
		if c.SessionSecret == "" {
			return errors.New("SESSION_SECRET is required in production")
		}
		if c.EncryptionKey == "" {
			return errors.New("ENCRYPTION_KEY is required in production")
		}
		if c.DevPrincipal != "" {
			return errors.New("DEV_PRINCIPAL is not allowed in production")
		}
	}
	if c.SnapshotInterval > 0 && c.SnapshotPrincipal == "" {
		return errors.New("SNAPSHOT_PRINCIPAL is required when SNAPSHOT_INTERVAL is set")
	}
	return nil
}

// IsDevelopment reports whether the service runs outside production
func (c Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

// FirebaseCredentials returns the service account JSON, preferring the raw
// JSON variable over the base64 one. Nil means none was configured.
func (c Config) FirebaseCredentials() ([]byte, error) {
	if c.FirebaseServiceJSON != "" {
		return []byte(c.FirebaseServiceJSON), nil
	}
	if c.FirebaseServiceBase64 != "" {
		b, err := base64.StdEncoding.DecodeString(c.FirebaseServiceBase64)
		if err != nil {
			return nil, fmt.Errorf("decode FIREBASE_SERVICE_ACCOUNT_BASE64: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
