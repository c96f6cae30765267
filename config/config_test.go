package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development by default")
	}

	durations := []struct {
		name     string
		got      time.Duration
		expected time.Duration
	}{
		{"BackendConnectTimeout", cfg.BackendConnectTimeout, 10 * time.Second},
		{"QueryStaleTime", cfg.QueryStaleTime, 30 * time.Second},
		{"GateWait", cfg.GateWait, 2 * time.Second},
		{"SnapshotInterval", cfg.SnapshotInterval, 0},
	}
	for _, d := range durations {
		if d.got != d.expected {
			t.Errorf("Expected %s %v, got %v", d.name, d.expected, d.got)
		}
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alumnihub.yaml")
	err := os.WriteFile(path, []byte(`
super_admins:
  - file-admin
cors:
  allowed_origins:
    - https://alumni.example.org
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUPER_ADMIN_PRINCIPALS", "env-admin-1, env-admin-2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !slices.Equal(cfg.SuperAdminPrincipals, []string{"env-admin-1", "env-admin-2"}) {
		t.Errorf("Expected env admins, got %v", cfg.SuperAdminPrincipals)
	}
	if !slices.Equal(cfg.CORSAllowedOrigins, []string{"https://alumni.example.org"}) {
		t.Errorf("Expected file origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("Expected SESSION_SECRET error, got %v", err)
	}

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("ENCRYPTION_KEY", "k3y")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("Expected production config")
	}
}

func TestSnapshotIntervalNeedsPrincipal(t *testing.T) {
	t.Setenv("SNAPSHOT_INTERVAL", "1h")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "SNAPSHOT_PRINCIPAL") {
		t.Errorf("Expected SNAPSHOT_PRINCIPAL error, got %v", err)
	}
}

func TestFirebaseCredentials(t *testing.T) {
	raw := `{"type":"service_account"}`

	testCases := []struct {
		name     string
		cfg      Config
		expected string
		wantErr  bool
	}{
		{"Base64 encoded", Config{FirebaseServiceBase64: base64.StdEncoding.EncodeToString([]byte(raw))}, raw, false},
		{"Raw JSON wins", Config{FirebaseServiceJSON: raw, FirebaseServiceBase64: "!!"}, raw, false},
		{"Bad base64", Config{FirebaseServiceBase64: "!!"}, "", true},
		{"Nothing configured", Config{}, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			creds, err := tc.cfg.FirebaseCredentials()
			if tc.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(creds) != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, creds)
			}
			if tc.expected == "" && creds != nil {
				t.Errorf("Expected nil credentials, got %q", creds)
			}
		})
	}
}
