package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_RequiresAPIBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("FABTRACK_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without API_BASE_URL")
	}
	if !strings.Contains(err.Error(), "API_BASE_URL is required") {
		t.Errorf("error = %q, want to mention API_BASE_URL", err.Error())
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FABTRACK_CONFIG", "")
	t.Setenv("API_BASE_URL", "http://api.local/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://api.local" {
		t.Errorf("APIBaseURL = %q, want trailing slash trimmed", cfg.APIBaseURL)
	}
	if cfg.Port != "3210" {
		t.Errorf("Port = %q, want 3210", cfg.Port)
	}
	if cfg.Session.TTL != 12*time.Hour {
		t.Errorf("Session.TTL = %v, want 12h", cfg.Session.TTL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fabtrack.yaml")
	yml := `
api_base_url: http://from-yaml
port: "9000"
require_notes: true
session:
  ttl: 2h
database:
  driver: postgres
  host: db.internal
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FABTRACK_CONFIG", path)
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://from-yaml" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Port != "9100" {
		t.Errorf("Port = %q, env should override yaml", cfg.Port)
	}
	if !cfg.RequireNotes {
		t.Error("RequireNotes should come from yaml")
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want 2h", cfg.Session.TTL)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Host != "db.internal" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("FABTRACK_CONFIG", "")
	t.Setenv("API_BASE_URL", "http://api.local")
	t.Setenv("DB_DRIVER", "mongo")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
