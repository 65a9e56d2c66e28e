package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsErrNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "livetw.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	file := filepath.Join(t.TempDir(), "livetw.toml")
	contents := "flask_root = \"app\"\nlive_reload_port = 9001\n"
	if err := os.WriteFile(file, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FlaskRoot != "app" {
		t.Fatalf("flask_root = %q, want app", cfg.FlaskRoot)
	}
	if cfg.LiveReloadPort != 9001 {
		t.Fatalf("live_reload_port = %d, want 9001", cfg.LiveReloadPort)
	}
	if cfg.LiveReloadHost != DefaultLiveReloadHost {
		t.Fatalf("live_reload_host = %q, want default", cfg.LiveReloadHost)
	}
	if cfg.TemplatesGlob != DefaultTemplatesGlob {
		t.Fatalf("templates_glob = %q, want default", cfg.TemplatesGlob)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "livetw.toml")
	if err := os.WriteFile(file, []byte("flask_root = [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	file := filepath.Join(t.TempDir(), "livetw.toml")
	if err := os.WriteFile(file, []byte("live_reload_port = 70000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSaveRoundTrips(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "livetw.toml")

	cfg := Default()
	cfg.FlaskRoot = "web"
	cfg.LiveReloadPort = 4321
	cfg.FlaskExcludePattern = []string{"*/**/generated.py"}
	if err := cfg.Save(file); err != nil {
		t.Fatalf("save config: %v", err)
	}

	loaded, err := Load(file)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded.FlaskRoot != "web" || loaded.LiveReloadPort != 4321 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.FlaskExcludePattern) != 1 || loaded.FlaskExcludePattern[0] != "*/**/generated.py" {
		t.Fatalf("exclude patterns mismatch: %v", loaded.FlaskExcludePattern)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()

	if got := cfg.FullTailwindDev(); got != "src/static/.dev/tailwind_development.css" {
		t.Fatalf("FullTailwindDev = %q", got)
	}
	if got := cfg.FullTailwindProd(); got != "src/static/tailwind_production.css" {
		t.Fatalf("FullTailwindProd = %q", got)
	}
	if got := cfg.FullTemplatesGlob(); got != "src/templates/**/*.html" {
		t.Fatalf("FullTemplatesGlob = %q", got)
	}
	if got := cfg.FullLiveReloadFile(); got != "src/static/.dev/live_reload.js" {
		t.Fatalf("FullLiveReloadFile = %q", got)
	}
}
