package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskflow/internal/api"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.APIURL != api.DefaultBaseURL {
		t.Errorf("expected api url %q, got %q", api.DefaultBaseURL, cfg.APIURL)
	}
	if cfg.Timeout != api.DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", api.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Language != "en" || cfg.Demo || cfg.Color != ColorAuto {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if want := filepath.Join(dir, "session.json"); cfg.SessionPath() != want {
		t.Errorf("expected session path %q, got %q", want, cfg.SessionPath())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := "api_url: http://localhost:8080/api/\ntimeout: 3s\nlanguage: de\ndemo: true\ncolor: never\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Timeout)
	}
	if cfg.Language != "de" || !cfg.Demo || cfg.Color != ColorNever {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("language: de\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKFLOW_LANGUAGE", "ar")
	t.Setenv("TASKFLOW_API_URL", "http://example.test/api")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "ar" {
		t.Errorf("expected env language, got %q", cfg.Language)
	}
	if cfg.APIURL != "http://example.test/api" {
		t.Errorf("expected env api url, got %q", cfg.APIURL)
	}
}

func TestLoad_InvalidColor(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("color: rainbow\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid color")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("timeout: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}
