package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleYAML = `
name: walletmux
environment: staging
logging:
  level: warn
  format: json
bridge:
  port: 9000
preferred: [io.metamask, com.coinbase.wallet]
wallets:
  - name: Local Node
    url: http://127.0.0.1:8545
    rdns: org.local.node
    poll_interval: 2s
  - name: Fork
    uuid: 7b1f1f3e-0c1a-4a4e-9f57-1f2a3b4c5d6e
    url: http://127.0.0.1:8645
telemetry:
  enabled: true
  endpoint: collector:4318
`

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "walletmux.yml", sampleYAML)

	cfg, err := Load("walletmux", WithConfigFile(path), WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Debug {
		t.Errorf("expected staging without debug, got %q debug=%v", cfg.Environment, cfg.Debug)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.Bridge.Port != 9000 || cfg.Bridge.Host != "127.0.0.1" {
		t.Errorf("unexpected bridge addr %s", cfg.Bridge.Addr())
	}
	if len(cfg.Preferred) != 2 || cfg.Preferred[0] != "io.metamask" {
		t.Errorf("unexpected preferred %v", cfg.Preferred)
	}
	if len(cfg.Wallets) != 2 {
		t.Fatalf("expected 2 wallets, got %d", len(cfg.Wallets))
	}
	if cfg.Wallets[0].UUID == "" {
		t.Error("expected derived uuid")
	}
	if cfg.Wallets[0].PollInterval != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %s", cfg.Wallets[0].PollInterval)
	}
	if cfg.Wallets[1].UUID != "7b1f1f3e-0c1a-4a4e-9f57-1f2a3b4c5d6e" {
		t.Errorf("expected explicit uuid kept, got %s", cfg.Wallets[1].UUID)
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "collector:4318" {
		t.Errorf("unexpected telemetry %+v", cfg.Telemetry)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "walletmux.yml", sampleYAML)
	t.Setenv("WALLETMUX_BRIDGE_PORT", "9100")
	t.Setenv("WALLETMUX_LOGGING_LEVEL", "error")
	t.Setenv("WALLETMUX_PREFERRED", "io.rabby")

	cfg, err := Load("walletmux", WithConfigFile(path), WithFileSystem(&mockFS{files: map[string]bool{path: true}}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Bridge.Port != 9100 {
		t.Errorf("expected env port 9100, got %d", cfg.Bridge.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env level, got %s", cfg.Logging.Level)
	}
	if len(cfg.Preferred) != 1 || cfg.Preferred[0] != "io.rabby" {
		t.Errorf("expected env preferred list, got %v", cfg.Preferred)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "walletmux.yml", sampleYAML)
	envPath := writeFile(t, dir, ".env", "WALLETMUX_BRIDGE_HOST=0.0.0.0\n")
	t.Setenv("WALLETMUX_BRIDGE_HOST", "")
	os.Unsetenv("WALLETMUX_BRIDGE_HOST")

	cfg, err := Load("walletmux", WithConfigFile(path), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Bridge.Host != "0.0.0.0" {
		t.Errorf("expected host from .env, got %s", cfg.Bridge.Host)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		yaml    string
		errMsg  string
		missing bool
	}{
		{name: "missing file", missing: true, errMsg: "not found"},
		{name: "invalid environment", yaml: "environment: qa\n", errMsg: "config.environment"},
		{name: "wallet without url", yaml: "wallets:\n  - name: A\n", errMsg: "wallets[0].url"},
		{name: "duplicate wallet uuid", yaml: "wallets:\n  - {name: A, url: 'http://a:1'}\n  - {name: B, url: 'http://a:1'}\n", errMsg: "share uuid"},
		{name: "bad port", yaml: "bridge:\n  port: 70000\n", errMsg: "bridge.port"},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "missing.yml")
			if !tc.missing {
				path = writeFile(t, dir, strings.Repeat("c", i+1)+".yml", tc.yaml)
			}
			_, err := Load("walletmux", WithConfigFile(path))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestResolve(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config.yml":         true,
		"./cmd/walletmux/.env": true,
		".env":                 true,
	}}
	files := Resolve("walletmux", LoaderConfig{FileSystem: fs})
	if files.ConfigFile != "./config.yml" {
		t.Errorf("expected ./config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./cmd/walletmux/.env" {
		t.Errorf("expected service env file first, got %q", files.EnvFile)
	}

	explicit := Resolve("walletmux", LoaderConfig{FileSystem: fs, ConfigFile: "/etc/walletmux.yml"})
	if explicit.ConfigFile != "/etc/walletmux.yml" {
		t.Errorf("expected explicit path, got %q", explicit.ConfigFile)
	}

	empty := Resolve("walletmux", LoaderConfig{FileSystem: &mockFS{}})
	if empty.ConfigFile != "" || empty.EnvFile != "" {
		t.Errorf("expected nothing resolved, got %+v", empty)
	}
}

func TestServiceConfigDefaults(t *testing.T) {
	var c ServiceConfig
	c.ApplyDefaults()
	if c.Name != "walletmux" || c.Environment != "development" || !c.Debug {
		t.Errorf("unexpected defaults %+v", c)
	}
	if c.Logging.Level != "debug" || c.Logging.ServiceName != "walletmux" {
		t.Errorf("unexpected logging defaults %+v", c.Logging)
	}

	prod := ServiceConfig{Environment: "production"}
	prod.ApplyDefaults()
	if prod.Debug || prod.Logging.Level != "info" {
		t.Errorf("expected production defaults, got debug=%v level=%s", prod.Debug, prod.Logging.Level)
	}
}
