package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets keys for the duration of the test. t.Setenv registers the
// restore before the variable is removed.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unsetenv %s: %v", k, err)
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.Host != "" {
		t.Fatalf("expected empty host, got %q", cfg.Host)
	}
	if cfg.Addr() != ":3000" {
		t.Fatalf("expected addr :3000, got %q", cfg.Addr())
	}
	if cfg.ReadHeaderTimeout != 2*time.Second {
		t.Errorf("expected ReadHeaderTimeout 2s, got %v", cfg.ReadHeaderTimeout)
	}
	if cfg.MaxHeaderBytes != 64<<10 {
		t.Errorf("expected MaxHeaderBytes 64KB, got %d", cfg.MaxHeaderBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid: %v", err)
	}
}

func TestLoadWithoutOverrides(t *testing.T) {
	clearEnv(t, EnvConfigFile, EnvHost, EnvPort)

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPortFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr string
	}{
		{"custom port", "8080", 8080, ""},
		{"ephemeral port", "0", 0, ""},
		{"not a number", "http", 0, "parse PORT"},
		{"out of range", "70000", 0, "out of range"},
		{"negative", "-1", 0, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, EnvConfigFile, EnvHost)
			t.Setenv(EnvPort, tt.value)

			cfg, err := Load(missingEnvFile(t))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Port != tt.want {
				t.Fatalf("expected port %d, got %d", tt.want, cfg.Port)
			}
		})
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t, EnvHost, EnvPort)
	path := writeFile(t, "config.yaml", `
host: "127.0.0.1"
port: 4000
read_timeout: 3s
shutdown_timeout: 1m
`)
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:4000" {
		t.Fatalf("expected 127.0.0.1:4000, got %q", cfg.Addr())
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Errorf("expected ReadTimeout 3s, got %v", cfg.ReadTimeout)
	}
	if cfg.ShutdownTimeout != time.Minute {
		t.Errorf("expected ShutdownTimeout 1m, got %v", cfg.ShutdownTimeout)
	}
	if cfg.WriteTimeout != Default().WriteTimeout {
		t.Errorf("expected WriteTimeout to keep its default, got %v", cfg.WriteTimeout)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	clearEnv(t, EnvHost)
	t.Setenv(EnvConfigFile, writeFile(t, "config.yaml", "port: 4000\n"))
	t.Setenv(EnvPort, "5000")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 5000 {
		t.Fatalf("expected PORT to win over the file, got %d", cfg.Port)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t, EnvConfigFile, EnvHost, EnvPort)
	envFile := writeFile(t, ".env", "PORT=6000\nHOST=localhost\n")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != "localhost:6000" {
		t.Fatalf("expected localhost:6000, got %q", cfg.Addr())
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t, EnvConfigFile, EnvHost)
	t.Setenv(EnvPort, "7000")
	envFile := writeFile(t, ".env", "PORT=6000\n")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 7000 {
		t.Fatalf("expected environment PORT 7000, got %d", cfg.Port)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "read config file",
		},
		{
			name:    "invalid yaml",
			path:    func(t *testing.T) string { return writeFile(t, "bad.yaml", "port: [1, 2\n") },
			wantErr: "parse config file",
		},
		{
			name:    "invalid duration",
			path:    func(t *testing.T) string { return writeFile(t, "bad.yaml", "read_timeout: soon\n") },
			wantErr: "parse config file",
		},
		{
			name:    "negative timeout",
			path:    func(t *testing.T) string { return writeFile(t, "neg.yaml", "write_timeout: -1s\n") },
			wantErr: "write_timeout must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, EnvHost, EnvPort)
			t.Setenv(EnvConfigFile, tt.path(t))

			_, err := Load(missingEnvFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
