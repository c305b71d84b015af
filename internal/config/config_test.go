package config

import (
	"os"
	"path/filepath"
	"testing"
)

// testOptions mirrors the daemon's Options shape.
type testOptions struct {
	Config string

	PollIntervalMs int      `toml:"registry.poll_interval_ms" env:"POLL_INTERVAL_MS"`
	WriteTimeoutMs int      `toml:"registry.write_timeout_ms" env:"WRITE_TIMEOUT_MS"`
	AuthUser       string   `toml:"auth.user" env:"AUTH_USER"`
	CorsOrigins    []string `toml:"server.cors_origins" env:"CORS_ORIGINS"`
	Debug          bool     `toml:"logging.debug" env:"DEBUG"`
	Dim            float64  `toml:"lights.dim" env:"DIM"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "busylightd.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeConfig(t, `
[registry]
poll_interval_ms = 2500
write_timeout_ms = 150

[auth]
user = "operator"

[server]
cors_origins = ["https://a.example", "https://b.example"]

[logging]
debug = true

[lights]
dim = 0.75
`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if opts.PollIntervalMs != 2500 {
		t.Errorf("PollIntervalMs = %d, want 2500", opts.PollIntervalMs)
	}
	if opts.AuthUser != "operator" {
		t.Errorf("AuthUser = %q", opts.AuthUser)
	}
	if len(opts.CorsOrigins) != 2 || opts.CorsOrigins[0] != "https://a.example" {
		t.Errorf("CorsOrigins = %v", opts.CorsOrigins)
	}
	if !opts.Debug {
		t.Error("Debug = false")
	}
	if opts.Dim != 0.75 {
		t.Errorf("Dim = %v", opts.Dim)
	}
}

func TestEnvOverridesTOML(t *testing.T) {
	path := writeConfig(t, "[registry]\npoll_interval_ms = 2500\n")

	t.Setenv(EnvPrefix+"POLL_INTERVAL_MS", "100")
	t.Setenv(EnvPrefix+"CORS_ORIGINS", "https://x.example, https://y.example")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatal(err)
	}

	if opts.PollIntervalMs != 100 {
		t.Errorf("PollIntervalMs = %d, want env override 100", opts.PollIntervalMs)
	}
	if len(opts.CorsOrigins) != 2 || opts.CorsOrigins[1] != "https://y.example" {
		t.Errorf("CorsOrigins = %v", opts.CorsOrigins)
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	opts := &testOptions{Config: "/nonexistent/busylightd.toml", PollIntervalMs: 42}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if opts.PollIntervalMs != 42 {
		t.Error("defaults clobbered for a missing file")
	}
}

func TestMalformedTOMLErrors(t *testing.T) {
	path := writeConfig(t, "this is not toml [[")
	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err == nil {
		t.Error("malformed TOML accepted")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := []struct{ in, want string }{
		{"PollIntervalMs", "poll-interval-ms"},
		{"Port", "port"},
		{"AuthUser", "auth-user"},
	}
	for _, tt := range tests {
		if got := fieldNameToFlag(tt.in); got != tt.want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
