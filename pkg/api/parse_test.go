package api

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearNodeEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBinary, EnvInstallScriptURL, EnvBaseDir} {
		t.Setenv(k, "")
	}
}

func TestLoadNodeConfig_Valid(t *testing.T) {
	clearNodeEnv(t)
	content := `
name: node-a
binary: /opt/gaianet/bin/gaianet
baseDir: /srv/gaianet
publicURLMarkers: ["https://", ".example.net"]
commands:
  start: "{{ .Binary }} start --local-only"
`
	dir := t.TempDir()
	f := filepath.Join(dir, "node.yaml")
	if err := os.WriteFile(f, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadNodeConfig(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "node-a" {
		t.Errorf("expected name node-a, got %q", cfg.Name)
	}
	if cfg.Binary != "/opt/gaianet/bin/gaianet" {
		t.Errorf("unexpected binary %q", cfg.Binary)
	}
	if cfg.InstallScriptURL != DefaultInstallScriptURL {
		t.Errorf("expected default install script URL, got %q", cfg.InstallScriptURL)
	}
	if cfg.ShellProfile != DefaultShellProfile {
		t.Errorf("expected default shell profile, got %q", cfg.ShellProfile)
	}
	if len(cfg.PublicURLMarkers) != 2 || cfg.PublicURLMarkers[1] != ".example.net" {
		t.Errorf("unexpected markers %v", cfg.PublicURLMarkers)
	}
	if cfg.Commands.Start == "" {
		t.Error("expected start command override to be loaded")
	}
	if cfg.FilePath != f {
		t.Errorf("expected FilePath=%q, got %q", f, cfg.FilePath)
	}
}

func TestLoadNodeConfig_Defaults(t *testing.T) {
	clearNodeEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadNodeConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Binary != DefaultBinary {
		t.Errorf("expected %q, got %q", DefaultBinary, cfg.Binary)
	}
	if cfg.BaseDir != filepath.Join(home, DefaultBaseDirName) {
		t.Errorf("unexpected base dir %q", cfg.BaseDir)
	}
	if len(cfg.PublicURLMarkers) != 2 || cfg.PublicURLMarkers[1] != DefaultDomainSuffix {
		t.Errorf("unexpected default markers %v", cfg.PublicURLMarkers)
	}
}

func TestLoadNodeConfig_EnvOverrides(t *testing.T) {
	clearNodeEnv(t)
	t.Setenv(EnvBinary, "/usr/local/bin/gaianet")
	t.Setenv(EnvInstallScriptURL, "https://mirror.example.com/install.sh")
	t.Setenv(EnvBaseDir, "/data/gaianet")

	cfg, err := LoadNodeConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Binary != "/usr/local/bin/gaianet" {
		t.Errorf("unexpected binary %q", cfg.Binary)
	}
	if cfg.InstallScriptURL != "https://mirror.example.com/install.sh" {
		t.Errorf("unexpected install URL %q", cfg.InstallScriptURL)
	}
	if cfg.BaseDir != "/data/gaianet" {
		t.Errorf("unexpected base dir %q", cfg.BaseDir)
	}
}

func TestLoadNodeConfig_TildeBaseDir(t *testing.T) {
	clearNodeEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvBaseDir, "~/nodes/gaianet")

	cfg, err := LoadNodeConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseDir != filepath.Join(home, "nodes", "gaianet") {
		t.Errorf("unexpected base dir %q", cfg.BaseDir)
	}
}

func TestLoadNodeConfig_FileNotFound(t *testing.T) {
	_, err := LoadNodeConfig("/nonexistent/node.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading node config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadNodeConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "node.yaml")
	if err := os.WriteFile(f, []byte("name: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadNodeConfig(f)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing node config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadNodeConfig_ValidationFails(t *testing.T) {
	clearNodeEnv(t)
	dir := t.TempDir()
	f := filepath.Join(dir, "node.yaml")
	if err := os.WriteFile(f, []byte("installScriptURL: ftp://example.com/install.sh\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadNodeConfig(f)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "must use http or https") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseUpdates(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ConfigUpdate
		wantErr bool
	}{
		{
			name:  "yaml list",
			input: "- key: port\n  value: \"8080\"\n- key: rag-policy\n  value: system-message\n",
			want:  []ConfigUpdate{{"port", "8080"}, {"rag-policy", "system-message"}},
		},
		{
			name:  "yaml object",
			input: "updates:\n  - key: chat-ctx-size\n    value: \"4096\"\n",
			want:  []ConfigUpdate{{"chat-ctx-size", "4096"}},
		},
		{
			name:  "json list",
			input: `[{"key":"qdrant-limit","value":"3"},{"key":"system-prompt","value":"You are helpful"}]`,
			want:  []ConfigUpdate{{"qdrant-limit", "3"}, {"system-prompt", "You are helpful"}},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:    "scalar",
			input:   "port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUpdates([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUpdates() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d updates, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("update %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestLoadUpdates_FileNotFound(t *testing.T) {
	_, err := LoadUpdates("/nonexistent/updates.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading updates file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseAssignment(t *testing.T) {
	u, err := ParseAssignment("system-prompt=a=b c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Key != "system-prompt" || u.Value != "a=b c" {
		t.Errorf("unexpected update %+v", u)
	}

	u, err = ParseAssignment("--port=8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Key != "port" {
		t.Errorf("expected leading dashes stripped, got %q", u.Key)
	}

	for _, bad := range []string{"port", "=8080", ""} {
		if _, err := ParseAssignment(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
