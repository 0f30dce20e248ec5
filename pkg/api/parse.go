package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvBinary           = "GAIANODE_BINARY"
	EnvInstallScriptURL = "GAIANODE_INSTALL_SCRIPT_URL"
	EnvBaseDir          = "GAIANODE_BASE_DIR"
)

// LoadNodeConfig reads a node.yaml file, applies defaults and environment
// overrides, and validates it. An empty filename yields the defaults.
func LoadNodeConfig(filename string) (*NodeConfig, error) {
	var cfg NodeConfig

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading node config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing node config: %w", err)
		}

		absPath, err := filepath.Abs(filename)
		if err != nil {
			return nil, fmt.Errorf("resolving absolute path: %w", err)
		}
		cfg.FilePath = absPath
	}

	cfg.ApplyEnv()
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating node config %s: %w", filename, err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from GAIANODE_* environment variables.
func (c *NodeConfig) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvBinary); ok && v != "" {
		c.Binary = v
	}
	if v, ok := os.LookupEnv(EnvInstallScriptURL); ok && v != "" {
		c.InstallScriptURL = v
	}
	if v, ok := os.LookupEnv(EnvBaseDir); ok && v != "" {
		c.BaseDir = v
	}
}

// ApplyDefaults fills unset fields. BaseDir defaults to $HOME/gaianet.
func (c *NodeConfig) ApplyDefaults() error {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Binary == "" {
		c.Binary = DefaultBinary
	}
	if c.InstallScriptURL == "" {
		c.InstallScriptURL = DefaultInstallScriptURL
	}
	if c.ShellProfile == "" {
		c.ShellProfile = DefaultShellProfile
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
	if len(c.PublicURLMarkers) == 0 {
		c.PublicURLMarkers = []string{"https://", DefaultDomainSuffix}
	}
	if c.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory for base dir: %w", err)
		}
		c.BaseDir = filepath.Join(home, DefaultBaseDirName)
	}
	if strings.HasPrefix(c.BaseDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("expanding %s: %w", c.BaseDir, err)
		}
		c.BaseDir = filepath.Join(home, c.BaseDir[2:])
	}
	return nil
}

// LoadUpdates reads a configure batch from a YAML (or JSON) file. Both a bare
// list of {key, value} pairs and an object with an "updates" list are
// accepted. Order is preserved.
func LoadUpdates(filename string) ([]ConfigUpdate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading updates file: %w", err)
	}

	updates, err := ParseUpdates(data)
	if err != nil {
		return nil, fmt.Errorf("parsing updates file %s: %w", filename, err)
	}
	return updates, nil
}

// ParseUpdates decodes a configure batch. JSON is valid YAML, so JSON
// payloads go through the same path.
func ParseUpdates(data []byte) ([]ConfigUpdate, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var updates []ConfigUpdate
		if err := root.Decode(&updates); err != nil {
			return nil, err
		}
		return updates, nil
	case yaml.MappingNode:
		var batch UpdateBatch
		if err := root.Decode(&batch); err != nil {
			return nil, err
		}
		return batch.Updates, nil
	default:
		return nil, fmt.Errorf("expected a list of updates or an object with \"updates\"")
	}
}

// ParseAssignment splits a "key=value" string into a ConfigUpdate.
func ParseAssignment(s string) (ConfigUpdate, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return ConfigUpdate{}, fmt.Errorf("expected key=value, got %q", s)
	}
	return ConfigUpdate{Key: strings.TrimPrefix(key, "--"), Value: value}, nil
}
