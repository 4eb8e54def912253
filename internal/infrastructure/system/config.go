// Package system provides infrastructure for tool-level configuration.
// This includes loading the tool config file (~/.dbmatrix.yaml) and the
// layered system properties built on top of it.
package system

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config represents the tool configuration file (~/.dbmatrix.yaml).
// This is tool-level configuration separate from project descriptors.
type Config struct {
	SystemProperties map[string]string `yaml:"system_properties"`
	Redaction        RedactionConfig   `yaml:"redaction"`
	Discovery        DiscoveryConfig   `yaml:"discovery"`
}

// RedactionConfig configures how credentials are sanitized on output.
type RedactionConfig struct {
	HashMode        HashModeConfig `yaml:"hash_mode"`
	Patterns        []string       `yaml:"patterns"`
	Paths           []string       `yaml:"paths"`
	DisableGitleaks bool           `yaml:"disable_gitleaks"`
}

// HashModeConfig controls hash-based redaction.
type HashModeConfig struct {
	Salt    string `yaml:"salt"`
	Enabled bool   `yaml:"enabled"`
}

// DiscoveryConfig tunes how profile definitions are recognized.
type DiscoveryConfig struct {
	// MarkerFiles replaces the rich definition file names (profile.yaml, profile.yml)
	MarkerFiles []string `yaml:"marker_files"`

	// FragmentSuffix replaces the multi-profile file suffix (.profiles.yaml)
	FragmentSuffix string `yaml:"fragment_suffix"`

	// Resilient skips malformed fragment files with a warning instead of
	// failing the scan
	Resilient bool `yaml:"resilient"`
}

// ConfigLoader loads tool configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new tool config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		SystemProperties: make(map[string]string),
		Redaction: RedactionConfig{
			HashMode: HashModeConfig{
				Enabled: false,
			},
			Patterns: []string{},
			Paths:    []string{},
		},
		Discovery: DiscoveryConfig{},
	}
}

// Load loads the tool configuration from the specified path.
// If path is empty or the file does not exist, returns DefaultConfig().
// This allows dbmatrix to work out-of-the-box without configuration.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse tool config: %w", err)
	}
	if config.SystemProperties == nil {
		config.SystemProperties = make(map[string]string)
	}

	return config, nil
}
