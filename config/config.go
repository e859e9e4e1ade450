// Package config loads the optional per-workspace settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up at the workspace root.
const FileName = ".aidllsp.yaml"

// Config holds the settings of one workspace.
type Config struct {
	// Extensions selects the source files to index, e.g. ".aidl".
	Extensions []string `yaml:"extensions" json:"extensions"`
	// Exclude lists directory names skipped while walking the workspace.
	Exclude []string `yaml:"exclude" json:"exclude"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Extensions: []string{".aidl"},
		Exclude:    []string{".git", "node_modules", "out", "build"},
		LogLevel:   "info",
	}
}

// Load returns the settings of the workspace rooted at root using the
// hierarchy: defaults < root/.aidllsp.yaml. The file is optional.
func Load(root string) (Config, error) {
	cfg := Defaults()
	if root == "" {
		return cfg, nil
	}
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays the client's initializationOptions onto cfg. Only the keys
// present in opts override the current values.
func (cfg Config) Merge(opts json.RawMessage) (Config, error) {
	if len(opts) == 0 || string(opts) == "null" {
		return cfg, nil
	}
	var overlay struct {
		Extensions []string `json:"extensions"`
		Exclude    []string `json:"exclude"`
		LogLevel   string   `json:"logLevel"`
	}
	if err := json.Unmarshal(opts, &overlay); err != nil {
		return cfg, fmt.Errorf("initializationOptions: %w", err)
	}
	if overlay.Extensions != nil {
		cfg.Extensions = overlay.Extensions
	}
	if overlay.Exclude != nil {
		cfg.Exclude = overlay.Exclude
	}
	if overlay.LogLevel != "" {
		cfg.LogLevel = overlay.LogLevel
	}
	if err := cfg.normalize(); err != nil {
		return cfg, fmt.Errorf("initializationOptions: %w", err)
	}
	return cfg, nil
}

// normalize makes every extension start with a dot and rejects an empty
// extension list.
func (cfg *Config) normalize() error {
	if len(cfg.Extensions) == 0 {
		return errors.New("at least one source extension is required")
	}
	exts := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return errors.New("at least one source extension is required")
	}
	cfg.Extensions = exts
	return nil
}

// IsSource reports whether path has one of the configured extensions.
func (cfg Config) IsSource(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsExcluded reports whether a directory with the given base name is skipped.
func (cfg Config) IsExcluded(name string) bool {
	for _, e := range cfg.Exclude {
		if name == e {
			return true
		}
	}
	return false
}
