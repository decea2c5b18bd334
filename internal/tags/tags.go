// Package tags manages machine-specific tags used to gate which manifest
// items apply on which machine.
package tags

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/roostdev/roost/internal/platform"
)

// MachineConfig is the schema of the per-machine tag file.
type MachineConfig struct {
	Tags []string `yaml:"tags"`
}

// ConfigPath returns the tag file location under the XDG config dir.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "roost", "machine.yaml")
}

// Load reads the machine config, returning an empty config if the file does
// not exist.
func Load() (*MachineConfig, error) {
	return loadFrom(ConfigPath())
}

func loadFrom(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &MachineConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read machine config: %w", err)
	}
	var cfg MachineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse machine config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to the machine config file, creating parent directories.
func Save(cfg *MachineConfig) error {
	return saveTo(ConfigPath(), cfg)
}

func saveTo(path string, cfg *MachineConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Add appends tag to the machine config if not already present.
func Add(tag string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if slices.Contains(cfg.Tags, tag) {
		return nil
	}
	cfg.Tags = append(cfg.Tags, tag)
	return Save(cfg)
}

// AutoDetect returns a baseline set of tags derived from the current machine.
func AutoDetect() []string {
	detected := []string{platform.Current(), runtime.GOARCH}
	if h, err := os.Hostname(); err == nil && h != "" {
		detected = append(detected, h)
	}
	return detected
}

// EnsureInitialised writes the machine config with auto-detected tags if it
// does not already exist.
func EnsureInitialised() error {
	if _, err := os.Stat(ConfigPath()); err == nil {
		return nil
	}
	return Save(&MachineConfig{Tags: AutoDetect()})
}

// Matches reports whether an item gated on required tags applies to a machine
// carrying machineTags. An empty required list always matches.
func Matches(required, machineTags []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		if slices.Contains(machineTags, want) {
			return true
		}
	}
	return false
}
