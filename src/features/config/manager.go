package config

import (
	"log/slog"

	"gopkg.in/yaml.v3"
)

// Manager holds the validated application configuration. It is loaded once at
// startup and never mutated afterwards.
type Manager struct {
	config *Config
}

// NewManager validates config and wraps it.
func NewManager(config *Config) (*Manager, error) {
	if err := Validate(config); err != nil {
		return nil, err
	}
	return &Manager{config: config}, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	return m.config
}

// GetYAML returns the configuration as a YAML document.
func (m *Manager) GetYAML() string {
	return ToYAML(m.config)
}

// ToYAML renders cfg as a YAML document that Load accepts.
func ToYAML(cfg *Config) string {
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
