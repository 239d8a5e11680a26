package config

import "errors"

// ErrConfig marks a configuration that cannot be used to start watching.
var ErrConfig = errors.New("invalid configuration")

const (
	// EventPath is the only path served to event subscribers.
	EventPath = "/events"

	DefaultEventName    = "update"
	DefaultEventPort    = 2133
	MinEventPort        = 1024
	MaxEventPort        = 65535
	DefaultNotifyPeriod = 1000
	MinNotifyPeriod     = 100
	MaxNotifyPeriod     = 3600000
	DefaultMetricsPort  = 2134
)

// Config holds the application configuration.
type Config struct {
	Watch     []string  `yaml:"watch" validate:"required,min=1,dive,required"`
	Command   []string  `yaml:"command,omitempty"`
	TTY       bool      `yaml:"tty"`
	Init      bool      `yaml:"init"`
	Verbose   bool      `yaml:"verbose"`
	PeriodMs  uint64    `yaml:"period_ms" validate:"min=100,max=3600000"`
	Broadcast Broadcast `yaml:"broadcast"`
	Logger    Logger    `yaml:"logger"`
	Metrics   Metrics   `yaml:"metrics"`
}

// Broadcast holds the configuration of the server-sent events endpoint.
type Broadcast struct {
	Enabled  bool   `yaml:"enabled"`
	Name     string `yaml:"name" validate:"required,excludesall=\r\n"`
	Port     uint16 `yaml:"port" validate:"min=1024,max=65535"`
	Coalesce bool   `yaml:"coalesce"` // Collapse pending notifications of slow subscribers
}

// Logger holds the configuration for the app logging
type Logger struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json logfmt"`
}

// Metrics holds the configuration of the Prometheus listener.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Port    uint16 `yaml:"port" validate:"min=1024,max=65535"`
}
