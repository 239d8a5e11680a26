package config

import "fmt"

// Overrides carries the command-line flags that were explicitly set. Nil
// fields leave the loaded configuration untouched.
type Overrides struct {
	Watch       []string
	Command     []string
	Verbose     *bool
	Init        *bool
	TTY         *bool
	PeriodMs    *uint64
	Signal      *bool
	Port        *uint16
	Name        *string
	Coalesce    *bool
	LogLevel    *string
	LogFormat   *string
	MetricsPort *uint16
}

// Apply overlays the overrides on cfg.
func (o Overrides) Apply(cfg *Config) error {
	if len(o.Watch) > 0 {
		cfg.Watch = append([]string(nil), o.Watch...)
	}
	if len(o.Command) > 0 {
		cfg.Command = append([]string(nil), o.Command...)
	}
	if o.Verbose != nil {
		cfg.Verbose = *o.Verbose
	}
	if o.Init != nil {
		cfg.Init = *o.Init
	}
	if o.TTY != nil {
		cfg.TTY = *o.TTY
	}
	if o.PeriodMs != nil {
		cfg.PeriodMs = *o.PeriodMs
	}
	if o.Signal != nil {
		cfg.Broadcast.Enabled = *o.Signal
	}
	if (o.Port != nil || o.Name != nil || o.Coalesce != nil) && !cfg.Broadcast.Enabled {
		return fmt.Errorf("%w: --port, --name and --coalesce require --signal", ErrConfig)
	}
	if o.Port != nil {
		cfg.Broadcast.Port = *o.Port
	}
	if o.Name != nil {
		cfg.Broadcast.Name = *o.Name
	}
	if o.Coalesce != nil {
		cfg.Broadcast.Coalesce = *o.Coalesce
	}
	if o.LogLevel != nil {
		cfg.Logger.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		cfg.Logger.Format = *o.LogFormat
	}
	if o.MetricsPort != nil {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = *o.MetricsPort
	}
	if cfg.Verbose && (cfg.Logger.Level == "warn" || cfg.Logger.Level == "error") {
		cfg.Logger.Level = "info"
	}
	return nil
}
