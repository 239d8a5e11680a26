package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path on top of the default
// configuration. An empty path yields the defaults. The result is not
// validated: command-line overrides are applied first, then Validate.
func Load(path string) (*Config, error) {
	cfg := createDefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: config file not found", ErrConfig, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	slog.Debug("Configuration file loaded", "path", path, "watch", len(cfg.Watch))
	return cfg, nil
}

// Validate checks field ranges and the cross-field rules of a configuration.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s", ErrConfig, describeFieldError(fieldErrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if len(cfg.Command) == 0 && !cfg.Broadcast.Enabled {
		return fmt.Errorf("%w: a command is required unless event broadcast is enabled", ErrConfig)
	}
	if cfg.Broadcast.Enabled && cfg.Metrics.Enabled && cfg.Broadcast.Port == cfg.Metrics.Port {
		return fmt.Errorf("%w: the metrics port must differ from the event port", ErrConfig)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "Config.Watch":
		return "at least one file or directory must be watched"
	case "Config.PeriodMs":
		return fmt.Sprintf("the file notification period should be a delay in the range %d-%dms", MinNotifyPeriod, MaxNotifyPeriod)
	case "Config.Broadcast.Port", "Config.Metrics.Port":
		return fmt.Sprintf("the port should be a number in the range %d-%d", MinEventPort, MaxEventPort)
	case "Config.Broadcast.Name":
		return "the event name must be a non-empty single line"
	case "Config.Logger.Level":
		return "the log level should be one of debug, info, warn, error"
	case "Config.Logger.Format":
		return "the log format should be one of text, json, logfmt"
	}
	if strings.HasPrefix(fe.StructNamespace(), "Config.Watch[") {
		return "watched paths must not be empty"
	}
	return fmt.Sprintf("%s failed the %q check", fe.Namespace(), fe.Tag())
}
