package config

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Watch:    []string{},
		PeriodMs: DefaultNotifyPeriod,
		Broadcast: Broadcast{
			Enabled: false,
			Name:    DefaultEventName,
			Port:    DefaultEventPort,
		},
		Logger: Logger{
			Level:  "warn",
			Format: "text",
		},
		Metrics: Metrics{
			Enabled: false,
			Port:    DefaultMetricsPort,
		},
	}
}
