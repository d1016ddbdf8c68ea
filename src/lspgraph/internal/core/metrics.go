package core

import (
	"fmt"
	"time"

	"go.uber.org/config"
)

const (
	_configKeyMetrics     = "metrics"
	_configKeyServiceName = "service.name"

	_defaultFlushInterval = time.Second
	_defaultServiceName   = "lsp-graph"
)

// MetricsConfig controls the root metrics scope.
type MetricsConfig struct {
	// Service tags every metric.
	Service string
	// FlushInterval is how often the scope reports.
	FlushInterval time.Duration
}

// NewMetricsConfig reads the "metrics" section and the service name.
func NewMetricsConfig(provider config.Provider) (MetricsConfig, error) {
	var raw struct {
		FlushInterval string `yaml:"flushInterval"`
	}
	if err := provider.Get(_configKeyMetrics).Populate(&raw); err != nil {
		return MetricsConfig{}, fmt.Errorf("getting config field %q: %w", _configKeyMetrics, err)
	}

	cfg := MetricsConfig{
		Service:       _defaultServiceName,
		FlushInterval: _defaultFlushInterval,
	}
	var name string
	if err := provider.Get(_configKeyServiceName).Populate(&name); err != nil {
		return MetricsConfig{}, fmt.Errorf("getting config field %q: %w", _configKeyServiceName, err)
	}
	if name != "" {
		cfg.Service = name
	}
	if raw.FlushInterval != "" {
		d, err := time.ParseDuration(raw.FlushInterval)
		if err != nil {
			return MetricsConfig{}, fmt.Errorf("parsing %s.flushInterval: %w", _configKeyMetrics, err)
		}
		if d <= 0 {
			return MetricsConfig{}, fmt.Errorf("%s.flushInterval must be positive, got %v", _configKeyMetrics, d)
		}
		cfg.FlushInterval = d
	}
	return cfg, nil
}
