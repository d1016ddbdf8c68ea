package core

import (
	"fmt"
	"time"

	"go.uber.org/config"
)

const (
	_configKeyLSP       = "lsp"
	_defaultConcurrency = 8
)

// LSPConfig holds the settings that shape how the language server is driven.
type LSPConfig struct {
	// LanguageID is sent with every didOpen notification.
	LanguageID string
	// SettleDelay is how long to wait after opening a document before querying it.
	SettleDelay time.Duration
	// RequestTimeout bounds the wait for each response. Zero waits forever.
	RequestTimeout time.Duration
	// Concurrency bounds the number of requests kept in flight by the analyzers.
	Concurrency int
	// ServerLog names a temp-dir log file for the server's stderr. Empty relays to our stderr.
	ServerLog string
}

type rawLSPConfig struct {
	LanguageID     string `yaml:"languageId"`
	SettleDelay    string `yaml:"settleDelay"`
	RequestTimeout string `yaml:"requestTimeout"`
	Concurrency    int    `yaml:"concurrency"`
	ServerLog      string `yaml:"serverLog"`
}

// NewLSPConfig reads the "lsp" section of the configuration.
func NewLSPConfig(provider config.Provider) (LSPConfig, error) {
	var raw rawLSPConfig
	if err := provider.Get(_configKeyLSP).Populate(&raw); err != nil {
		return LSPConfig{}, fmt.Errorf("getting config field %q: %w", _configKeyLSP, err)
	}

	cfg := LSPConfig{
		LanguageID:  raw.LanguageID,
		Concurrency: raw.Concurrency,
		ServerLog:   raw.ServerLog,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = _defaultConcurrency
	}

	var err error
	if cfg.SettleDelay, err = parseDuration("settleDelay", raw.SettleDelay); err != nil {
		return LSPConfig{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("requestTimeout", raw.RequestTimeout); err != nil {
		return LSPConfig{}, err
	}
	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s.%s: %w", _configKeyLSP, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s.%s must not be negative, got %v", _configKeyLSP, key, d)
	}
	return d, nil
}
