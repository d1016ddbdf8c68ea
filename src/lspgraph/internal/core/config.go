package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	uber_config "go.uber.org/config"
	"go.uber.org/fx"
)

const (
	_envConfigDir     = "LSPGRAPH_CONFIG_DIR"
	_defaultConfigDir = "src/lspgraph/config"
)

// _defaultConfig is used when no configuration directory can be found, so the binary
// also works outside of the repository.
const _defaultConfig = `
service:
  name: lsp-graph
logging:
  level: ${LSPGRAPH_LOG_LEVEL:info}
  development: false
  encoding: console
lsp:
  languageId: ""
  settleDelay: 0s
  requestTimeout: 0s
  concurrency: 8
metrics:
  flushInterval: 1s
`

var ConfigModule = fx.Options(
	fx.Provide(NewConfig),
	fx.Provide(NewLSPConfig),
	fx.Provide(NewMetricsConfig),
)

type Config struct {
	provider uber_config.Provider
}

func (c Config) Get(path string) uber_config.Value {
	return c.provider.Get(path)
}

func (c Config) Name() string {
	return "config"
}

func NewConfig() (uber_config.Provider, error) {
	configDir := getConfigDir()

	metaPath := filepath.Join(configDir, "meta.yaml")
	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		provider, err := uber_config.NewYAML(
			uber_config.Source(strings.NewReader(_defaultConfig)),
			uber_config.Expand(os.LookupEnv),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load default configuration: %w", err)
		}
		return Config{provider: provider}, nil
	}

	metaProvider, err := uber_config.NewYAML(
		uber_config.File(metaPath),
		uber_config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta configuration: %w", err)
	}

	var configFiles []string
	if err := metaProvider.Get("files").Populate(&configFiles); err != nil {
		return nil, fmt.Errorf("failed to read files list from meta.yaml: %w", err)
	}

	var options []uber_config.YAMLOption
	for _, file := range configFiles {
		fullPath := filepath.Join(configDir, file)
		if _, err := os.Stat(fullPath); err == nil {
			options = append(options, uber_config.File(fullPath))
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("no configuration files found in %s", configDir)
	}
	options = append(options, uber_config.Expand(os.LookupEnv))

	provider, err := uber_config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return Config{provider: provider}, nil
}

// getConfigDir returns the path to the configuration directory
func getConfigDir() string {
	if configDir := os.Getenv(_envConfigDir); configDir != "" {
		return configDir
	}

	// Relative to the workspace root, which is where the binary is usually run from.
	return _defaultConfigDir
}
