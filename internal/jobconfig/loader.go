package jobconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configName is the config file name without extension.
const configName = ".asyncrewriter"

// configExt is the config file's on-disk extension.
const configExt = ".yaml"

// envPrefix is the environment variable prefix for asyncrewriter settings.
const envPrefix = "ASYNCREWRITER"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	file, err := resolveConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	var interfaceMapping map[string]string

	if file != "" {
		fileCfg, readErr := readYAMLConfigFile(file)
		if readErr != nil {
			return nil, readErr
		}

		// interface_mapping keys are case-sensitive type names containing
		// dots, which viper would lowercase and split into nested keys, so
		// the mapping is taken from the decoded file directly.
		if raw, ok := fileCfg["interface_mapping"].(map[string]any); ok {
			interfaceMapping = make(map[string]string, len(raw))
			for k, v := range raw {
				interfaceMapping[k] = fmt.Sprint(v)
			}

			delete(fileCfg, "interface_mapping")
		}

		if mergeErr := viperCfg.MergeConfigMap(fileCfg); mergeErr != nil {
			return nil, fmt.Errorf("merge config: %w", mergeErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	if interfaceMapping != nil {
		cfg.InterfaceMapping = interfaceMapping
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// resolveConfigFile returns the path of the config file to load: configPath
// if non-empty, else ".asyncrewriter.yaml" in the current directory or the
// user's home directory, in that order. Returns "" (not an error) when no
// config file is found and configPath was empty.
func resolveConfigFile(configPath string) (string, error) {
	if configPath != "" {
		switch _, err := os.Stat(configPath); {
		case err == nil:
			return configPath, nil
		case os.IsNotExist(err):
			return "", nil
		default:
			return "", fmt.Errorf("read config: %w", err)
		}
	}

	candidates := []string{filepath.Join(".", configName+configExt)}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, configName+configExt))
	}

	for _, candidate := range candidates {
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// readYAMLConfigFile decodes a .asyncrewriter.yaml file into a generic map
// suitable for viper.Viper.MergeConfigMap, using gopkg.in/yaml.v3 directly
// rather than relying on viper's internal YAML codec.
func readYAMLConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg map[string]any

	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, unmarshalErr)
	}

	return cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("roots", []string{})
	viperCfg.SetDefault("interface_mapping", map[string]string{})

	viperCfg.SetDefault("pipeline.workers", DefaultPipelineWorkers)

	viperCfg.SetDefault("checkpoint.enabled", DefaultCheckpointEnabled)
	viperCfg.SetDefault("checkpoint.dir", DefaultCheckpointDir)
	viperCfg.SetDefault("checkpoint.resume", DefaultCheckpointResume)
	viperCfg.SetDefault("checkpoint.clear_prev", DefaultCheckpointClearPrev)
}
