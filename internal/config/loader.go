package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load assembles the configuration from a YAML file plus environment
// overrides (env wins over file, file over env-default tags), then
// validates it. CONFIG_PATH selects the file; when it is unset and
// ./config.yaml is absent, the environment alone supplies the settings.
// A CONFIG_PATH pointing at a missing file is an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
