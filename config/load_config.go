package config

import (
	"errors"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
)

const (
	configPathEnv     = "CONFIG_PATH"
	defaultConfigFile = "config.yaml"
)

// Load reads the configuration in this order:
//  1. the explicit path (the -config flag);
//  2. the path in CONFIG_PATH;
//  3. ./config.yaml when it exists;
//  4. environment variables only.
//
// Environment variables always override file values.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: config file %q: %w", op, path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: read %q: %w", op, path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: read env: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (config *Config) Validate() error {
	var errs []error

	if config.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("jwt.access_secret is required"))
	}
	if config.JWT.RenewalSecret == "" {
		errs = append(errs, errors.New("jwt.renewal_secret is required"))
	}
	if config.JWT.AccessSecret != "" && config.JWT.AccessSecret == config.JWT.RenewalSecret {
		errs = append(errs, errors.New("jwt.access_secret and jwt.renewal_secret must differ"))
	}
	if config.JWT.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("jwt.access_token_ttl must be positive"))
	}
	if config.JWT.RenewalTokenTTL <= 0 {
		errs = append(errs, errors.New("jwt.renewal_token_ttl must be positive"))
	}

	switch config.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if config.Database.ConnectionString == "" {
			errs = append(errs, errors.New("database.connection_string is required for postgres storage"))
		}
	case StorageRedis:
		if config.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required for redis storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is unknown", config.Storage.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	return nil
}
