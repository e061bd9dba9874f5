package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configDir  = ".pgbrowse"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "PGBROWSE"

	// DatabaseURLEnv names the environment variable contributing the "default" target.
	DatabaseURLEnv = "DATABASE_URL"
	// EnvTargetName is the name given to the target built from DATABASE_URL.
	EnvTargetName = "default"
)

// Load reads the configuration from path, or from ~/.pgbrowse/config.yaml when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := configDirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		v.SetConfigName(configFile)
		v.SetConfigType(configType)
		v.AddConfigPath(dir)
	}

	// Defaults
	v.SetDefault("server.listen", ":5000")
	v.SetDefault("server.session_secret", "")
	v.SetDefault("server.page_size", 50)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("preferences.default_target", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if dsn := os.Getenv(DatabaseURLEnv); dsn != "" && !cfg.HasTarget(EnvTargetName) {
		env := Connection{Name: EnvTargetName, Driver: "postgres", URL: dsn}
		cfg.Targets = append([]Connection{env}, cfg.Targets...)
	}

	return cfg, nil
}

// Save writes the configuration to path, or to ~/.pgbrowse/config.yaml when path is empty.
func Save(path string, cfg *Config) error {
	if path == "" {
		dir, err := configDirPath()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		path = filepath.Join(dir, configFile+"."+configType)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// the DATABASE_URL target lives in the environment, not in the file
	targets := make([]Connection, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if t.Name == EnvTargetName && t.URL == os.Getenv(DatabaseURLEnv) {
			continue
		}
		targets = append(targets, t)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("targets", targets)
	v.Set("preferences", cfg.Preferences)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
