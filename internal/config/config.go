// Package config loads and validates faultline tool configuration from the
// config file, environment and CLI flags via viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Dumps DumpsConfig `mapstructure:"dumps"`
	Serve ServeConfig `mapstructure:"serve"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DumpsConfig configures crash dump persistence.
type DumpsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Dir          string `mapstructure:"dir"`
	MaxFiles     int    `mapstructure:"max_files"`
	IncludeStack bool   `mapstructure:"include_stack"`
	IncludeEnv   bool   `mapstructure:"include_env"`
}

// ServeConfig configures the dump inspection HTTP server.
type ServeConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Dumps: DumpsConfig{
			Enabled:      true,
			Dir:          ".faultline/dumps",
			MaxFiles:     10,
			IncludeStack: true,
			IncludeEnv:   false,
		},
		Serve: ServeConfig{
			Host:        "localhost",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:5173"},
		},
	}
}

// Load reads configuration through v. Precedence (highest to lowest):
// CLI flags bound to v, FAULTLINE_* environment variables, the config file
// (explicit path, or .faultline/config.yaml in the working directory), and
// the built-in defaults. A missing config file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("FAULTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".faultline")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("dumps.enabled", def.Dumps.Enabled)
	v.SetDefault("dumps.dir", def.Dumps.Dir)
	v.SetDefault("dumps.max_files", def.Dumps.MaxFiles)
	v.SetDefault("dumps.include_stack", def.Dumps.IncludeStack)
	v.SetDefault("dumps.include_env", def.Dumps.IncludeEnv)
	v.SetDefault("serve.host", def.Serve.Host)
	v.SetDefault("serve.port", def.Serve.Port)
	v.SetDefault("serve.cors_origins", def.Serve.CORSOrigins)
}
