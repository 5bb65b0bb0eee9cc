package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds application-specific configuration.
type AppConfig struct {
	HostsFile    string `mapstructure:"hosts_file"`
	Tld          string `mapstructure:"tld"`
	DebounceMs   int    `mapstructure:"debounce_ms"`
	Write        bool   `mapstructure:"write"`
	Once         bool   `mapstructure:"once"`
	DomainEnvVar string `mapstructure:"domain_env_var"`
	DomainLabel  string `mapstructure:"domain_label"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"log_level"`
}

// Config is the top-level configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Logging LoggingConfig `mapstructure:"log"`
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
// An explicit cfgFile overrides the default config.yaml lookup.
func InitConfig(cfgFile string) error {
	// Set defaults for each sub-configuration.
	viper.SetDefault("app.hosts_file", "/etc/hosts")
	viper.SetDefault("app.tld", ".docker")
	viper.SetDefault("app.debounce_ms", 300)
	viper.SetDefault("app.write", false)
	viper.SetDefault("app.once", false)
	viper.SetDefault("app.domain_env_var", "DOMAIN_NAME")
	viper.SetDefault("app.domain_label", "hosts-sync.domains")
	viper.SetDefault("log.log_level", "INFO")

	// Specify the config file details.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config") // Looks for config.yaml
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".") // current directory
	}

	// Read the config file if available.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.App.HostsFile == "" {
		return fmt.Errorf("app.hosts_file must not be empty")
	}
	if c.App.DebounceMs < 0 {
		return fmt.Errorf("app.debounce_ms must be non-negative, got %d", c.App.DebounceMs)
	}
	if c.App.DomainEnvVar == "" {
		return fmt.Errorf("app.domain_env_var must not be empty")
	}
	return nil
}
