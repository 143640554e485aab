package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`

	// Server holds the remote agent server settings
	Server ServerConfig `mapstructure:"server"`

	// TimeoutMS is the response-completion timeout in milliseconds
	TimeoutMS int `mapstructure:"timeout_ms"`

	// BufferSize bounds the display log kept per run
	BufferSize int `mapstructure:"buffer_size"`
}

// ServerConfig describes how to reach the agent server
type ServerConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	WorkDir  string `mapstructure:"workdir"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "text",
		Verbose: false,
		Server: ServerConfig{
			URL: "http://127.0.0.1:4096",
		},
		TimeoutMS:  120000,
		BufferSize: 1000,
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("agentlink")
	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	// 1. System-wide config
	v.AddConfigPath("/etc/agentlink/")
	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "agentlink"))
	}
	// 3. Home directory (as .agentlink.yaml)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".agentlink")
	}
	// 4. Current directory
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("AGENTLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("format", "AGENTLINK_FORMAT")
	v.BindEnv("verbose", "AGENTLINK_VERBOSE")
	v.BindEnv("timeout_ms", "AGENTLINK_TIMEOUT_MS")
	v.BindEnv("server.url", "AGENTLINK_SERVER_URL")
	v.BindEnv("server.password", "AGENTLINK_SERVER_PASSWORD")
	v.BindEnv("server.workdir", "AGENTLINK_SERVER_WORKDIR")

	// Set defaults
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("timeout_ms", cfg.TimeoutMS)
	v.SetDefault("buffer_size", cfg.BufferSize)
	v.SetDefault("server.url", cfg.Server.URL)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, err
		}
		// Config file not found; use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
