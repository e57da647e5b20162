// Package config loads server and CLI settings from an optional config file,
// an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FAIRSHARE_SERVER_PORT.
const EnvPrefix = "FAIRSHARE"

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`

	// StaticPath is a directory of frontend files served at "/". Empty disables it.
	StaticPath string `yaml:"static_path" mapstructure:"static_path"`
}

// StoreConfig configures session storage.
type StoreConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// SessionConfig configures editing sessions and their tokens.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
	TokenTTL      time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	Secret        string        `yaml:"secret" mapstructure:"secret"`
	PurgeInterval time.Duration `yaml:"purge_interval" mapstructure:"purge_interval"`
}

// AnthropicConfig configures the receipt extraction model.
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ExtractConfig limits extraction requests.
type ExtractConfig struct {
	RatePerMinute int `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	MaxImageBytes int `yaml:"max_image_bytes" mapstructure:"max_image_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. When path is empty, a
// config.yaml in the working directory is used if present. Variables in a
// .env file are loaded first and never override the real environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("anthropic.api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}
	if err := v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_path", "")
	v.SetDefault("store.dsn", "file:fairshare?mode=memory&cache=shared")
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.token_ttl", 24*time.Hour)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.purge_interval", 5*time.Minute)
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("extract.rate_per_minute", 30)
	v.SetDefault("extract.max_image_bytes", 5<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server.port %d: must be between 1 and 65535", c.Server.Port))
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid session.ttl %s: must be positive", c.Session.TTL))
	}
	if c.Session.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid session.token_ttl %s: must be positive", c.Session.TokenTTL))
	}
	if c.Session.PurgeInterval <= 0 {
		problems = append(problems, fmt.Sprintf("invalid session.purge_interval %s: must be positive", c.Session.PurgeInterval))
	}
	if c.Anthropic.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("invalid anthropic.max_tokens %d: must be positive", c.Anthropic.MaxTokens))
	}
	if c.Extract.RatePerMinute <= 0 {
		problems = append(problems, fmt.Sprintf("invalid extract.rate_per_minute %d: must be positive", c.Extract.RatePerMinute))
	}
	if c.Extract.MaxImageBytes <= 0 {
		problems = append(problems, fmt.Sprintf("invalid extract.max_image_bytes %d: must be positive", c.Extract.MaxImageBytes))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log.level '%s': must be one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log.format '%s': must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ExtractionEnabled reports whether an API key is configured.
func (c *Config) ExtractionEnabled() bool {
	return strings.TrimSpace(c.Anthropic.APIKey) != ""
}
