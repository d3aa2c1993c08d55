// Package config loads the service configuration from file, environment and
// defaults, and sets up logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. MIRURO_SERVER_ADDR
const EnvPrefix = "MIRURO"

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream" yaml:"upstream"`
	Pipe     PipeConfig     `mapstructure:"pipe" yaml:"pipe"`
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig controls the inbound HTTP server
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// Mode is the gin mode: debug, release or test
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// UpstreamConfig is shared by both outbound collaborators
type UpstreamConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Referer   string        `mapstructure:"referer" yaml:"referer"`
	// Debug logs every outbound request and response
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// PipeConfig locates the secure pipe endpoint
type PipeConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// MetadataConfig controls the AniList client
type MetadataConfig struct {
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	DefaultPerPage int    `mapstructure:"default_per_page" yaml:"default_per_page"`
	MaxPerPage     int    `mapstructure:"max_per_page" yaml:"max_per_page"`
	StripHTML      bool   `mapstructure:"strip_html" yaml:"strip_html"`
}

// LoggingConfig controls log output and rotation
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// File is empty for stderr
	File       string `mapstructure:"file" yaml:"file"`
	Color      bool   `mapstructure:"color" yaml:"color"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers every default value on v.
// Durations are strings so a generated config file stays readable.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.mode", "release")

	v.SetDefault("upstream.timeout", "15s")
	v.SetDefault("upstream.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	v.SetDefault("upstream.referer", "https://www.miruro.to/")
	v.SetDefault("upstream.debug", false)

	v.SetDefault("pipe.endpoint", "https://www.miruro.to/api/secure/pipe")

	v.SetDefault("metadata.endpoint", "https://graphql.anilist.co")
	v.SetDefault("metadata.default_per_page", 20)
	v.SetDefault("metadata.max_per_page", 50)
	v.SetDefault("metadata.strip_html", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}

// Load reads configuration from cfgFile, or from the default location when
// cfgFile is empty. A missing default file is not an error.
// The returned viper instance can be used to watch the file for changes.
func Load(cfgFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(GetConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"upstream.timeout":        c.Upstream.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if strings.TrimSpace(c.Pipe.Endpoint) == "" {
		return errors.New("pipe.endpoint must be set")
	}
	if strings.TrimSpace(c.Metadata.Endpoint) == "" {
		return errors.New("metadata.endpoint must be set")
	}
	if c.Metadata.MaxPerPage < 1 {
		return errors.New("metadata.max_per_page must be at least 1")
	}
	if c.Metadata.DefaultPerPage < 1 || c.Metadata.DefaultPerPage > c.Metadata.MaxPerPage {
		return fmt.Errorf("metadata.default_per_page must be between 1 and %d", c.Metadata.MaxPerPage)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// GetConfigDir returns the directory holding config.yaml
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "miruro")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "miruro")
	}
	return filepath.Join(".", ".miruro")
}

// DefaultConfigPath returns the config file used when --config is not given
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// SaveDefaultConfig writes the default configuration as YAML to path
func SaveDefaultConfig(path string) error {
	v := viper.New()
	SetDefaults(v)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
