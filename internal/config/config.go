package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Server     ServerConfig     `mapstructure:"server"`
}

// SimulationConfig holds replay simulation settings. Growth cadences are
// fixed by the game and deliberately absent here.
type SimulationConfig struct {
	MaxTurns int `mapstructure:"max_turns"`
}

// FetchConfig holds replay download settings
type FetchConfig struct {
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	DefaultServer  string            `mapstructure:"default_server"`
	Servers        map[string]string `mapstructure:"servers"`
}

// Timeout returns the per-request download timeout
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BatchConfig holds settings for scoring many replays at once
type BatchConfig struct {
	Workers        int `mapstructure:"workers"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the global deadline for one batch
func (c BatchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ArchiveConfig holds score archive settings
type ArchiveConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	LogLevel              string           `mapstructure:"log_level"`
	HTTP                  ListenConfig     `mapstructure:"http"`
	GRPC                  GRPCServerConfig `mapstructure:"grpc"`
	GracefulShutdownDelay int              `mapstructure:"graceful_shutdown_delay"`
}

// ListenConfig is a host/port pair
type ListenConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port
func (c ListenConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	ListenConfig     `mapstructure:",squash"`
	EnableReflection bool `mapstructure:"enable_reflection"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("simulation.max_turns", 2000)

	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.default_server", "na")
	v.SetDefault("fetch.servers", map[string]string{
		"na":  "https://generalsio-replays-na.s3.amazonaws.com/%s.gior",
		"eu":  "https://generalsio-replays-eu.s3.amazonaws.com/%s.gior",
		"bot": "https://generalsio-replays-bot.s3.amazonaws.com/%s.gior",
	})

	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.timeout_seconds", 60)

	v.SetDefault("archive.dir", "archive")

	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 50051)
	v.SetDefault("server.grpc.enable_reflection", false)
	v.SetDefault("server.graceful_shutdown_delay", 5)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/generals-replay")
	}

	v.SetEnvPrefix("GRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing explicit file falls back to defaults; for the search
		// path only "not found" is tolerated.
		var notFound viper.ConfigFileNotFoundError
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	return nil
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	_ = v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A change that fails
// validation is ignored and the previous values stay in effect.
func WatchConfig(onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			return
		}
		if err := Validate(next); err != nil {
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Simulation.MaxTurns <= 0 {
		return fmt.Errorf("simulation.max_turns must be positive")
	}

	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive")
	}
	if len(c.Fetch.Servers) == 0 {
		return fmt.Errorf("fetch.servers must not be empty")
	}
	for name, tmpl := range c.Fetch.Servers {
		if strings.Count(tmpl, "%s") != 1 {
			return fmt.Errorf("fetch.servers.%s must contain exactly one %%s", name)
		}
	}
	if _, ok := c.Fetch.Servers[c.Fetch.DefaultServer]; !ok {
		return fmt.Errorf("fetch.default_server %q is not a configured server", c.Fetch.DefaultServer)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive")
	}
	if c.Batch.TimeoutSeconds <= 0 {
		return fmt.Errorf("batch.timeout_seconds must be positive")
	}

	if c.Archive.Dir == "" {
		return fmt.Errorf("archive.dir must not be empty")
	}

	if _, err := zerolog.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}
	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("server.http.port must be between 1 and 65535")
	}
	if c.Server.GRPC.Port <= 0 || c.Server.GRPC.Port > 65535 {
		return fmt.Errorf("server.grpc.port must be between 1 and 65535")
	}
	if c.Server.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.graceful_shutdown_delay must be non-negative")
	}
	return nil
}
