package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/artpick/internal/adapter/source/artic"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Table   TableConfig   `mapstructure:"table"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourceConfig holds the remote artwork endpoint configuration
type SourceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent"`
}

// TableConfig holds pagination defaults
type TableConfig struct {
	PageSize  int   `mapstructure:"page_size"`
	PageSizes []int `mapstructure:"page_sizes"` // cycled with [ and ]
}

// CacheConfig controls where the accumulator keeps record payloads
type CacheConfig struct {
	Spill    bool   `mapstructure:"spill"`     // write payloads to a session file
	SpillDir string `mapstructure:"spill_dir"` // defaults to the OS cache dir
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:    artic.DefaultBaseURL,
			Timeout:    30 * time.Second,
			MaxRetries: artic.DefaultMaxRetries,
			UserAgent:  "artpick",
		},
		Table: TableConfig{
			PageSize:  12,
			PageSizes: []int{12, 24, 48},
		},
		Cache: CacheConfig{
			Spill:    false,
			SpillDir: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "artpick", "artpick.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "artpick", "artpick.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "artpick")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "artpick")
	}
}

// defaultCachePath returns the default directory for session spill files
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "artpick", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cache", "artpick")
	}
}

// LoadConfig loads configuration from file and environment.
// An empty path searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. ARTPICK_SOURCE_BASE_URL
	v.SetEnvPrefix("ARTPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("source.base_url", cfg.Source.BaseURL)
	v.SetDefault("source.timeout", cfg.Source.Timeout)
	v.SetDefault("source.max_retries", cfg.Source.MaxRetries)
	v.SetDefault("source.user_agent", cfg.Source.UserAgent)
	v.SetDefault("table.page_size", cfg.Table.PageSize)
	v.SetDefault("table.page_sizes", cfg.Table.PageSizes)
	v.SetDefault("cache.spill", cfg.Cache.Spill)
	v.SetDefault("cache.spill_dir", cfg.Cache.SpillDir)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate rejects configurations the controller cannot work with
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url must be set")
	}
	if c.Source.MaxRetries < 0 {
		return fmt.Errorf("source.max_retries must not be negative")
	}
	if c.Table.PageSize < 1 {
		return fmt.Errorf("table.page_size must be at least 1, got %d", c.Table.PageSize)
	}
	for _, size := range c.Table.PageSizes {
		if size < 1 {
			return fmt.Errorf("table.page_sizes must be positive, got %d", size)
		}
	}
	return nil
}

// SpillPath returns the directory for accumulator spill files, or "" when
// spilling is disabled.
func (c *Config) SpillPath() string {
	if !c.Cache.Spill {
		return ""
	}
	return c.Cache.SpillDir
}
