// Package config handles configuration loading and validation for jdg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".jdg"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes environment variable overrides, e.g. JDG_DIAGRAM_VERTICAL.
	EnvPrefix = "JDG"
)

// Member scopes accepted by parser.member_scope.
const (
	ScopeDeclaration = "declaration"
	ScopeFile        = "file"
)

// Config holds all configuration for jdg.
type Config struct {
	// Parser controls Java extraction.
	Parser ParserConfig `mapstructure:"parser" yaml:"parser"`
	// Diagram controls rendering.
	Diagram DiagramConfig `mapstructure:"diagram" yaml:"diagram"`
	// Generate controls batch processing.
	Generate GenerateConfig `mapstructure:"generate" yaml:"generate"`
	// Cache controls the extracted-model cache.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	// Tree controls file tree construction.
	Tree TreeConfig `mapstructure:"tree" yaml:"tree"`
	// Registry locates the project registry.
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	// Watch contains file watching configuration.
	Watch WatchConfig `mapstructure:"watch" yaml:"watch"`
}

// ParserConfig holds parser settings.
type ParserConfig struct {
	// MemberScope is "declaration" (members of the parsed type only) or
	// "file" (every member in the file).
	MemberScope string `mapstructure:"member_scope" yaml:"member_scope"`
}

// DiagramConfig holds rendering settings.
type DiagramConfig struct {
	// Vertical emits the left-to-right direction directive.
	Vertical bool `mapstructure:"vertical" yaml:"vertical"`
	// Stereotypes marks abstract classes, enums and records.
	Stereotypes bool `mapstructure:"stereotypes" yaml:"stereotypes"`
}

// GenerateConfig holds batch settings.
type GenerateConfig struct {
	// Workers is the number of files extracted concurrently. 1 is sequential.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// CacheConfig holds model cache settings.
type CacheConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir           string `mapstructure:"dir" yaml:"dir"`
	MemoryEntries int    `mapstructure:"memory_entries" yaml:"memory_entries"`
}

// TreeConfig holds file tree settings.
type TreeConfig struct {
	// Ignore lists gitignore-style patterns excluded from trees and watches.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`
	// GitIgnore honours .gitignore files under the project root.
	GitIgnore bool `mapstructure:"gitignore" yaml:"gitignore"`
}

// RegistryConfig holds project registry settings.
type RegistryConfig struct {
	// Path overrides the registry file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// WatchConfig holds file watching configuration.
type WatchConfig struct {
	// Debounce is the quiet window before a batch of changes is processed.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Load loads configuration from file, environment variables, and defaults.
// A .env file in the working directory is applied to the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Check if a specific config file was set via CLI flag (stored in global viper)
	globalViper := viper.GetViper()
	if configFile := globalViper.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Config file settings for default paths
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)

		// Look for config in current directory
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Parser.MemberScope != "" && c.Parser.MemberScope != ScopeDeclaration && c.Parser.MemberScope != ScopeFile {
		return fmt.Errorf("parser.member_scope must be '%s' or '%s', got %q", ScopeDeclaration, ScopeFile, c.Parser.MemberScope)
	}

	if c.Generate.Workers < 0 {
		return fmt.Errorf("generate.workers must not be negative, got %d", c.Generate.Workers)
	}

	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required when the cache is enabled")
	}

	if c.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must not be negative, got %d", c.Cache.MemoryEntries)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	return nil
}

// RegistryPath returns the configured registry path, or the per-user
// default when none is set.
func (c *Config) RegistryPath() string {
	if c.Registry.Path != "" {
		return c.Registry.Path
	}
	return DefaultRegistryPath()
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("parser.member_scope", ScopeDeclaration)

	v.SetDefault("diagram.vertical", false)
	v.SetDefault("diagram.stereotypes", false)

	v.SetDefault("generate.workers", 1)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.memory_entries", 1024)

	v.SetDefault("tree.ignore", []string{})
	v.SetDefault("tree.gitignore", false)

	v.SetDefault("registry.path", "")

	v.SetDefault("watch.debounce", 100*time.Millisecond)
}

// defaultCacheDir returns the per-user cache location for extracted models.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "jdg", "models")
}
