// Package config loads the application configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file,
// then RECIPEBOOK_* environment variables. A .env file in the working
// directory is read into the environment first.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

const (
	// EnvPrefix is stripped from environment variables before mapping.
	EnvPrefix = "RECIPEBOOK_"
	// ConfigPathEnvVar names an explicit config file.
	ConfigPathEnvVar = "RECIPEBOOK_CONFIG"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"recipebook.yaml",
	"recipebook.yml",
	"config/recipebook.yaml",
}

// Config is the full application configuration.
type Config struct {
	DataDir         string            `koanf:"data_dir" validate:"required"`
	DefaultLanguage string            `koanf:"default_language" validate:"required"`
	Languages       []string          `koanf:"languages" validate:"min=1,dive,required"`
	Collation       map[string]string `koanf:"collation"`
	BaseURL         string            `koanf:"base_url" validate:"required,url"`
	DailyImages     []string          `koanf:"daily_images"`

	Store  StoreConfig  `koanf:"store"`
	Timing TimingConfig `koanf:"timing"`
	Log    LogConfig    `koanf:"log"`
}

// StoreConfig selects the engagement persistence backend.
type StoreConfig struct {
	Backend string `koanf:"backend" validate:"oneof=memory file sqlite badger"`
	Path    string `koanf:"path" validate:"required_unless=Backend memory"`
}

// TimingConfig holds the debounce windows.
type TimingConfig struct {
	ViewDebounce   time.Duration `koanf:"view_debounce" validate:"gte=0"`
	ResortDebounce time.Duration `koanf:"resort_debounce" validate:"gte=0"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=off quiet normal info verbose debug"`
	Format string `koanf:"format" validate:"oneof=console json"`
	File   string `koanf:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:         "data",
		DefaultLanguage: "no",
		Languages:       []string{"no", "pb"},
		Collation: map[string]string{
			"no": "nn",
			"pb": "pt-BR",
		},
		BaseURL: "http://localhost/recipebook/",
		Store: StoreConfig{
			Backend: "file",
			Path:    ".recipebook",
		},
		Timing: TimingConfig{
			ViewDebounce:   10 * time.Second,
			ResortDebounce: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "normal",
			Format: "console",
		},
	}
}

// Load builds the configuration. configPath may be empty, in which case
// RECIPEBOOK_CONFIG and DefaultConfigPaths are consulted.
func Load(configPath string) (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct tags and the cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}
	if !slices.Contains(c.Languages, c.DefaultLanguage) {
		return fmt.Errorf("default_language %q is not in languages %v", c.DefaultLanguage, c.Languages)
	}
	for lang, tag := range c.Collation {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("collation for %q: %w", lang, err)
		}
	}
	return nil
}

// CollationTag returns the collation locale for a catalog language.
// Languages without an entry collate with the root locale.
func (c *Config) CollationTag(lang string) language.Tag {
	if tag, ok := c.Collation[lang]; ok {
		if t, err := language.Parse(tag); err == nil {
			return t
		}
	}
	return language.Und
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"languages",
	"daily_images",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps RECIPEBOOK_STORE__BACKEND to store.backend.
// A double underscore separates sections; a single one stays in the key.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
