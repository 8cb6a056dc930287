package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jask/genmark/internal/api"
)

// Config holds application configuration.
type Config struct {
	API    APIConfig
	UI     UIConfig
	Export ExportConfig
	Log    LogConfig
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
}

// UIConfig holds the form defaults used by the pages and CLI.
type UIConfig struct {
	DefaultProvider     string `mapstructure:"default_provider"`
	DefaultAnalysisType string `mapstructure:"default_analysis_type"`
	DefaultContentType  string `mapstructure:"default_content_type"`
	DefaultNumIdeas     int    `mapstructure:"default_num_ideas"`
}

// ExportConfig controls where exported content lands.
type ExportConfig struct {
	Dir string
}

// LogConfig holds logging settings.
type LogConfig struct {
	File  string
	Level string
}

// Load reads configuration from .env, file and env. Env var overrides use
// prefix GENMARK_; the base URL also honours API_URL.
func Load() (Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("GENMARK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GENMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", "GENMARK_API_BASE_URL", "GENMARK_API_URL", "API_URL"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil && !isMissing(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate checks the form defaults against the backend's enums.
func (c Config) Validate() error {
	if _, err := api.ParseProvider(c.UI.DefaultProvider); err != nil {
		return fmt.Errorf("ui.default_provider: %w", err)
	}
	if _, err := api.ParseAnalysisType(c.UI.DefaultAnalysisType); err != nil {
		return fmt.Errorf("ui.default_analysis_type: %w", err)
	}
	if _, err := api.ParseContentType(c.UI.DefaultContentType); err != nil {
		return fmt.Errorf("ui.default_content_type: %w", err)
	}
	if c.UI.DefaultNumIdeas < 1 || c.UI.DefaultNumIdeas > 10 {
		return fmt.Errorf("ui.default_num_ideas: %d out of range 1-10", c.UI.DefaultNumIdeas)
	}
	if c.API.CacheSize < 0 {
		return fmt.Errorf("api.cache_size: must not be negative")
	}
	return nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Save writes cfg to the config file, creating the directory if needed.
func Save(cfg Config) (string, error) {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.cache_size", cfg.API.CacheSize)
	v.Set("ui.default_provider", cfg.UI.DefaultProvider)
	v.Set("ui.default_analysis_type", cfg.UI.DefaultAnalysisType)
	v.Set("ui.default_content_type", cfg.UI.DefaultContentType)
	v.Set("ui.default_num_ideas", cfg.UI.DefaultNumIdeas)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Path is the config file Load reads and Save writes.
func Path() string {
	if p := os.Getenv("GENMARK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("api.cache_size", 0)
	v.SetDefault("ui.default_provider", "openai")
	v.SetDefault("ui.default_analysis_type", "blog")
	v.SetDefault("ui.default_content_type", "text")
	v.SetDefault("ui.default_num_ideas", 5)
	v.SetDefault("export.dir", ".")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("log.level", "info")
}

func configDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "genmark")
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "genmark", "genmark.log")
}

func isMissing(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
