package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/spf13/viper"
)

const appName = "lazysearch"

// Config holds all application configuration
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	UI      UIConfig      `mapstructure:"ui"`
	Search  SearchConfig  `mapstructure:"search"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type GeneralConfig struct {
	DefaultLogic      string `mapstructure:"default_logic" validate:"oneof=and or"`
	OptimizeOnApply   bool   `mapstructure:"optimize_on_apply"`
	RejectWithWarning bool   `mapstructure:"reject_with_warning"`
}

type UIConfig struct {
	Theme           string `mapstructure:"theme" validate:"oneof=default catppuccin"`
	MouseEnabled    bool   `mapstructure:"mouse_enabled"`
	PanelWidthRatio int    `mapstructure:"panel_width_ratio" validate:"gt=0,lt=100"`
}

type SearchConfig struct {
	Endpoint   string `mapstructure:"endpoint" validate:"omitempty,url"`
	IndexName  string `mapstructure:"index_name"`
	APIVersion string `mapstructure:"api_version" validate:"required"`
	Top        int    `mapstructure:"top" validate:"gte=1,lte=1000"`
	MaxPages   int    `mapstructure:"max_pages" validate:"gte=1"`
	Timeout    int    `mapstructure:"timeout" validate:"gte=100"` // milliseconds
	// Fields lists index fields as "name:Edm.Type" for the filter builder
	Fields []string `mapstructure:"fields" validate:"dive,contains=:"`
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries" validate:"gte=0"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			DefaultLogic:      "and",
			OptimizeOnApply:   false,
			RejectWithWarning: false,
		},
		UI: UIConfig{
			Theme:           "default",
			MouseEnabled:    true,
			PanelWidthRatio: 30,
		},
		Search: SearchConfig{
			APIVersion: "2024-07-01",
			Top:        50,
			MaxPages:   10,
			Timeout:    30000,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from files and LAZYSEARCH_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths in priority order
	// 1. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, appName))
	}

	// 2. Current directory
	v.AddConfigPath(".")

	// 3. Default config directory
	v.AddConfigPath("./config")

	return load(v)
}

// LoadFile loads configuration from an explicit file path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.default_logic", d.General.DefaultLogic)
	v.SetDefault("general.optimize_on_apply", d.General.OptimizeOnApply)
	v.SetDefault("general.reject_with_warning", d.General.RejectWithWarning)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.panel_width_ratio", d.UI.PanelWidthRatio)
	v.SetDefault("search.endpoint", d.Search.Endpoint)
	v.SetDefault("search.index_name", d.Search.IndexName)
	v.SetDefault("search.api_version", d.Search.APIVersion)
	v.SetDefault("search.top", d.Search.Top)
	v.SetDefault("search.max_pages", d.Search.MaxPages)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// Validate checks field constraints declared in struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config value for %s: failed %q check", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// HistoryPath returns the validation history database path, defaulting to the config directory
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// ServiceConfig returns the configured search service settings
func (c *Config) ServiceConfig() models.ServiceConfig {
	return models.ServiceConfig{
		Name:       "config",
		Endpoint:   c.Search.Endpoint,
		IndexName:  c.Search.IndexName,
		APIVersion: c.Search.APIVersion,
	}
}

// RequestTimeout returns the search request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Search.Timeout) * time.Millisecond
}

// FieldInfos parses the declared index fields
func (c *Config) FieldInfos() []models.FieldInfo {
	fields := make([]models.FieldInfo, 0, len(c.Search.Fields))
	for _, f := range c.Search.Fields {
		name, edmType, _ := strings.Cut(f, ":")
		fields = append(fields, models.FieldInfo{
			Name: strings.TrimSpace(name),
			Type: strings.TrimSpace(edmType),
		})
	}
	return fields
}
