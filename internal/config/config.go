// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/goodpoints/goodpoints/internal/core"
	"github.com/goodpoints/goodpoints/internal/model"
	"github.com/goodpoints/goodpoints/internal/validate"
)

// Default configuration values.
const (
	DefaultAlertDuration = 3 * time.Second
	DefaultLocale        = "en"
	DefaultSince         = "0"
	DefaultSortField     = "time"
	DefaultSortOrder     = "desc"
	DefaultOlderThan     = "365d"
	DefaultPlainTmpl     = "{{.RelativeTime}} {{.StudentName}}: {{.TextTruncated 60}}"
	DefaultFullTmpl      = "{{.CreatedAt | formatTime}} {{.StudentName}} ({{.ClassID}})\n{{.Text}}"
)

func init() {
	validate.Register("duration", func(fl validator.FieldLevel) bool {
		_, err := core.ParseDuration(fl.Field().String())
		return err == nil
	}, "{0} must be a duration like 48h, 7d or 2w")
}

// Config represents the goodpoints configuration.
type Config struct {
	Alert     AlertConfig     `toml:"alert"`
	UI        UIConfig        `toml:"ui"`
	List      ListConfig      `toml:"list"`
	Prune     PruneConfig     `toml:"prune"`
	Templates TemplatesConfig `toml:"templates"`
	Presets   []model.Preset  `toml:"presets" validate:"dive"`
}

// AlertConfig holds toast alert settings.
type AlertConfig struct {
	Duration Duration `toml:"duration" validate:"gt=0"` // e.g. "3s" or "3000"
	Desktop  bool     `toml:"desktop"`                  // Mirror alerts to the desktop notification service
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	Locale   string `toml:"locale" validate:"oneof=en he"`
	ShowHelp bool   `toml:"show_help"`
	Teacher  string `toml:"teacher" validate:"max=80"` // Stamped on sent good points
}

// ListConfig holds default list filtering and sorting.
type ListConfig struct {
	Since     string `toml:"since" validate:"duration"` // 0 = all time
	Limit     int    `toml:"limit" validate:"gte=0"`    // 0 = unlimited
	SortField string `toml:"sort_field" validate:"oneof=time student class"`
	SortOrder string `toml:"sort_order" validate:"oneof=asc desc"`
}

// PruneConfig holds default prune options.
type PruneConfig struct {
	OlderThan string `toml:"older_than" validate:"duration"`
	Keep      int    `toml:"keep" validate:"gte=0"` // 0 = unlimited
}

// TemplatesConfig holds output templates.
type TemplatesConfig struct {
	Plain  string            `toml:"plain"`
	Full   string            `toml:"full"`
	Custom map[string]string `toml:"custom"`
}

// DefaultPresets are offered when the config file has none.
func DefaultPresets() []model.Preset {
	return []model.Preset{
		{ID: "p1", Text: "Great participation in class today", Category: "participation"},
		{ID: "p2", Text: "Helped a classmate without being asked", Category: "kindness"},
		{ID: "p3", Text: "Handed in excellent homework", Category: "homework"},
		{ID: "p4", Text: "Showed real effort and did not give up", Category: "effort"},
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Alert: AlertConfig{
			Duration: Duration(DefaultAlertDuration),
			Desktop:  false,
		},
		UI: UIConfig{
			Locale:   DefaultLocale,
			ShowHelp: true,
		},
		List: ListConfig{
			Since:     DefaultSince,
			Limit:     0,
			SortField: DefaultSortField,
			SortOrder: DefaultSortOrder,
		},
		Prune: PruneConfig{
			OlderThan: DefaultOlderThan,
			Keep:      0,
		},
		Templates: TemplatesConfig{
			Plain:  DefaultPlainTmpl,
			Full:   DefaultFullTmpl,
			Custom: make(map[string]string),
		},
		Presets: DefaultPresets(),
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "goodpoints", "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "goodpoints")
}

// HistoryPath returns the path to the good points JSONL file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "goodpoints.jsonl")
}

// RosterPath returns the path to the classes and students file.
func RosterPath() string {
	return filepath.Join(DataPath(), "roster.yaml")
}

// TombstonePath returns the path to the deleted good points file.
func TombstonePath() string {
	return filepath.Join(DataPath(), "tombstones.json")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	// A file that lists presets replaces the defaults.
	cfg.Presets = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if len(cfg.Presets) == 0 {
		cfg.Presets = DefaultPresets()
	}
	cfg.assignPresetIDs()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration. Field failures are *validate.Error.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// assignPresetIDs gives presets without an ID a positional one ("p1", "p2", ...).
func (c *Config) assignPresetIDs() {
	for i := range c.Presets {
		if c.Presets[i].ID == "" {
			c.Presets[i].ID = fmt.Sprintf("p%d", i+1)
		}
	}
}

// Preset returns the preset with the given ID, or nil.
func (c *Config) Preset(id string) *model.Preset {
	for i := range c.Presets {
		if c.Presets[i].ID == id {
			return &c.Presets[i]
		}
	}
	return nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// GetTemplate returns the template for the given name.
// First checks custom templates, then built-in ones.
// Returns empty string if not found.
func (c *Config) GetTemplate(name string) string {
	if tmpl, ok := c.Templates.Custom[name]; ok {
		return tmpl
	}

	switch name {
	case "plain":
		return c.Templates.Plain
	case "full":
		return c.Templates.Full
	default:
		return ""
	}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
