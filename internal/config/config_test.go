package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodpoints/goodpoints/internal/validate"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3*time.Second, cfg.Alert.Duration.Duration())
	assert.False(t, cfg.Alert.Desktop)
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.True(t, cfg.UI.ShowHelp)
	assert.Equal(t, "0", cfg.List.Since)
	assert.Equal(t, 0, cfg.List.Limit)
	assert.Equal(t, "time", cfg.List.SortField)
	assert.Equal(t, "desc", cfg.List.SortOrder)
	assert.Equal(t, "365d", cfg.Prune.OlderThan)
	assert.NotEmpty(t, cfg.Templates.Plain)
	assert.NotEmpty(t, cfg.Templates.Full)
	assert.NotEmpty(t, cfg.Presets)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().List.SortField, cfg.List.SortField)
	assert.Len(t, cfg.Presets, len(DefaultPresets()))
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[alert]
duration = "5s"
desktop = true

[ui]
locale = "he"
show_help = false
teacher = "Ms. Cohen"

[list]
since = "7d"
limit = 50
sort_field = "student"
sort_order = "asc"

[prune]
older_than = "2w"
keep = 500

[templates]
plain = "{{.StudentName}}"

[templates.custom]
short = "{{.Text}}"

[[presets]]
text = "Kind to others"
category = "kindness"

[[presets]]
id = "hw"
text = "Homework on time"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Alert.Duration.Duration())
	assert.True(t, cfg.Alert.Desktop)
	assert.Equal(t, "he", cfg.UI.Locale)
	assert.False(t, cfg.UI.ShowHelp)
	assert.Equal(t, "Ms. Cohen", cfg.UI.Teacher)
	assert.Equal(t, "7d", cfg.List.Since)
	assert.Equal(t, 50, cfg.List.Limit)
	assert.Equal(t, "student", cfg.List.SortField)
	assert.Equal(t, "asc", cfg.List.SortOrder)
	assert.Equal(t, "2w", cfg.Prune.OlderThan)
	assert.Equal(t, 500, cfg.Prune.Keep)
	assert.Equal(t, "{{.StudentName}}", cfg.GetTemplate("plain"))
	assert.Equal(t, "{{.Text}}", cfg.GetTemplate("short"))

	require.Len(t, cfg.Presets, 2, "file presets replace the defaults")
	assert.Equal(t, "p1", cfg.Presets[0].ID)
	assert.Equal(t, "kindness", cfg.Presets[0].Category)
	assert.Equal(t, "hw", cfg.Presets[1].ID)
	require.NotNil(t, cfg.Preset("hw"))
	assert.Equal(t, "Homework on time", cfg.Preset("hw").Text)
	assert.Nil(t, cfg.Preset("nope"))
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[alert]
duration = "1500"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.Alert.Duration.Duration())
	assert.Equal(t, "en", cfg.UI.Locale)
	assert.Equal(t, "time", cfg.List.SortField)
	assert.Len(t, cfg.Presets, len(DefaultPresets()))
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("[alert]\nduration = \"soon\"\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"zero alert duration", func(c *Config) { c.Alert.Duration = 0 }, "alert.duration"},
		{"unknown locale", func(c *Config) { c.UI.Locale = "fr" }, "ui.locale"},
		{"bad since", func(c *Config) { c.List.Since = "yesterday" }, "list.since"},
		{"negative limit", func(c *Config) { c.List.Limit = -1 }, "list.limit"},
		{"bad sort field", func(c *Config) { c.List.SortField = "app" }, "list.sort_field"},
		{"bad sort order", func(c *Config) { c.List.SortOrder = "up" }, "list.sort_order"},
		{"bad older_than", func(c *Config) { c.Prune.OlderThan = "old" }, "prune.older_than"},
		{"empty preset", func(c *Config) { c.Presets[0].Text = "" }, "presets[0].text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			var verr *validate.Error
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.NotEmpty(t, verr.Field(tt.path), "fields: %+v", verr.Fields)
		})
	}
}

func TestLoadConfig_ValidationError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("[ui]\nlocale = \"fr\"\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locale must be one of [en he]")
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.List.Since = "1h"
	cfg.Alert.Duration = Duration(4 * time.Second)
	cfg.Templates.Custom["test"] = "custom template"

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "1h", loaded.List.Since)
	assert.Equal(t, 4*time.Second, loaded.Alert.Duration.Duration())
	assert.Equal(t, "custom template", loaded.Templates.Custom["test"])
	assert.Equal(t, cfg.Presets, loaded.Presets)
}

func TestConfig_GetTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Templates.Custom["mytemplate"] = "custom: {{.Text}}"

	tests := []struct {
		name     string
		expected string
	}{
		{"plain", cfg.Templates.Plain},
		{"full", cfg.Templates.Full},
		{"mytemplate", "custom: {{.Text}}"},
		{"nonexistent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.GetTemplate(tt.name))
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"3s", 3 * time.Second, false},
		{"1500ms", 1500 * time.Millisecond, false},
		{"2000", 2 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/goodpoints/config.toml", ConfigPath())
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/goodpoints", DataPath())
	assert.Equal(t, "/custom/data/goodpoints/goodpoints.jsonl", HistoryPath())
	assert.Equal(t, "/custom/data/goodpoints/roster.yaml", RosterPath())
}

func TestEnsureDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	require.NoError(t, EnsureDataDir())

	info, err := os.Stat(filepath.Join(dir, "goodpoints"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
