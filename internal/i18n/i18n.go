// Package i18n provides the display strings for goodpoints.
//
// Text tables are embedded YAML files, one per locale, loaded into a
// go-playground universal translator. Lookups never fail: a key missing
// from the active locale falls back to English, and a key missing from
// English is returned as-is.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/he"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/yaml.v3"
)

//go:embed texts/*.yaml
var texts embed.FS

// Supported locales.
const (
	LocaleEnglish = "en"
	LocaleHebrew  = "he"
)

// DefaultLocale is used when the configured locale is unknown.
const DefaultLocale = LocaleEnglish

// Keys shared by the popup and alert coordinators.
const (
	KeyOK                  = "ok"
	KeyCancel              = "cancel"
	KeyGoBack              = "go_back"
	KeySavedSuccessfully   = "saved_successfully"
	KeyDeletedSuccessfully = "deleted_successfully"
	KeyAreYouSure          = "are_you_sure"
	KeyActionSave          = "action_save"
	KeyActionDelete        = "action_delete"
	KeyActionClose         = "action_close"
	KeyActionContinue      = "action_continue"
)

// Translator looks up a display string by key.
// Params replace {0}, {1}, ... placeholders in order.
type Translator interface {
	T(key string, params ...string) string
}

// Catalog is a Translator backed by the embedded text tables.
type Catalog struct {
	locale   string
	trans    ut.Translator
	fallback ut.Translator
}

// New creates a Catalog for the given locale.
// Unknown locales fall back to DefaultLocale.
func New(locale string) (*Catalog, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))

	english := en.New()
	uni := ut.New(english, english, he.New())

	fallback, _ := uni.GetTranslator(LocaleEnglish)
	if err := loadTable(fallback, LocaleEnglish); err != nil {
		return nil, err
	}

	trans, found := uni.GetTranslator(locale)
	if !found || locale == LocaleEnglish {
		return &Catalog{locale: LocaleEnglish, trans: fallback, fallback: fallback}, nil
	}
	if err := loadTable(trans, locale); err != nil {
		return nil, err
	}

	return &Catalog{locale: trans.Locale(), trans: trans, fallback: fallback}, nil
}

// MustNew is like New but panics on error. The embedded tables are
// validated by tests, so this only fails on a broken build.
func MustNew(locale string) *Catalog {
	c, err := New(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Locale returns the active locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// RTL reports whether the active locale is written right to left.
func (c *Catalog) RTL() bool {
	return c.locale == LocaleHebrew
}

// T returns the display string for key.
func (c *Catalog) T(key string, params ...string) string {
	if s, err := c.trans.T(key, params...); err == nil {
		return s
	}
	if c.fallback != c.trans {
		if s, err := c.fallback.T(key, params...); err == nil {
			return s
		}
	}
	return key
}

// Translator exposes the underlying universal translator, used to
// register validator messages.
func (c *Catalog) Translator() ut.Translator {
	return c.trans
}

// Locales returns the locales with an embedded text table.
func Locales() []string {
	return []string{LocaleEnglish, LocaleHebrew}
}

// Table returns the raw text table for a locale.
func Table(locale string) (map[string]string, error) {
	data, err := texts.ReadFile("texts/" + locale + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no text table for locale %q: %w", locale, err)
	}

	table := make(map[string]string)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse text table %q: %w", locale, err)
	}
	return table, nil
}

func loadTable(trans ut.Translator, locale string) error {
	table, err := Table(locale)
	if err != nil {
		return err
	}
	for key, text := range table {
		if err := trans.Add(key, text, true); err != nil {
			return fmt.Errorf("add %s/%s: %w", locale, key, err)
		}
	}
	return nil
}
