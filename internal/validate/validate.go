// Package validate wraps go-playground/validator with English field messages.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	std        *validator.Validate
	translator ut.Translator
)

func init() {
	std = validator.New(validator.WithRequiredStructEnabled())

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(std, translator)

	// Report file keys rather than Go field names.
	std.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"toml", "yaml", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// Register adds a custom validation tag with an English message. The
// message may use {0} for the field name. Call it from an init function;
// registration is not safe once validation has started.
func Register(tag string, fn validator.Func, text string) {
	_ = std.RegisterValidation(tag, fn)
	_ = std.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldError is a single failed field.
type FieldError struct {
	Path    string // dotted path below the validated struct, e.g. "alert.duration"
	Message string
}

// Error is returned by Struct when one or more fields fail.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for a path, or "".
func (e *Error) Field(path string) string {
	for _, f := range e.Fields {
		if f.Path == path {
			return f.Message
		}
	}
	return ""
}

// Struct validates s. Field failures are returned as *Error.
func Struct(s any) error {
	err := std.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		out.Fields = append(out.Fields, FieldError{
			Path:    path,
			Message: fe.Translate(translator),
		})
	}
	return out
}
