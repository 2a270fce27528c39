package popup

import (
	"context"
	"fmt"
	"strings"

	"github.com/goodpoints/goodpoints/internal/i18n"
)

// Kind is the semantic category of a popup.
type Kind string

const (
	KindRegular       Kind = "regular"
	KindError         Kind = "error"
	KindSuccessSave   Kind = "success_save"
	KindSuccessDelete Kind = "success_delete"
	KindAreYouSure    Kind = "are_u_sure"
	KindSave          Kind = "save"
	KindDelete        Kind = "delete"
	KindClose         Kind = "close"
)

// Kinds lists every known kind.
var Kinds = []Kind{
	KindRegular,
	KindError,
	KindSuccessSave,
	KindSuccessDelete,
	KindAreYouSure,
	KindSave,
	KindDelete,
	KindClose,
}

// Known reports whether k is one of Kinds.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind parses a kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Known() {
		return "", fmt.Errorf("unknown popup kind %q", s)
	}
	return k, nil
}

// NormalizeKind maps the confirmation variants (save, delete, close) to
// KindAreYouSure. Other kinds are returned unchanged.
func NormalizeKind(k Kind) Kind {
	switch k {
	case KindSave, KindDelete, KindClose:
		return KindAreYouSure
	default:
		return k
	}
}

// actionKey returns the text key for the verb of a confirmation kind.
func actionKey(k Kind) string {
	switch k {
	case KindSave:
		return i18n.KeyActionSave
	case KindDelete:
		return i18n.KeyActionDelete
	case KindClose:
		return i18n.KeyActionClose
	default:
		return i18n.KeyActionContinue
	}
}

// ConfirmFunc runs when the user accepts a popup.
type ConfirmFunc func(ctx context.Context) error

// Request is a fully resolved popup.
type Request struct {
	Kind            Kind
	Title           string
	Content         any // opaque view payload, rendered by the host
	OkayText        string
	CancelText      string
	ShowOkay        bool
	ShowCancel      bool
	OnConfirm       ConfirmFunc
	OnCancel        func()
	Deleting        bool
	CheckboxText    string
	CheckboxWarning string
	ShowLoading     bool
	ClassName       string
}

// Gated reports whether accepting requires the checkbox to be ticked.
func (r *Request) Gated() bool {
	return r.CheckboxText != ""
}

// Partial holds the caller-supplied fields of a popup. Zero values mean
// "use the default for the kind"; booleans whose default depends on the
// kind are pointers.
type Partial struct {
	Title           string
	Content         any
	OkayText        string
	CancelText      string
	ShowCancel      *bool
	OnConfirm       ConfirmFunc
	OnCancel        func()
	Deleting        *bool
	CheckboxText    string
	CheckboxWarning string
	ShowLoading     bool
	ClassName       string
}

// Option sets a field of a Partial.
type Option func(*Partial)

// Build applies opts to an empty Partial.
func Build(opts ...Option) Partial {
	var p Partial
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithTitle(title string) Option {
	return func(p *Partial) { p.Title = title }
}

// WithContent sets the body. The coordinator stores it without looking at it.
func WithContent(content any) Option {
	return func(p *Partial) { p.Content = content }
}

func WithOkayText(text string) Option {
	return func(p *Partial) { p.OkayText = text }
}

func WithCancelText(text string) Option {
	return func(p *Partial) { p.CancelText = text }
}

func WithShowCancel(show bool) Option {
	return func(p *Partial) { p.ShowCancel = &show }
}

func WithConfirm(fn ConfirmFunc) Option {
	return func(p *Partial) { p.OnConfirm = fn }
}

func WithCancel(fn func()) Option {
	return func(p *Partial) { p.OnCancel = fn }
}

// WithDeleting overrides whether a success alert follows a confirmed accept.
func WithDeleting(deleting bool) Option {
	return func(p *Partial) { p.Deleting = &deleting }
}

// WithCheckbox gates accept on a ticked checkbox. warning is shown when
// the user accepts without ticking it.
func WithCheckbox(text, warning string) Option {
	return func(p *Partial) {
		p.CheckboxText = text
		p.CheckboxWarning = warning
	}
}

// WithLoading makes the coordinator track the confirm callback as loading.
func WithLoading() Option {
	return func(p *Partial) { p.ShowLoading = true }
}

func WithClassName(name string) Option {
	return func(p *Partial) { p.ClassName = name }
}

// Resolve turns a kind and the caller's fields into a complete Request.
//
//	kind                        title                  okay       cancel  deleting
//	regular                     caller                 caller/ok  caller  false
//	error                       caller                 go back    caller  false
//	success_save                saved successfully     ok         false   false
//	success_delete              deleted successfully   ok         false   false
//	are_u_sure/save/delete/close are you sure ...      caller/ok  true    delete only
//
// Caller-supplied fields always win. An unknown kind resolves to an empty
// popup without buttons.
func Resolve(kind Kind, p Partial, tr i18n.Translator) Request {
	if !kind.Known() {
		return Request{Kind: kind, ClassName: p.ClassName}
	}

	r := Request{
		Kind:            kind,
		Title:           p.Title,
		Content:         p.Content,
		OkayText:        p.OkayText,
		CancelText:      p.CancelText,
		ShowOkay:        true,
		OnConfirm:       p.OnConfirm,
		OnCancel:        p.OnCancel,
		CheckboxText:    p.CheckboxText,
		CheckboxWarning: p.CheckboxWarning,
		ShowLoading:     p.ShowLoading,
		ClassName:       p.ClassName,
	}

	showCancel := false
	switch NormalizeKind(kind) {
	case KindError:
		if r.OkayText == "" {
			r.OkayText = tr.T(i18n.KeyGoBack)
		}
	case KindSuccessSave:
		if r.Title == "" {
			r.Title = tr.T(i18n.KeySavedSuccessfully)
		}
	case KindSuccessDelete:
		if r.Title == "" {
			r.Title = tr.T(i18n.KeyDeletedSuccessfully)
		}
	case KindAreYouSure:
		if r.Title == "" {
			r.Title = tr.T(i18n.KeyAreYouSure, tr.T(actionKey(kind)))
		}
		showCancel = true
	}

	if p.ShowCancel != nil {
		showCancel = *p.ShowCancel
	}
	r.ShowCancel = showCancel

	r.Deleting = kind == KindDelete
	if p.Deleting != nil {
		r.Deleting = *p.Deleting
	}

	if r.OkayText == "" {
		r.OkayText = tr.T(i18n.KeyOK)
	}
	if r.ShowCancel && r.CancelText == "" {
		r.CancelText = tr.T(i18n.KeyCancel)
	}
	if r.CheckboxText != "" && r.CheckboxWarning == "" {
		r.CheckboxWarning = r.CheckboxText
	}

	return r
}
