// Package messages holds the prompt text shown while composing a commit.
//
// Each question has a closed Key. Default text is localized through go-i18n
// from the embedded locales/active.<lang>.toml files; a project can replace
// any question through the [messages] table of its config file.
package messages

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Key identifies one prompt question.
type Key string

// Prompt question keys, in the order the questions are asked.
const (
	KeyType          Key = "type"
	KeyScope         Key = "scope"
	KeyCustomScope   Key = "customScope"
	KeySubject       Key = "subject"
	KeyBody          Key = "body"
	KeyBreaking      Key = "breaking"
	KeyFooter        Key = "footer"
	KeyConfirmCommit Key = "confirmCommit"
)

var allKeys = []Key{
	KeyType,
	KeyScope,
	KeyCustomScope,
	KeySubject,
	KeyBody,
	KeyBreaking,
	KeyFooter,
	KeyConfirmCommit,
}

// Keys returns every question key in prompt order.
func Keys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// Lookup maps a config key name to its Key. The match is exact.
func Lookup(name string) (Key, bool) {
	for _, k := range allKeys {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

// Label identifies a piece of UI text that is not a question.
type Label string

// UI labels used by the interactive prompt.
const (
	LabelEmptyScope  Label = "label.emptyScope"
	LabelCustomScope Label = "label.customScope"
	LabelHeaderWidth Label = "label.headerWidth"
	LabelHeaderOver  Label = "label.headerOver"
	LabelPreview     Label = "label.preview"
	LabelYes         Label = "label.yes"
	LabelNo          Label = "label.no"
	LabelCancelled   Label = "label.cancelled"
)

// ErrUnknownKey is returned when an override names a key outside Keys().
var ErrUnknownKey = errors.New("unknown message key")

//go:embed locales/active.*.toml
var localeFS embed.FS

// Options configures a Catalog.
type Options struct {
	// Language is a BCP 47 tag such as "en" or "es". Empty means English.
	Language string
	// Overrides replaces the default text for individual keys.
	Overrides map[string]string
	// Breakline is substituted into the body question.
	Breakline string
}

// Catalog resolves question and label text for one language.
type Catalog struct {
	localizer *i18n.Localizer
	overrides map[Key]string
	breakline string
	lang      language.Tag
}

// NewCatalog loads the embedded locales and applies overrides. Languages
// without a locale file fall back to English.
func NewCatalog(opts Options) (*Catalog, error) {
	tag := language.English
	if opts.Language != "" {
		parsed, err := language.Parse(opts.Language)
		if err != nil {
			return nil, fmt.Errorf("parsing language %q: %w", opts.Language, err)
		}
		tag = parsed
	}

	bundle, err := loadBundle()
	if err != nil {
		return nil, err
	}

	overrides := make(map[Key]string, len(opts.Overrides))
	for name, text := range opts.Overrides {
		k, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}
		overrides[k] = text
	}

	breakline := opts.Breakline
	if breakline == "" {
		breakline = "|"
	}

	return &Catalog{
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
		overrides: overrides,
		breakline: breakline,
		lang:      tag,
	}, nil
}

// Language returns the tag the catalog was built for.
func (c *Catalog) Language() language.Tag {
	return c.lang
}

// Text returns the question text for key: the override when one is set,
// otherwise the localized default.
func (c *Catalog) Text(key Key) string {
	if text, ok := c.overrides[key]; ok {
		return text
	}
	return c.localize(string(key), map[string]any{"Breakline": c.breakline})
}

// Label returns localized UI text, executing its template with data.
func (c *Catalog) Label(l Label, data map[string]any) string {
	return c.localize(string(l), data)
}

func (c *Catalog) localize(id string, data map[string]any) string {
	s, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return s
}

// Languages lists the tags that have an embedded locale file, sorted.
func Languages() []string {
	bundle, err := loadBundle()
	if err != nil {
		return nil
	}
	tags := bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}

func loadBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/active.*.toml")
	if err != nil {
		return nil, fmt.Errorf("listing locales: %w", err)
	}
	for _, name := range files {
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading locale %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
			return nil, fmt.Errorf("parsing locale %s: %w", name, err)
		}
	}
	return bundle, nil
}
