package commit

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// Composer validates answers against a fixed rule set and renders them.
// A Composer is immutable after construction and safe for concurrent use.
type Composer struct {
	rules    Rules
	typeKeys []string
	typeSet  map[string]struct{}
	breaking map[string]struct{}
}

// NewComposer builds a Composer from rules. It fails when the limits are not
// positive or when type keys are empty or duplicated.
func NewComposer(rules Rules) (*Composer, error) {
	if rules.Limits.MaxHeaderWidth <= 0 {
		return nil, fmt.Errorf("commit: max header width must be positive, got %d", rules.Limits.MaxHeaderWidth)
	}
	if rules.Limits.MaxLineWidth <= 0 {
		return nil, fmt.Errorf("commit: max line width must be positive, got %d", rules.Limits.MaxLineWidth)
	}
	if len(rules.Types) == 0 {
		return nil, errors.New("commit: at least one type is required")
	}

	c := &Composer{
		rules:    copyRules(rules),
		typeKeys: make([]string, 0, len(rules.Types)),
		typeSet:  make(map[string]struct{}, len(rules.Types)),
		breaking: make(map[string]struct{}, len(rules.AllowBreakingChanges)),
	}
	for i, t := range rules.Types {
		if strings.TrimSpace(t.Key) == "" {
			return nil, fmt.Errorf("commit: type %d has an empty key", i)
		}
		if _, dup := c.typeSet[t.Key]; dup {
			return nil, fmt.Errorf("commit: duplicate type key %q", t.Key)
		}
		c.typeSet[t.Key] = struct{}{}
		c.typeKeys = append(c.typeKeys, t.Key)
	}
	for _, k := range rules.AllowBreakingChanges {
		c.breaking[k] = struct{}{}
	}
	if c.rules.BreaklineChar == "" {
		c.rules.BreaklineChar = DefaultBreaklineChar
	}
	return c, nil
}

// Types returns the configured types in display order.
func (c *Composer) Types() []TypeDefinition {
	return slices.Clone(c.rules.Types)
}

// Limits returns the configured formatting limits.
func (c *Composer) Limits() Limits {
	return c.rules.Limits
}

// ScopesFor returns the scope allow-list that applies to typeKey.
func (c *Composer) ScopesFor(typeKey string) []string {
	if override, ok := c.rules.ScopeOverrides[typeKey]; ok {
		return slices.Clone(override)
	}
	return slices.Clone(c.rules.Scopes)
}

// CustomScopesAllowed reports whether scopes outside the allow-list are accepted.
func (c *Composer) CustomScopesAllowed() bool {
	return c.rules.AllowCustomScopes
}

// BreakingAllowed reports whether typeKey may carry a breaking-change note.
func (c *Composer) BreakingAllowed(typeKey string) bool {
	_, ok := c.breaking[typeKey]
	return ok
}

// HasType reports whether key is a configured type.
func (c *Composer) HasType(key string) bool {
	_, ok := c.typeSet[key]
	return ok
}

// Validate checks answers and returns the normalized, validated set. On
// failure the first violation is returned as a *ValidationError.
func (c *Composer) Validate(a Answers) (Validated, error) {
	norm := c.normalize(a)
	if errs := c.check(norm); len(errs) > 0 {
		return Validated{}, errs[0]
	}
	return Validated{
		answers:      norm,
		header:       FormatHeader(norm.Type, norm.Scope, norm.Subject),
		lineWidth:    c.rules.Limits.MaxLineWidth,
		breakline:    c.rules.BreaklineChar,
		footerPrefix: c.rules.FooterPrefix,
	}, nil
}

// Check returns every violation in answers, in the order type, subject,
// scope, breaking change, header width. At most one violation is reported
// per field. An empty result means Validate would
// succeed.
func (c *Composer) Check(a Answers) []*ValidationError {
	return c.check(c.normalize(a))
}

// Compose validates and renders answers in one step.
func (c *Composer) Compose(a Answers) (string, error) {
	v, err := c.Validate(a)
	if err != nil {
		return "", err
	}
	return Render(v), nil
}

// HeaderWidth returns the display width of the header the answers would
// produce after normalization.
func (c *Composer) HeaderWidth(a Answers) int {
	norm := c.normalize(a)
	return runewidth.StringWidth(FormatHeader(norm.Type, norm.Scope, norm.Subject))
}

func (c *Composer) check(a Answers) []*ValidationError {
	var errs []*ValidationError

	if !c.HasType(a.Type) {
		errs = append(errs, newValidationError("type", a.Type, ErrUnknownType, c.suggestType(a.Type)))
	}

	switch {
	case a.Subject == "":
		errs = append(errs, newValidationError("subject", a.Subject, ErrEmptySubject, ""))
	case strings.ContainsAny(a.Subject, lineBreaks):
		errs = append(errs, newValidationError("subject", a.Subject, ErrMultilineSubject, ""))
	}

	switch {
	case a.Scope == "":
	case strings.ContainsFunc(a.Scope, invalidScopeRune):
		errs = append(errs, newValidationError("scope", a.Scope, ErrInvalidScope, ""))
	case !c.scopeAllowed(a.Type, a.Scope):
		allowed := c.ScopesFor(a.Type)
		errs = append(errs, newValidationError("scope", a.Scope, ErrDisallowedScope,
			"allowed: "+strings.Join(allowed, ", ")))
	}

	if a.Breaking != "" && !c.BreakingAllowed(a.Type) {
		errs = append(errs, newValidationError("breaking", a.Type, ErrDisallowedBreakingChange, ""))
	}

	header := FormatHeader(a.Type, a.Scope, a.Subject)
	if w := runewidth.StringWidth(header); w > c.rules.Limits.MaxHeaderWidth {
		errs = append(errs, newValidationError("header", header, ErrHeaderTooLong,
			fmt.Sprintf("%d > %d", w, c.rules.Limits.MaxHeaderWidth)))
	}

	return errs
}

// scopeAllowed applies the allow-list. An empty allow-list places no
// restriction.
func (c *Composer) scopeAllowed(typeKey, scope string) bool {
	if c.rules.AllowCustomScopes {
		return true
	}
	allowed := c.ScopesFor(typeKey)
	return len(allowed) == 0 || slices.Contains(allowed, scope)
}

const lineBreaks = "\r\n"

// invalidScopeRune reports runes that would break "type(scope): subject".
func invalidScopeRune(r rune) bool {
	return r == '(' || r == ')' || unicode.IsSpace(r)
}

func (c *Composer) normalize(a Answers) Answers {
	out := Answers{
		Type:     strings.TrimSpace(a.Type),
		Scope:    strings.TrimSpace(a.Scope),
		Subject:  strings.TrimSpace(a.Subject),
		Body:     strings.TrimSpace(a.Body),
		Breaking: strings.TrimSpace(a.Breaking),
		Issues:   strings.TrimSpace(a.Issues),
	}
	if c.rules.UpperCaseSubject {
		out.Subject = upperFirst(out.Subject)
	}
	return out
}

// suggestType returns a "did you mean" hint for an unknown type key.
func (c *Composer) suggestType(key string) string {
	if key == "" {
		return "type is required"
	}
	matches := fuzzy.Find(key, c.typeKeys)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", matches[0].Str)
}

// FormatHeader assembles "type(scope): subject", omitting the scope segment
// when scope is empty.
func FormatHeader(typeKey, scope, subject string) string {
	if scope == "" {
		return typeKey + ": " + subject
	}
	return typeKey + "(" + scope + "): " + subject
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func copyRules(r Rules) Rules {
	out := r
	out.Types = slices.Clone(r.Types)
	out.Scopes = slices.Clone(r.Scopes)
	out.AllowBreakingChanges = slices.Clone(r.AllowBreakingChanges)
	if r.ScopeOverrides != nil {
		out.ScopeOverrides = make(map[string][]string, len(r.ScopeOverrides))
		for k, v := range r.ScopeOverrides {
			out.ScopeOverrides[k] = slices.Clone(v)
		}
	}
	return out
}
