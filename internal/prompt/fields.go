package prompt

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/messages"
)

// Sentinel select values. Parentheses cannot appear in a scope name, so
// neither collides with a configured scope.
const (
	customScopeValue = "(custom)"
	emptyScopeValue  = ""
)

var (
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true)
	overStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// typeOptions labels each type as "key: description" with the descriptions
// aligned in one column.
func typeOptions(types []commit.TypeDefinition) []huh.Option[string] {
	pad := 0
	for _, t := range types {
		pad = max(pad, runewidth.StringWidth(t.Key))
	}

	opts := make([]huh.Option[string], 0, len(types))
	for _, t := range types {
		label := t.Key
		if t.Description != "" {
			label = runewidth.FillRight(t.Key+":", pad+2) + t.Description
		}
		opts = append(opts, huh.NewOption(label, t.Key))
	}
	return opts
}

// scopeOptions lists the empty choice first, then the configured scopes,
// then the custom entry when free-form scopes are allowed.
func scopeOptions(names []string, allowCustom bool, cat *messages.Catalog) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(names)+2)
	opts = append(opts, huh.NewOption(cat.Label(messages.LabelEmptyScope, nil), emptyScopeValue))
	for _, n := range names {
		opts = append(opts, huh.NewOption(n, n))
	}
	if allowCustom {
		opts = append(opts, huh.NewOption(cat.Label(messages.LabelCustomScope, nil), customScopeValue))
	}
	return opts
}

// headerUsage is the live "n/max" counter under the subject input.
func (p *Prompter) headerUsage() string {
	width := p.opts.Composer.HeaderWidth(p.answers)
	limit := p.opts.Composer.Limits().MaxHeaderWidth
	data := map[string]any{"Width": width, "Max": limit}
	if width > limit {
		return overStyle.Render(p.opts.Catalog.Label(messages.LabelHeaderOver, data))
	}
	return p.opts.Catalog.Label(messages.LabelHeaderWidth, data)
}

// validateSubject rejects an empty subject and a header over the width
// limit, keeping the user on the input until both hold.
func (p *Prompter) validateSubject(s string) error {
	a := p.answers
	a.Subject = s
	for _, ve := range p.opts.Composer.Check(a) {
		switch {
		case errors.Is(ve, commit.ErrEmptySubject), errors.Is(ve, commit.ErrMultilineSubject):
			return ve.Err
		case errors.Is(ve, commit.ErrHeaderTooLong):
			return errors.New(p.opts.Catalog.Label(messages.LabelHeaderOver, map[string]any{
				"Width": p.opts.Composer.HeaderWidth(a),
				"Max":   p.opts.Composer.Limits().MaxHeaderWidth,
			}))
		}
	}
	return nil
}

// validateScope checks a free-form scope against the allow-list and the
// characters a header cannot carry.
func (p *Prompter) validateScope(s string) error {
	a := p.answers
	a.Scope = s
	for _, ve := range p.opts.Composer.Check(a) {
		if errors.Is(ve, commit.ErrInvalidScope) || errors.Is(ve, commit.ErrDisallowedScope) {
			return ve
		}
	}
	return nil
}

// RenderPreview frames msg with its header in bold, as shown on the
// confirmation page.
func RenderPreview(msg string) string {
	header, rest, found := strings.Cut(msg, "\n")
	out := headerStyle.Render(header)
	if found {
		out += "\n" + rest
	}
	return previewStyle.Render(out)
}
