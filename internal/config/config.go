// Package config loads, layers and validates .quill.toml and .quill.yaml files.
package config

// Config is the top-level configuration structure mapping to .quill.toml
// (or .quill.yaml). Boolean fields are pointers so that a file can set them
// to false explicitly; Resolve always fills them in.
type Config struct {
	MaxHeaderWidth            int                      `toml:"max_header_width" yaml:"max_header_width" validate:"gt=0"`
	MaxLineWidth              int                      `toml:"max_line_width" yaml:"max_line_width" validate:"gt=0"`
	AllowCustomScopes         *bool                    `toml:"allow_custom_scopes" yaml:"allow_custom_scopes"`
	AllowBreakingChanges      []string                 `toml:"allow_breaking_changes" yaml:"allow_breaking_changes" validate:"dive,required"`
	SkipQuestions             []string                 `toml:"skip_questions" yaml:"skip_questions" validate:"dive,oneof=scope body breaking footer"`
	BreaklineChar             string                   `toml:"breakline_char" yaml:"breakline_char" validate:"required"`
	FooterPrefix              string                   `toml:"footer_prefix" yaml:"footer_prefix"`
	UpperCaseSubject          *bool                    `toml:"upper_case_subject" yaml:"upper_case_subject"`
	AskForBreakingChangeFirst *bool                    `toml:"ask_for_breaking_change_first" yaml:"ask_for_breaking_change_first"`
	Language                  string                   `toml:"language" yaml:"language" validate:"omitempty,bcp47_language_tag"`
	Types                     []TypeConfig             `toml:"types" yaml:"types" validate:"min=1,unique=Key,dive"`
	Scopes                    []ScopeConfig            `toml:"scopes" yaml:"scopes" validate:"unique=Name,dive"`
	ScopeOverrides            map[string][]ScopeConfig `toml:"scope_overrides" yaml:"scope_overrides" validate:"dive,dive"`
	Messages                  map[string]string        `toml:"messages" yaml:"messages"`
	Ticket                    TicketConfig             `toml:"ticket" yaml:"ticket"`
}

// TypeConfig maps to a [[types]] entry.
type TypeConfig struct {
	Key         string `toml:"key" yaml:"key" validate:"required,excludesall= ()!:"`
	Description string `toml:"description" yaml:"description"`
}

// ScopeConfig maps to a [[scopes]] entry or a scope_overrides list item.
// Paths are doublestar globs used to pre-select the scope from staged files.
type ScopeConfig struct {
	Name  string   `toml:"name" yaml:"name" validate:"required,excludesall= ()"`
	Paths []string `toml:"paths" yaml:"paths"`
}

// TicketConfig maps to the [ticket] section. When enabled, a ticket
// reference is extracted from the current branch name and offered as the
// default issues answer.
type TicketConfig struct {
	Enabled *bool  `toml:"enabled" yaml:"enabled"`
	Prefix  string `toml:"prefix" yaml:"prefix"`
	Pattern string `toml:"pattern" yaml:"pattern"`
}

// Skippable question names accepted by skip_questions.
const (
	QuestionScope    = "scope"
	QuestionBody     = "body"
	QuestionBreaking = "breaking"
	QuestionFooter   = "footer"
)

// Skips reports whether question is listed in skip_questions.
func (c *Config) Skips(question string) bool {
	for _, q := range c.SkipQuestions {
		if q == question {
			return true
		}
	}
	return false
}

// ScopeNames returns the names of the top-level scopes in config order.
func (c *Config) ScopeNames() []string {
	return scopeNames(c.Scopes)
}

// TicketEnabled reports whether ticket extraction is switched on.
func (c *Config) TicketEnabled() bool {
	return boolValue(c.Ticket.Enabled)
}

// BreakingChangeFirst reports whether the breaking-change question is asked
// before the body.
func (c *Config) BreakingChangeFirst() bool {
	return boolValue(c.AskForBreakingChangeFirst)
}

func scopeNames(scopes []ScopeConfig) []string {
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		names = append(names, s.Name)
	}
	return names
}

func boolValue(p *bool) bool {
	return p != nil && *p
}

func boolPtr(b bool) *bool {
	return &b
}
