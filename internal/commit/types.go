// Package commit validates structured commit answers and renders them into
// conventional-commit messages.
//
// The package is pure: a Composer is built once from immutable Rules and may
// be shared by any number of goroutines. Validate and Render never perform I/O
// and always produce the same output for the same input.
package commit

// TypeDefinition describes one selectable commit type, e.g. "feat".
type TypeDefinition struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// Limits bounds the width of the rendered message.
type Limits struct {
	// MaxHeaderWidth is the maximum display width of "type(scope): subject".
	MaxHeaderWidth int `json:"max_header_width"`
	// MaxLineWidth is the wrap column for body and breaking-change lines.
	MaxLineWidth int `json:"max_line_width"`
}

// Answers is the raw answer set collected by the prompt layer or from flags.
// Empty strings mean "not answered".
type Answers struct {
	Type     string `json:"type"`
	Scope    string `json:"scope,omitempty"`
	Subject  string `json:"subject"`
	Body     string `json:"body,omitempty"`
	Breaking string `json:"breaking,omitempty"`
	Issues   string `json:"issues,omitempty"`
}

// Rules is the complete constraint and formatting set a Composer enforces.
type Rules struct {
	Types  []TypeDefinition
	Limits Limits

	// Scopes is the allow-list of scopes. Empty means unrestricted when
	// AllowCustomScopes is true.
	Scopes []string
	// ScopeOverrides replaces Scopes for the given type keys.
	ScopeOverrides    map[string][]string
	AllowCustomScopes bool

	// AllowBreakingChanges lists the type keys that may carry a
	// breaking-change note. Empty means no type may.
	AllowBreakingChanges []string

	// BreaklineChar is replaced by a line break in body and breaking text.
	// Defaults to "|".
	BreaklineChar string
	// FooterPrefix is written before the issues text, e.g. "ISSUES CLOSED:".
	FooterPrefix string
	// UpperCaseSubject capitalises the first letter of the subject.
	UpperCaseSubject bool
}

// DefaultBreaklineChar is used when Rules.BreaklineChar is empty.
const DefaultBreaklineChar = "|"

// BreakingChangePrefix starts the breaking-change footer.
const BreakingChangePrefix = "BREAKING CHANGE: "

// Validated is an answer set that passed validation. It can only be produced
// by Composer.Validate and carries the formatting settings Render needs.
type Validated struct {
	answers      Answers
	header       string
	lineWidth    int
	breakline    string
	footerPrefix string
}

// Answers returns a copy of the normalized answers.
func (v Validated) Answers() Answers {
	return v.answers
}

// Header returns the assembled header line.
func (v Validated) Header() string {
	return v.header
}
