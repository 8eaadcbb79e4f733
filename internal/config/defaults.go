package config

// DefaultTypes is the conventional-commit type list used when the config
// file does not declare [[types]].
var DefaultTypes = []TypeConfig{
	{Key: "feat", Description: "A new feature"},
	{Key: "fix", Description: "A bug fix"},
	{Key: "docs", Description: "Documentation only changes"},
	{Key: "style", Description: "Changes that do not affect the meaning of the code"},
	{Key: "refactor", Description: "A code change that neither fixes a bug nor adds a feature"},
	{Key: "perf", Description: "A code change that improves performance"},
	{Key: "test", Description: "Adding missing tests or correcting existing tests"},
	{Key: "chore", Description: "Changes to the build process or auxiliary tools"},
}

// DefaultTicketPattern matches Jira-style keys such as ABC-123.
const DefaultTicketPattern = `[A-Z][A-Z0-9]+-[0-9]+`

// NewDefaults returns a Config populated with all default values.
// Limits follow the 50/72 convention for commit headers and bodies.
func NewDefaults() *Config {
	types := make([]TypeConfig, len(DefaultTypes))
	copy(types, DefaultTypes)
	return &Config{
		MaxHeaderWidth:            50,
		MaxLineWidth:              72,
		AllowCustomScopes:         boolPtr(true),
		AllowBreakingChanges:      []string{"feat", "fix"},
		SkipQuestions:             []string{},
		BreaklineChar:             "|",
		UpperCaseSubject:          boolPtr(false),
		AskForBreakingChangeFirst: boolPtr(false),
		Language:                  "en",
		Types:                     types,
		Scopes:                    []ScopeConfig{},
		ScopeOverrides:            map[string][]ScopeConfig{},
		Messages:                  map[string]string{},
		Ticket: TicketConfig{
			Enabled: boolPtr(false),
			Pattern: DefaultTicketPattern,
		},
	}
}
