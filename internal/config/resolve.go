package config

import (
	"strconv"

	"github.com/charmbracelet/log"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is the config key, e.g. "max_line_width"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration.
// A nil field means "not set" (do not override).
type CLIOverrides struct {
	MaxHeaderWidth *int
	MaxLineWidth   *int
	Language       *string
	BreaklineChar  *string
	FooterPrefix   *string
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Environment variables read by Resolve.
const (
	EnvMaxHeaderWidth    = "QUILL_MAX_HEADER_WIDTH"
	EnvMaxLineWidth      = "QUILL_MAX_LINE_WIDTH"
	EnvLanguage          = "QUILL_LANGUAGE"
	EnvBreaklineChar     = "QUILL_BREAKLINE_CHAR"
	EnvFooterPrefix      = "QUILL_FOOTER_PREFIX"
	EnvAllowCustomScopes = "QUILL_ALLOW_CUSTOM_SCOPES"
)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// Parameters:
//   - defaults: built-in default config (from NewDefaults())
//   - fileConfig: parsed config file (nil if no file found)
//   - envFn: function to look up environment variables
//   - overrides: CLI flag values (nil fields mean "not set")
//
// Returns the fully-resolved config with source annotations.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	// Layer 1: defaults are copied unconditionally.
	mergeLayer(rc, defaults, SourceDefault, true)

	// Layer 2: file values override when set. Empty strings, zero ints and
	// nil slices or pointers mean "not set in file".
	if fileConfig != nil {
		mergeLayer(rc, fileConfig, SourceFile, false)
	}

	// Layer 3: environment variables.
	resolveFromEnv(rc, envFn)

	// Layer 4: CLI overrides.
	resolveFromCLI(rc, overrides)

	return rc
}

// mergeLayer copies src into rc.Config. When force is true every field is
// copied; otherwise only fields that src actually sets.
func mergeLayer(rc *ResolvedConfig, src *Config, source ConfigSource, force bool) {
	c := rc.Config
	s := rc.Sources

	mergeInt(&c.MaxHeaderWidth, src.MaxHeaderWidth, "max_header_width", source, s, force)
	mergeInt(&c.MaxLineWidth, src.MaxLineWidth, "max_line_width", source, s, force)
	mergeBool(&c.AllowCustomScopes, src.AllowCustomScopes, "allow_custom_scopes", source, s, force)
	mergeStrings(&c.AllowBreakingChanges, src.AllowBreakingChanges, "allow_breaking_changes", source, s, force)
	mergeStrings(&c.SkipQuestions, src.SkipQuestions, "skip_questions", source, s, force)
	mergeString(&c.BreaklineChar, src.BreaklineChar, "breakline_char", source, s, force)
	mergeString(&c.FooterPrefix, src.FooterPrefix, "footer_prefix", source, s, force)
	mergeBool(&c.UpperCaseSubject, src.UpperCaseSubject, "upper_case_subject", source, s, force)
	mergeBool(&c.AskForBreakingChangeFirst, src.AskForBreakingChangeFirst, "ask_for_breaking_change_first", source, s, force)
	mergeString(&c.Language, src.Language, "language", source, s, force)

	if force || src.Types != nil {
		c.Types = make([]TypeConfig, len(src.Types))
		copy(c.Types, src.Types)
		s["types"] = source
	}
	if force || src.Scopes != nil {
		c.Scopes = copyScopes(src.Scopes)
		s["scopes"] = source
	}

	// Maps merge per key so a file can extend the defaults.
	if c.ScopeOverrides == nil {
		c.ScopeOverrides = make(map[string][]ScopeConfig)
	}
	for typeKey, scopes := range src.ScopeOverrides {
		c.ScopeOverrides[typeKey] = copyScopes(scopes)
		s["scope_overrides."+typeKey] = source
	}
	if c.Messages == nil {
		c.Messages = make(map[string]string)
	}
	for key, text := range src.Messages {
		c.Messages[key] = text
		s["messages."+key] = source
	}

	mergeBool(&c.Ticket.Enabled, src.Ticket.Enabled, "ticket.enabled", source, s, force)
	mergeString(&c.Ticket.Prefix, src.Ticket.Prefix, "ticket.prefix", source, s, force)
	mergeString(&c.Ticket.Pattern, src.Ticket.Pattern, "ticket.pattern", source, s, force)
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	QUILL_MAX_HEADER_WIDTH     -> max_header_width
//	QUILL_MAX_LINE_WIDTH       -> max_line_width
//	QUILL_LANGUAGE             -> language
//	QUILL_BREAKLINE_CHAR       -> breakline_char
//	QUILL_FOOTER_PREFIX        -> footer_prefix
//	QUILL_ALLOW_CUSTOM_SCOPES  -> allow_custom_scopes
//
// Values that fail to parse are ignored with a warning.
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	c := rc.Config

	if val, ok := envFn(EnvMaxHeaderWidth); ok {
		setIntFromEnv(&c.MaxHeaderWidth, EnvMaxHeaderWidth, val, "max_header_width", rc.Sources)
	}
	if val, ok := envFn(EnvMaxLineWidth); ok {
		setIntFromEnv(&c.MaxLineWidth, EnvMaxLineWidth, val, "max_line_width", rc.Sources)
	}
	if val, ok := envFn(EnvLanguage); ok {
		c.Language = val
		rc.Sources["language"] = SourceEnv
	}
	if val, ok := envFn(EnvBreaklineChar); ok {
		c.BreaklineChar = val
		rc.Sources["breakline_char"] = SourceEnv
	}
	if val, ok := envFn(EnvFooterPrefix); ok {
		c.FooterPrefix = val
		rc.Sources["footer_prefix"] = SourceEnv
	}
	if val, ok := envFn(EnvAllowCustomScopes); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			log.Warn("ignoring invalid environment value", "var", EnvAllowCustomScopes, "value", val)
		} else {
			c.AllowCustomScopes = boolPtr(b)
			rc.Sources["allow_custom_scopes"] = SourceEnv
		}
	}
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	c := rc.Config

	if overrides.MaxHeaderWidth != nil {
		c.MaxHeaderWidth = *overrides.MaxHeaderWidth
		rc.Sources["max_header_width"] = SourceCLI
	}
	if overrides.MaxLineWidth != nil {
		c.MaxLineWidth = *overrides.MaxLineWidth
		rc.Sources["max_line_width"] = SourceCLI
	}
	if overrides.Language != nil {
		c.Language = *overrides.Language
		rc.Sources["language"] = SourceCLI
	}
	if overrides.BreaklineChar != nil {
		c.BreaklineChar = *overrides.BreaklineChar
		rc.Sources["breakline_char"] = SourceCLI
	}
	if overrides.FooterPrefix != nil {
		c.FooterPrefix = *overrides.FooterPrefix
		rc.Sources["footer_prefix"] = SourceCLI
	}
}

// --- Helpers ---

// mergeString overwrites the target if value is non-empty or force is set.
// For file-layer merging, an empty string in the file means "not set in file",
// so it does not override the default.
func mergeString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource, force bool) {
	if force || value != "" {
		*target = value
		sources[path] = source
	}
}

func mergeInt(target *int, value int, path string, source ConfigSource, sources map[string]ConfigSource, force bool) {
	if force || value != 0 {
		*target = value
		sources[path] = source
	}
}

func mergeBool(target **bool, value *bool, path string, source ConfigSource, sources map[string]ConfigSource, force bool) {
	if value != nil {
		*target = boolPtr(*value)
		sources[path] = source
	} else if force {
		*target = boolPtr(false)
		sources[path] = source
	}
}

// mergeStrings replaces the target when the layer sets the list. An explicit
// empty list in the file clears the default.
func mergeStrings(target *[]string, value []string, path string, source ConfigSource, sources map[string]ConfigSource, force bool) {
	if force || value != nil {
		out := make([]string, len(value))
		copy(out, value)
		*target = out
		sources[path] = source
	}
}

func setIntFromEnv(target *int, name, val, path string, sources map[string]ConfigSource) {
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Warn("ignoring invalid environment value", "var", name, "value", val)
		return
	}
	*target = n
	sources[path] = SourceEnv
}

func copyScopes(src []ScopeConfig) []ScopeConfig {
	if src == nil {
		return []ScopeConfig{}
	}
	out := make([]ScopeConfig, len(src))
	for i, s := range src {
		out[i] = ScopeConfig{Name: s.Name}
		if s.Paths != nil {
			out[i].Paths = make([]string, len(s.Paths))
			copy(out[i].Paths, s.Paths)
		}
	}
	return out
}
