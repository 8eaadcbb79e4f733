package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"

	"github.com/AbdelazizMoustafa10m/quill/internal/messages"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // config key, e.g. "types[2].key"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// structValidator checks the validate:"..." tags on Config. Field names in
// its errors are the toml key names.
var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for correctness and completeness.
// It performs structural validation (struct tags), semantic validation, and
// unknown key detection.
//
// Parameters:
//   - cfg: the configuration to validate
//   - meta: TOML metadata from BurntSushi/toml (nil if no TOML file was loaded)
//
// Returns validation results. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateStruct(vr, cfg)
	validateTypeReferences(vr, cfg)
	validateScopes(vr, cfg)
	validateMessages(vr, cfg.Messages)
	validateTicket(vr, &cfg.Ticket)
	validateWidths(vr, cfg)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateStruct runs the struct-tag rules and turns each failure into an
// error issue keyed by its config path.
func validateStruct(vr *ValidationResult, cfg *Config) {
	err := structValidator.Struct(cfg)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		addError(vr, "", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		addError(vr, fieldPath(fe), formatFieldError(fe))
	}
}

// fieldPath strips the root struct name from a validator namespace,
// "Config.types[0].key" becoming "types[0].key".
func fieldPath(fe validator.FieldError) string {
	_, rest, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return rest
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("must have at least %s entry", fe.Param())
	case "unique":
		return fmt.Sprintf("duplicate %s values", strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("unrecognized value %q; must be one of: %s",
			fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "excludesall":
		return fmt.Sprintf("%q must not contain spaces, parentheses, \"!\" or \":\"", fe.Value())
	case "bcp47_language_tag":
		return fmt.Sprintf("invalid language tag %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// validateTypeReferences warns about allow_breaking_changes and
// scope_overrides entries that name a type not declared in [[types]].
func validateTypeReferences(vr *ValidationResult, cfg *Config) {
	known := make(map[string]bool, len(cfg.Types))
	for _, t := range cfg.Types {
		known[t.Key] = true
	}

	for i, key := range cfg.AllowBreakingChanges {
		if key != "" && !known[key] {
			addWarning(vr, fmt.Sprintf("allow_breaking_changes[%d]", i),
				fmt.Sprintf("references undefined type %q", key))
		}
	}
	for typeKey := range cfg.ScopeOverrides {
		if !known[typeKey] {
			addWarning(vr, "scope_overrides."+typeKey,
				fmt.Sprintf("references undefined type %q", typeKey))
		}
	}
}

// validateScopes checks scope path globs and warns when allow_custom_scopes
// is off but there is no list for it to close.
func validateScopes(vr *ValidationResult, cfg *Config) {
	checkGlobs := func(prefix string, scopes []ScopeConfig) {
		for i, s := range scopes {
			for j, p := range s.Paths {
				if !doublestar.ValidatePattern(p) {
					addError(vr, fmt.Sprintf("%s[%d].paths[%d]", prefix, i, j),
						fmt.Sprintf("invalid glob pattern %q", p))
				}
			}
		}
	}
	checkGlobs("scopes", cfg.Scopes)
	for typeKey, scopes := range cfg.ScopeOverrides {
		checkGlobs("scope_overrides."+typeKey, scopes)
	}

	if !boolValue(cfg.AllowCustomScopes) && len(cfg.Scopes) == 0 && cfg.AllowCustomScopes != nil {
		addWarning(vr, "allow_custom_scopes",
			"custom scopes are disabled but no scopes are listed; any scope is still accepted")
	}
}

// validateMessages rejects [messages] keys that do not name a prompt question.
func validateMessages(vr *ValidationResult, msgs map[string]string) {
	for key := range msgs {
		if _, ok := messages.Lookup(key); !ok {
			names := make([]string, 0)
			for _, k := range messages.Keys() {
				names = append(names, string(k))
			}
			addError(vr, "messages."+key,
				fmt.Sprintf("unknown message key; must be one of: %s", strings.Join(names, ", ")))
		}
	}
}

// validateTicket checks the [ticket] pattern compiles when extraction is on.
func validateTicket(vr *ValidationResult, t *TicketConfig) {
	if t.Pattern != "" {
		if _, err := regexp.Compile(t.Pattern); err != nil {
			addError(vr, "ticket.pattern",
				fmt.Sprintf("invalid regex %q: %v", t.Pattern, err))
		}
	}
	if boolValue(t.Enabled) && t.Pattern == "" {
		addError(vr, "ticket.pattern", "must not be empty when ticket.enabled is true")
	}
}

// validateWidths warns when the header budget cannot fit the longest type
// with a one-character subject.
func validateWidths(vr *ValidationResult, cfg *Config) {
	if cfg.MaxHeaderWidth <= 0 {
		return
	}
	longest := ""
	for _, t := range cfg.Types {
		if len(t.Key) > len(longest) {
			longest = t.Key
		}
	}
	if need := len(longest) + len(": x"); longest != "" && need > cfg.MaxHeaderWidth {
		addWarning(vr, "max_header_width",
			fmt.Sprintf("%d is too small for type %q (needs at least %d)", cfg.MaxHeaderWidth, longest, need))
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
