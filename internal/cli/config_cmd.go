package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/config"
)

// configCmd groups the configuration inspection subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect, validate, and debug quill configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "quill config debug".
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Display the fully-resolved configuration showing each value and
the source where it came from (cli flag, environment variable, config file, or default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig(cmd)
		if err != nil {
			return err
		}
		printResolvedConfig(cmd.OutOrStdout(), resolved)
		return nil
	},
}

// configValidateCmd implements "quill config validate".
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Long:  "Check the configuration for errors and warnings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig(cmd)
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd.OutOrStdout(), result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// ---- Lipgloss styles --------------------------------------------------------

// sourceStyle returns a lipgloss style for a given ConfigSource. With
// --no-color the root command switches lipgloss to the Ascii profile and
// the colors are dropped.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // bright yellow
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // bright red
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // bright green
	}
}

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSeparator = lipgloss.NewStyle()
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

// ---- printResolvedConfig ----------------------------------------------------

const fieldWidth = 30

// printResolvedConfig writes the resolved configuration, one key per line
// with the layer it came from.
func printResolvedConfig(out io.Writer, rc *config.ResolvedConfig) {
	printTitle(out, "Configuration Debug")

	if rc.Path != "" {
		fmt.Fprintf(out, "Config file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Config file: none found")
	}
	fmt.Fprintln(out)

	c := rc.Config
	src := rc.Sources
	printField(out, "max_header_width", fmt.Sprint(c.MaxHeaderWidth), src["max_header_width"])
	printField(out, "max_line_width", fmt.Sprint(c.MaxLineWidth), src["max_line_width"])
	printField(out, "allow_custom_scopes", fmtBool(c.AllowCustomScopes), src["allow_custom_scopes"])
	printField(out, "allow_breaking_changes", fmtSlice(c.AllowBreakingChanges), src["allow_breaking_changes"])
	printField(out, "skip_questions", fmtSlice(c.SkipQuestions), src["skip_questions"])
	printField(out, "breakline_char", fmtStr(c.BreaklineChar), src["breakline_char"])
	printField(out, "footer_prefix", fmtStr(c.FooterPrefix), src["footer_prefix"])
	printField(out, "upper_case_subject", fmtBool(c.UpperCaseSubject), src["upper_case_subject"])
	printField(out, "ask_for_breaking_change_first", fmtBool(c.AskForBreakingChangeFirst), src["ask_for_breaking_change_first"])
	printField(out, "language", fmtStr(c.Language), src["language"])
	fmt.Fprintln(out)

	fmt.Fprintln(out, styleSection.Render("[[types]]")+" "+sourceStyle(src["types"]).Render(fmt.Sprintf("(source: %s)", src["types"])))
	for _, t := range c.Types {
		fmt.Fprintf(out, "  %-*s %s\n", fieldWidth, t.Key, t.Description)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, styleSection.Render("[[scopes]]")+" "+sourceStyle(src["scopes"]).Render(fmt.Sprintf("(source: %s)", src["scopes"])))
	printScopes(out, c.Scopes)
	fmt.Fprintln(out)

	if len(c.ScopeOverrides) > 0 {
		for _, typeKey := range sortedKeys(c.ScopeOverrides) {
			key := "scope_overrides." + typeKey
			fmt.Fprintln(out, styleSection.Render("["+key+"]")+" "+sourceStyle(src[key]).Render(fmt.Sprintf("(source: %s)", src[key])))
			printScopes(out, c.ScopeOverrides[typeKey])
			fmt.Fprintln(out)
		}
	}

	if len(c.Messages) > 0 {
		fmt.Fprintln(out, styleSection.Render("[messages]"))
		for _, key := range sortedKeys(c.Messages) {
			printField(out, key, fmtStr(c.Messages[key]), src["messages."+key])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, styleSection.Render("[ticket]"))
	printField(out, "enabled", fmtBool(c.Ticket.Enabled), src["ticket.enabled"])
	printField(out, "prefix", fmtStr(c.Ticket.Prefix), src["ticket.prefix"])
	printField(out, "pattern", fmtStr(c.Ticket.Pattern), src["ticket.pattern"])
}

func printTitle(out io.Writer, title string) {
	fmt.Fprintln(out, styleHeader.Render(title))
	fmt.Fprintln(out, styleSeparator.Render(strings.Repeat("=", len(title))))
	fmt.Fprintln(out)
}

func printScopes(out io.Writer, scopes []config.ScopeConfig) {
	if len(scopes) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, s := range scopes {
		fmt.Fprintf(out, "  %-*s %s\n", fieldWidth, s.Name, fmtSlice(s.Paths))
	}
}

// printField writes a single key = value (source: ...) line.
func printField(out io.Writer, name, value string, src config.ConfigSource) {
	srcLabel := sourceStyle(src).Render(fmt.Sprintf("(source: %s)", src))
	fmt.Fprintf(out, "  %-*s = %-30s %s\n", fieldWidth, name, value, srcLabel)
}

func fmtStr(s string) string {
	return fmt.Sprintf("%q", s)
}

func fmtBool(b *bool) string {
	return fmt.Sprint(b != nil && *b)
}

func fmtSlice(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ---- printValidationResult --------------------------------------------------

// printValidationResult writes the formatted validation report.
func printValidationResult(out io.Writer, result *config.ValidationResult) {
	printTitle(out, "Configuration Validation")

	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
