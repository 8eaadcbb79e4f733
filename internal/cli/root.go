// Package cli implements the quill command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool

	// Config overrides; applied only when the flag is set.
	flagMaxHeaderWidth int
	flagMaxLineWidth   int
	flagLanguage       string
	flagBreakline      string
	flagFooterPrefix   string
)

// Environment variables read by the root command in addition to those of
// the logging and config packages.
const (
	envNoColor      = "NO_COLOR"
	envQuillNoColor = "QUILL_NO_COLOR"
)

// rootCmd is the base command for quill.
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Compose conventional commit messages interactively",
	Long: `quill asks a short series of questions (type, scope, subject, body,
breaking change, issues), renders a conventional commit message from the
answers and hands it to git commit.

Run without a subcommand to compose and commit, the same as "quill commit".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommit(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logging.OptionsFromEnv(os.LookupEnv, logging.Options{
			Verbose: flagVerbose,
			Quiet:   flagQuiet,
		}))

		if !cmd.Flags().Changed("no-color") && (os.Getenv(envNoColor) != "" || os.Getenv(envQuillNoColor) != "") {
			flagNoColor = true
		}
		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}
		return nil
	},
}

func init() {
	addPersistentFlags(rootCmd, true)
	addCommitFlags(rootCmd)
}

// addPersistentFlags registers the global flags on cmd. bind is false for
// the detached copy built by NewRootCmd, which must not share state with
// rootCmd.
func addPersistentFlags(cmd *cobra.Command, bind bool) {
	pf := cmd.PersistentFlags()
	if !bind {
		pf.BoolP("verbose", "v", false, "Enable verbose (debug) output (env: QUILL_VERBOSE)")
		pf.BoolP("quiet", "q", false, "Suppress all output except errors (env: QUILL_QUIET)")
		pf.String("config", "", "Path to a .quill.toml or .quill.yaml file")
		pf.String("dir", "", "Override working directory")
		pf.Bool("no-color", false, "Disable colored output (env: QUILL_NO_COLOR, NO_COLOR)")
		pf.Int("max-header-width", 0, "Override max_header_width (env: QUILL_MAX_HEADER_WIDTH)")
		pf.Int("max-line-width", 0, "Override max_line_width (env: QUILL_MAX_LINE_WIDTH)")
		pf.String("language", "", "Override the prompt language (env: QUILL_LANGUAGE)")
		pf.String("breakline", "", "Override breakline_char (env: QUILL_BREAKLINE_CHAR)")
		pf.String("footer-prefix", "", "Override footer_prefix (env: QUILL_FOOTER_PREFIX)")
		return
	}
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: QUILL_VERBOSE)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: QUILL_QUIET)")
	pf.StringVar(&flagConfig, "config", "", "Path to a .quill.toml or .quill.yaml file")
	pf.StringVar(&flagDir, "dir", "", "Override working directory")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: QUILL_NO_COLOR, NO_COLOR)")
	pf.IntVar(&flagMaxHeaderWidth, "max-header-width", 0, "Override max_header_width (env: QUILL_MAX_HEADER_WIDTH)")
	pf.IntVar(&flagMaxLineWidth, "max-line-width", 0, "Override max_line_width (env: QUILL_MAX_LINE_WIDTH)")
	pf.StringVar(&flagLanguage, "language", "", "Override the prompt language (env: QUILL_LANGUAGE)")
	pf.StringVar(&flagBreakline, "breakline", "", "Override breakline_char (env: QUILL_BREAKLINE_CHAR)")
	pf.StringVar(&flagFooterPrefix, "footer-prefix", "", "Override footer_prefix (env: QUILL_FOOTER_PREFIX)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleErrorLbl.Render("Error:"), err)
		return 1
	}
	return 0
}

// NewRootCmd returns a new instance of the root command for use in external
// tools such as the shell completion generator and man page generator. The
// copy carries the same flags and subcommands but its flags are not bound
// to the package-level variables.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	addPersistentFlags(cmd, false)

	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
