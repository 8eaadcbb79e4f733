package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/draft"
	"github.com/AbdelazizMoustafa10m/quill/internal/prompt"
)

// resetRootCmd resets all global flag values, the test seams and Cobra's
// "Changed" tracking to pristine state. This must be called at the start of
// every test that invokes Execute() or manipulates rootCmd.
func resetRootCmd(t *testing.T) {
	t.Helper()
	flagVerbose = false
	flagQuiet = false
	flagConfig = ""
	flagDir = ""
	flagNoColor = false
	flagMaxHeaderWidth = 0
	flagMaxLineWidth = 0
	flagLanguage = ""
	flagBreakline = ""
	flagFooterPrefix = ""

	commitOpts = commitFlags{}
	renderOpts = renderFlags{}
	lintOpts = lintFlags{}
	typesJSON = false
	versionJSON = false
	versionShort = false
	initFlagName = ""
	initFlagForce = false
	initFlagScopes = true

	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetIn(nil)

	resetChanged(rootCmd)

	// No test may reach a real terminal prompt or the user's cache.
	origTTY, origAsk, origCopy, origStore := stdinIsTerminal, askAnswers, copyToClipboard, openDraftStore
	stdinIsTerminal = func() bool { return false }
	cacheDir := t.TempDir()
	openDraftStore = func() (*draft.Store, error) { return draft.NewStore(cacheDir), nil }
	t.Cleanup(func() {
		stdinIsTerminal, askAnswers, copyToClipboard, openDraftStore = origTTY, origAsk, origCopy, origStore
	})
}

// resetChanged clears pflag "Changed" tracking on cmd and all descendants.
func resetChanged(cmd *cobra.Command) {
	clear := func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	}
	cmd.PersistentFlags().VisitAll(clear)
	cmd.Flags().VisitAll(clear)
	for _, child := range cmd.Commands() {
		resetChanged(child)
	}
}

// executeCmd runs rootCmd with args and returns what it wrote to stdout and
// stderr together with the command error.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// captureStderr redirects os.Stderr while fn runs and returns what was
// written to it.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = oldStderr })

	fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stderr = oldStderr
	return buf.String()
}

// writeConfig writes a .quill.toml with content into dir.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".quill.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// stubAnswers makes the interactive prompt return answers (or err) and
// records the options it was called with.
func stubAnswers(t *testing.T, answers commit.Answers, err error) *prompt.Options {
	t.Helper()
	stdinIsTerminal = func() bool { return true }
	var got prompt.Options
	askAnswers = func(_ context.Context, opts prompt.Options) (commit.Answers, error) {
		got = opts
		return answers, err
	}
	return &got
}

// noopCmdName is the name of the test-only noop subcommand.
const noopCmdName = "__test_noop"

// addNoopCmd registers a minimal subcommand on rootCmd so that
// PersistentPreRunE can be exercised without running a real command.
func addNoopCmd(t *testing.T) {
	t.Helper()
	noop := &cobra.Command{
		Use:    noopCmdName,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	rootCmd.AddCommand(noop)
	t.Cleanup(func() {
		rootCmd.RemoveCommand(noop)
	})
}

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "quill", rootCmd.Use)
	assert.Equal(t, "Compose conventional commit messages interactively", rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "quill commit")
	assert.True(t, rootCmd.SilenceUsage, "SilenceUsage must be true")
	assert.True(t, rootCmd.SilenceErrors, "SilenceErrors must be true")
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	tests := []struct {
		flagName  string
		shorthand string
		envHint   string
	}{
		{flagName: "verbose", shorthand: "v", envHint: "QUILL_VERBOSE"},
		{flagName: "quiet", shorthand: "q", envHint: "QUILL_QUIET"},
		{flagName: "config"},
		{flagName: "dir"},
		{flagName: "no-color", envHint: "NO_COLOR"},
		{flagName: "max-header-width", envHint: "QUILL_MAX_HEADER_WIDTH"},
		{flagName: "max-line-width", envHint: "QUILL_MAX_LINE_WIDTH"},
		{flagName: "language", envHint: "QUILL_LANGUAGE"},
		{flagName: "breakline", envHint: "QUILL_BREAKLINE_CHAR"},
		{flagName: "footer-prefix", envHint: "QUILL_FOOTER_PREFIX"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag, "persistent flag %q must be registered", tt.flagName)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			if tt.envHint != "" {
				assert.Contains(t, flag.Usage, tt.envHint)
			}
		})
	}
}

func TestRootCmd_CommitFlagsOnRootAndCommit(t *testing.T) {
	for _, cmd := range []*cobra.Command{rootCmd, commitCmd} {
		for _, name := range []string{"dry-run", "copy", "retry", "no-verify", "signoff", "amend", "accessible"} {
			assert.NotNil(t, cmd.Flags().Lookup(name), "%s --%s", cmd.Name(), name)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"commit", "render", "lint", "types", "config", "init", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestExecute_UnknownSubcommand_ReturnsOne(t *testing.T) {
	resetRootCmd(t)
	rootCmd.SetArgs([]string{"nonexistent-command"})

	var code int
	stderr := captureStderr(t, func() { code = Execute() })

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
	assert.Contains(t, stderr, "unknown command")
}

func TestExecute_HelpFlag_ReturnsZero(t *testing.T) {
	resetRootCmd(t)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--help"})

	code := Execute()
	assert.Equal(t, 0, code)

	help := buf.String()
	for _, want := range []string{"Usage:", "Flags:", "--verbose", "--dry-run", "--max-header-width", "-q"} {
		assert.Contains(t, help, want)
	}
}

func TestExecute_NoTerminal_ReturnsOne(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	rootCmd.SetArgs([]string{"--dry-run"})

	var code int
	stderr := captureStderr(t, func() { code = Execute() })

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "needs a terminal")
}

func TestPersistentPreRunE_Flags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T)
	}{
		{
			name:  "verbose",
			args:  []string{"--verbose"},
			check: func(t *testing.T) { assert.True(t, flagVerbose) },
		},
		{
			name:  "quiet",
			args:  []string{"--quiet"},
			check: func(t *testing.T) { assert.True(t, flagQuiet) },
		},
		{
			name:  "config path stored, not loaded",
			args:  []string{"--config", "/does/not/exist/.quill.toml"},
			check: func(t *testing.T) { assert.Equal(t, "/does/not/exist/.quill.toml", flagConfig) },
		},
		{
			name:  "no-color",
			args:  []string{"--no-color"},
			check: func(t *testing.T) { assert.True(t, flagNoColor) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRootCmd(t)
			addNoopCmd(t)
			_, _, err := executeCmd(t, append(tt.args, noopCmdName)...)
			require.NoError(t, err)
			tt.check(t)
		})
	}
}

func TestPersistentPreRunE_LogLevel(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want log.Level
	}{
		{name: "default", want: log.InfoLevel},
		{name: "verbose flag", args: []string{"--verbose"}, want: log.DebugLevel},
		{name: "verbose env", env: map[string]string{"QUILL_VERBOSE": "1"}, want: log.DebugLevel},
		{name: "quiet env", env: map[string]string{"QUILL_QUIET": "true"}, want: log.ErrorLevel},
		{name: "quiet wins", args: []string{"--verbose", "--quiet"}, want: log.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRootCmd(t)
			addNoopCmd(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := executeCmd(t, append(tt.args, noopCmdName)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestPersistentPreRunE_EnvNoColor(t *testing.T) {
	for _, env := range []string{"NO_COLOR", "QUILL_NO_COLOR"} {
		t.Run(env, func(t *testing.T) {
			resetRootCmd(t)
			addNoopCmd(t)
			t.Setenv(env, "1")

			_, _, err := executeCmd(t, noopCmdName)
			require.NoError(t, err)
			assert.True(t, flagNoColor)
		})
	}
}

func TestPersistentPreRunE_DirFlag(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)
	t.Chdir(t.TempDir())

	tmpDir := t.TempDir()
	_, _, err := executeCmd(t, "--dir", tmpDir, noopCmdName)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	resolvedCwd, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	resolvedTmp, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, resolvedTmp, resolvedCwd)
}

func TestPersistentPreRunE_DirFlag_Invalid(t *testing.T) {
	resetRootCmd(t)
	addNoopCmd(t)
	t.Chdir(t.TempDir())

	tmpFile := filepath.Join(t.TempDir(), "not-a-dir.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("hello"), 0o644))

	for _, dir := range []string{"/nonexistent/path/that/does/not/exist", tmpFile} {
		resetRootCmd(t)
		_, _, err := executeCmd(t, "--dir", dir, noopCmdName)
		require.Error(t, err, dir)
		assert.Contains(t, err.Error(), "changing directory to")
	}
}

func TestNewRootCmd_Detached(t *testing.T) {
	cmd := NewRootCmd()
	// AddCommand reparents the shared subcommands; hand them back.
	t.Cleanup(func() {
		for _, child := range cmd.Commands() {
			cmd.RemoveCommand(child)
			rootCmd.RemoveCommand(child)
			rootCmd.AddCommand(child)
		}
	})
	assert.Equal(t, "quill", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("max-line-width"))
	assert.NotEmpty(t, cmd.Commands())

	require.NoError(t, cmd.PersistentFlags().Set("verbose", "true"))
	assert.False(t, flagVerbose, "detached flags must not touch package state")
}
