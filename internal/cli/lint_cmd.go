package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/lint"
)

// stdinPath is the argument that makes `quill lint` read the message from
// standard input.
const stdinPath = "-"

// errLintFailed is returned when at least one message has issues. The
// issues themselves have already been printed.
var errLintFailed = errors.New("commit message check failed")

type lintFlags struct {
	JSON        bool
	Concurrency int
}

var lintOpts lintFlags

// lintFileOutput is one entry of the --json output.
type lintFileOutput struct {
	Path   string       `json:"path"`
	OK     bool         `json:"ok"`
	Error  string       `json:"error,omitempty"`
	Issues []lint.Issue `json:"issues"`
}

// lintCmd implements "quill lint".
var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Check commit messages against the configured rules",
	Long: `Check one or more commit message files against the same rules quill
uses to compose messages: known type, allowed scope, non-empty subject,
breaking changes only for allowed types, header and line widths.

Use "-" to read the message from standard input. Merge, revert and
fixup messages generated by git are accepted as-is.

To check every commit made in a repository, install it as a commit-msg
hook:

  printf '#!/bin/sh\nexec quill lint "$1"\n' > .git/hooks/commit-msg
  chmod +x .git/hooks/commit-msg

Examples:
  quill lint .git/COMMIT_EDITMSG
  git log -1 --format=%B | quill lint -
  quill lint --json msg1.txt msg2.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintOpts.JSON, "json", false, "Output as JSON")
	lintCmd.Flags().IntVar(&lintOpts.Concurrency, "concurrency", 0, "Files checked in parallel (default: number of CPUs)")
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	linter := lint.New(s.composer, s.config().FooterPrefix)

	results, err := lintArgs(ctx, linter, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lintOpts.JSON {
		if err := writeLintJSON(out, results); err != nil {
			return err
		}
	} else {
		writeLintText(out, results)
	}

	for _, r := range results {
		if !r.OK() {
			return errLintFailed
		}
	}
	return nil
}

// lintArgs lints the files in args, reading "-" from stdin. Results keep the
// order of args.
func lintArgs(ctx context.Context, linter *lint.Linter, args []string, stdin io.Reader) ([]lint.FileResult, error) {
	var (
		files   []string
		fileIdx []int
		results = make([]lint.FileResult, len(args))
	)
	for i, arg := range args {
		if arg != stdinPath {
			files = append(files, arg)
			fileIdx = append(fileIdx, i)
			continue
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			results[i] = lint.FileResult{Path: stdinPath, Err: fmt.Errorf("reading stdin: %w", err)}
			continue
		}
		// Stdin can only be consumed once.
		stdin = eofReader{}
		results[i] = lint.FileResult{Path: stdinPath, Issues: linter.Lint(string(data))}
	}

	if len(files) > 0 {
		fileResults, err := linter.LintFiles(ctx, files, lintOpts.Concurrency)
		if err != nil {
			return nil, err
		}
		for j, r := range fileResults {
			results[fileIdx[j]] = r
		}
	}
	return results, nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

func writeLintText(w io.Writer, results []lint.FileResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %s %v\n", r.Path, styleErrorLbl.Render("error:"), r.Err)
			continue
		}
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "%s:%d: %s %s\n", r.Path, issue.Line, issue.Message,
				styleWarnLbl.Render("["+issue.Rule+"]"))
		}
	}
}

func writeLintJSON(w io.Writer, results []lint.FileResult) error {
	out := make([]lintFileOutput, 0, len(results))
	for _, r := range results {
		entry := lintFileOutput{Path: r.Path, OK: r.OK(), Issues: r.Issues}
		if entry.Issues == nil {
			entry.Issues = []lint.Issue{}
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		out = append(out, entry)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
