// Package git shells out to the git binary to inspect the index and commit.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
)

// Sentinel errors returned by GitClient.
var (
	// ErrNothingStaged is returned by Commit when the index has no changes.
	ErrNothingStaged = errors.New("no changes added to commit")
	// ErrDetachedHead is returned by CurrentBranch when HEAD is not a branch.
	ErrDetachedHead = errors.New("detached HEAD state")
)

// GitClient wraps the git operations quill needs to hand a message over to
// `git commit`. All methods shell out to the git binary.
type GitClient struct {
	// WorkDir is the working directory for git commands.
	// If empty, commands run in the current directory.
	WorkDir string

	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// NewGitClient creates a new GitClient for the given working directory.
// It verifies that git is installed and the directory is inside a repository.
func NewGitClient(workDir string) (*GitClient, error) {
	g := &GitClient{
		WorkDir: workDir,
		GitBin:  "git",
	}
	if err := g.checkPrerequisites(); err != nil {
		return nil, fmt.Errorf("git: prerequisites: %w", err)
	}
	return g, nil
}

// checkPrerequisites verifies that git is installed and the workDir is a git repo.
func (g *GitClient) checkPrerequisites() error {
	_, err := g.run(context.Background(), "rev-parse", "--git-dir")
	if err != nil {
		return fmt.Errorf("not a git repository or git not installed: %w", err)
	}
	return nil
}

// --- Repository ---

// RepoRoot returns the absolute path of the top-level working tree.
func (g *GitClient) RepoRoot(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("git: repo root: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the name of the current branch.
// Returns an error if the repo is in a detached HEAD state.
func (g *GitClient) CurrentBranch(ctx context.Context) (string, error) {
	exitCode, out, _, err := g.runSilent(ctx, nil, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if exitCode == 1 {
			return "", fmt.Errorf("git: current branch: %w", ErrDetachedHead)
		}
		return "", fmt.Errorf("git: current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HeadCommit returns the short SHA of the current HEAD commit.
func (g *GitClient) HeadCommit(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git: head commit: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// --- Index ---

// StagedFiles returns the paths staged for the next commit, relative to the
// repository root.
func (g *GitClient) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, fmt.Errorf("git: staged files: %w", err)
	}
	return splitNUL(out), nil
}

// HasStagedChanges reports whether the index differs from HEAD.
func (g *GitClient) HasStagedChanges(ctx context.Context) (bool, error) {
	exitCode, _, _, err := g.runSilent(ctx, nil, "diff", "--cached", "--quiet")
	switch {
	case err == nil:
		return false, nil
	case exitCode == 1:
		return true, nil
	default:
		return false, fmt.Errorf("git: staged changes: %w", err)
	}
}

// --- Commit ---

// CommitOptions are passed through to `git commit`.
type CommitOptions struct {
	// NoVerify skips the pre-commit and commit-msg hooks.
	NoVerify bool
	// Signoff adds a Signed-off-by trailer.
	Signoff bool
	// Amend replaces the tip of the current branch.
	Amend bool
}

func (o CommitOptions) args() []string {
	// "#31" footers are issue references, so git must not strip # lines.
	args := []string{"commit", "-F", "-", "--cleanup=whitespace"}
	if o.NoVerify {
		args = append(args, "--no-verify")
	}
	if o.Signoff {
		args = append(args, "--signoff")
	}
	if o.Amend {
		args = append(args, "--amend")
	}
	return args
}

// Commit records the staged changes with message, which is piped to
// `git commit -F -`. The returned string is git's summary line.
func (g *GitClient) Commit(ctx context.Context, message string, opts CommitOptions) (string, error) {
	if !opts.Amend {
		staged, err := g.HasStagedChanges(ctx)
		if err != nil {
			return "", err
		}
		if !staged {
			return "", fmt.Errorf("git: commit: %w", ErrNothingStaged)
		}
	}

	_, stdout, _, err := g.runSilent(ctx, strings.NewReader(message), opts.args()...)
	if err != nil {
		return "", fmt.Errorf("git: commit: %w", err)
	}
	return firstLine(stdout), nil
}

// --- Ticket references ---

// TicketFromBranch returns the first match of pattern in branch, or "" when
// nothing matches. An invalid pattern is an error.
func TicketFromBranch(branch, pattern string) (string, error) {
	if branch == "" || pattern == "" {
		return "", nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("git: ticket pattern %q: %w", pattern, err)
	}
	return re.FindString(branch), nil
}

// --- Internal helpers ---

// run executes a git command and returns stdout.
// stderr is included in the error message when the command fails.
func (g *GitClient) run(ctx context.Context, args ...string) (string, error) {
	_, stdout, _, err := g.runSilent(ctx, nil, args...)
	if err != nil {
		return "", err
	}
	return stdout, nil
}

// runSilent executes a git command with optional stdin and returns the exit
// code, stdout, stderr, and an error. The error is non-nil for both exec
// failures (exitCode=-1, e.g. git binary not found) and non-zero git exits
// (exitCode>0). Callers that need to distinguish the two check exitCode.
func (g *GitClient) runSilent(ctx context.Context, stdin io.Reader, args ...string) (int, string, string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = g.WorkDir
	cmd.Stdin = stdin

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode := exitErr.ExitCode()
			stderr := strings.TrimSpace(stderrBuf.String())
			stdout := strings.TrimSpace(stdoutBuf.String())
			detail := stderr
			if detail == "" {
				detail = stdout
			}
			return exitCode, stdout, stderr, fmt.Errorf("exit status %d: %s", exitCode, detail)
		}
		// The process could not be started at all.
		return -1, "", "", runErr
	}

	return 0, stdoutBuf.String(), stderrBuf.String(), nil
}

func splitNUL(out string) []string {
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
