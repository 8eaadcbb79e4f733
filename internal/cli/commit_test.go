package cli

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/draft"
	"github.com/AbdelazizMoustafa10m/quill/internal/git"
	"github.com/AbdelazizMoustafa10m/quill/internal/prompt"
)

// gitRun runs git in dir and returns its trimmed stdout.
func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// newRepo creates a repository on branch with one staged file and makes it
// the working directory.
func newRepo(t *testing.T, branch string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gitRun(t, dir, "init", "-q")
	gitRun(t, dir, "symbolic-ref", "HEAD", "refs/heads/"+branch)
	gitRun(t, dir, "config", "user.email", "dev@example.com")
	gitRun(t, dir, "config", "user.name", "Dev")
	gitRun(t, dir, "config", "commit.gpgsign", "false")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "login.go"), []byte("package api\n"), 0o644))
	gitRun(t, dir, "add", ".")
	t.Chdir(dir)
	return dir
}

// failingHook installs a commit-msg hook that rejects every message.
func failingHook(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks are not supported on windows")
	}
	hook := filepath.Join(dir, ".git", "hooks", "commit-msg")
	require.NoError(t, os.MkdirAll(filepath.Dir(hook), 0o755))
	require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\necho rejected >&2\nexit 1\n"), 0o755))
	return hook
}

var loginAnswers = commit.Answers{
	Type:    "feat",
	Scope:   "api",
	Subject: "add login endpoint",
	Body:    "first line|second line",
	Issues:  "#31",
}

const loginMessage = "feat(api): add login endpoint\n\nfirst line\nsecond line\n\n#31"

func TestCommitCmd_DryRunOutsideRepository(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	stubAnswers(t, loginAnswers, nil)

	stdout, _, err := executeCmd(t, "commit", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, loginMessage+"\n", stdout)
}

func TestCommitCmd_RootRunsCommit(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	stubAnswers(t, loginAnswers, nil)

	stdout, _, err := executeCmd(t, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, loginMessage+"\n", stdout)
}

func TestCommitCmd_Commits(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	got := stubAnswers(t, loginAnswers, nil)

	_, stderr, err := executeCmd(t, "commit")
	require.NoError(t, err)

	assert.Equal(t, loginMessage, gitRun(t, dir, "log", "-1", "--format=%B"))
	assert.Contains(t, stderr, "add login endpoint")
	assert.Equal(t, []string{"api/login.go"}, got.StagedFiles)
	assert.NotNil(t, got.Composer)
	assert.NotNil(t, got.Catalog)
	assert.Empty(t, got.Defaults.Issues)
}

func TestCommitCmd_Signoff(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	stubAnswers(t, commit.Answers{Type: "fix", Subject: "handle nil"}, nil)

	_, _, err := executeCmd(t, "commit", "-s")
	require.NoError(t, err)
	assert.Contains(t, gitRun(t, dir, "log", "-1", "--format=%B"), "Signed-off-by: Dev <dev@example.com>")
}

func TestCommitCmd_NothingStaged(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	gitRun(t, dir, "rm", "-r", "-q", "--cached", ".")
	called := false
	stdinIsTerminal = func() bool { return true }
	askAnswers = func(_ context.Context, _ prompt.Options) (commit.Answers, error) {
		called = true
		return loginAnswers, nil
	}

	_, _, err := executeCmd(t, "commit")
	require.Error(t, err)
	assert.ErrorIs(t, err, git.ErrNothingStaged)
	assert.False(t, called, "no questions are asked without staged changes")
}

func TestCommitCmd_Cancelled(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	stubAnswers(t, commit.Answers{}, prompt.ErrCancelled)

	_, stderr, err := executeCmd(t, "commit")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Commit cancelled.")

	out, logErr := exec.Command("git", "-C", dir, "rev-parse", "HEAD").CombinedOutput()
	assert.Error(t, logErr, "no commit expected: %s", out)
}

func TestCommitCmd_InvalidAnswers(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	stubAnswers(t, commit.Answers{Type: "feature", Subject: "x"}, nil)

	_, _, err := executeCmd(t, "commit", "--dry-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, commit.ErrUnknownType)
}

func TestCommitCmd_PromptError(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	boom := errors.New("boom")
	stubAnswers(t, commit.Answers{}, boom)

	_, _, err := executeCmd(t, "commit", "--dry-run")
	assert.ErrorIs(t, err, boom)
}

func TestCommitCmd_FailedCommitSavesDraftAndRetry(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	hook := failingHook(t, dir)
	stubAnswers(t, loginAnswers, nil)

	_, _, err := executeCmd(t, "commit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	store, err := openDraftStore()
	require.NoError(t, err)
	root := gitRun(t, dir, "rev-parse", "--show-toplevel")
	saved, err := store.Load(root)
	require.NoError(t, err)
	assert.Equal(t, loginAnswers, saved.Answers)
	assert.Equal(t, loginMessage, saved.Message)

	// Retry skips the questions and clears the draft on success.
	require.NoError(t, os.Remove(hook))
	resetRootCmd(t)
	openDraftStore = func() (*draft.Store, error) { return store, nil }
	askAnswers = func(_ context.Context, _ prompt.Options) (commit.Answers, error) {
		t.Fatal("prompt must not run on --retry")
		return commit.Answers{}, nil
	}

	_, _, err = executeCmd(t, "commit", "--retry")
	require.NoError(t, err)
	assert.Equal(t, loginMessage, gitRun(t, dir, "log", "-1", "--format=%B"))

	_, err = store.Load(root)
	assert.ErrorIs(t, err, draft.ErrNoDraft)
}

func TestCommitCmd_AmendRewordsLastCommit(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	stubAnswers(t, loginAnswers, nil)
	_, _, err := executeCmd(t, "commit")
	require.NoError(t, err)
	first := gitRun(t, dir, "rev-parse", "HEAD")

	resetRootCmd(t)
	stubAnswers(t, commit.Answers{Type: "fix", Scope: "api", Subject: "reject empty passwords"}, nil)
	_, stderr, err := executeCmd(t, "commit", "--amend")
	require.NoError(t, err, "nothing staged is fine when amending")

	assert.Equal(t, "fix(api): reject empty passwords", gitRun(t, dir, "log", "-1", "--format=%B"))
	assert.NotEqual(t, first, gitRun(t, dir, "rev-parse", "HEAD"))
	assert.Equal(t, "1", gitRun(t, dir, "rev-list", "--count", "HEAD"))
	assert.Contains(t, stderr, "reject empty passwords")
}

func TestCommitCmd_AmendWithoutCommits(t *testing.T) {
	resetRootCmd(t)
	newRepo(t, "main")
	called := false
	stdinIsTerminal = func() bool { return true }
	askAnswers = func(_ context.Context, _ prompt.Options) (commit.Answers, error) {
		called = true
		return loginAnswers, nil
	}

	_, _, err := executeCmd(t, "commit", "--amend")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--amend needs an existing commit")
	assert.False(t, called)
}

func TestCommitCmd_NoVerifySkipsHook(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "main")
	failingHook(t, dir)
	stubAnswers(t, loginAnswers, nil)

	_, _, err := executeCmd(t, "commit", "--no-verify")
	require.NoError(t, err)
	assert.Equal(t, loginMessage, gitRun(t, dir, "log", "-1", "--format=%B"))
}

func TestCommitCmd_RetryWithoutDraft(t *testing.T) {
	resetRootCmd(t)
	newRepo(t, "main")

	_, _, err := executeCmd(t, "commit", "--retry")
	require.Error(t, err)
	assert.ErrorIs(t, err, draft.ErrNoDraft)
	assert.Contains(t, err.Error(), "without --retry")
}

func TestCommitCmd_TicketFromBranch(t *testing.T) {
	resetRootCmd(t)
	dir := newRepo(t, "feature/ABC-123-login")
	writeConfig(t, dir, "[ticket]\nenabled = true\nprefix = \"Refs \"\n")
	got := stubAnswers(t, loginAnswers, nil)

	_, _, err := executeCmd(t, "commit", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "Refs ABC-123", got.Defaults.Issues)
}

func TestCommitCmd_Copy(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	stubAnswers(t, loginAnswers, nil)
	var copied string
	copyToClipboard = func(s string) error {
		copied = s
		return nil
	}

	_, _, err := executeCmd(t, "commit", "--dry-run", "--copy")
	require.NoError(t, err)
	assert.Equal(t, loginMessage, copied)
}

func TestCommitCmd_CopyFailureIsNotFatal(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	stubAnswers(t, loginAnswers, nil)
	copyToClipboard = func(string) error { return errors.New("no clipboard") }

	stdout, _, err := executeCmd(t, "commit", "--dry-run", "--copy")
	require.NoError(t, err)
	assert.Equal(t, loginMessage+"\n", stdout)
}

func TestCommitCmd_Accessible(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
		want bool
	}{
		{name: "default", want: false},
		{name: "flag", args: []string{"--accessible"}, want: true},
		{name: "env", env: "1", want: true},
		{name: "env false", env: "false", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRootCmd(t)
			t.Chdir(t.TempDir())
			if tt.env != "" {
				t.Setenv(envAccessible, tt.env)
			}
			got := stubAnswers(t, loginAnswers, nil)

			_, _, err := executeCmd(t, append([]string{"commit", "--dry-run"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Accessible)
		})
	}
}

func TestCommitCmd_ConfigOverrideFlags(t *testing.T) {
	resetRootCmd(t)
	t.Chdir(t.TempDir())
	stubAnswers(t, loginAnswers, nil)

	stdout, _, err := executeCmd(t, "commit", "--dry-run", "--breakline", "~", "--footer-prefix", "Closes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "first line|second line")
	assert.Contains(t, stdout, "Closes #31")
}

func TestCommitCmd_InvalidConfig(t *testing.T) {
	resetRootCmd(t)
	dir := t.TempDir()
	writeConfig(t, dir, "max_line_width = 0\nmax_header_width = -3\n")
	t.Chdir(dir)
	stubAnswers(t, loginAnswers, nil)

	_, _, err := executeCmd(t, "commit", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "max_header_width")
}
