package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// projectRoot returns the absolute path to the project root directory.
func projectRoot(tb testing.TB) string {
	tb.Helper()
	dir, err := os.Getwd()
	if err != nil {
		tb.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			tb.Fatal("could not find project root (no go.mod found in any parent directory)")
		}
		dir = parent
	}
}

// buildBinary compiles ./cmd/quill into a temp dir and returns its path.
func buildBinary(tb testing.TB) string {
	tb.Helper()
	binPath := filepath.Join(tb.TempDir(), "quill")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/quill/")
	cmd.Dir = projectRoot(tb)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if out, err := cmd.CombinedOutput(); err != nil {
		tb.Fatalf("go build failed: %v\n%s", err, out)
	}
	return binPath
}

func TestBuild_Compiles(t *testing.T) {
	binPath := buildBinary(t)

	info, err := os.Stat(binPath)
	require.NoError(t, err, "binary was not created at %s", binPath)
	assert.Greater(t, info.Size(), int64(0), "binary must not be empty")
}

func TestBinary_Version(t *testing.T) {
	binPath := buildBinary(t)

	out, err := exec.Command(binPath, "version").CombinedOutput()
	require.NoError(t, err, "quill version failed: %s", out)
	assert.True(t, strings.HasPrefix(string(out), "quill "), string(out))
}

func TestBinary_Render(t *testing.T) {
	binPath := buildBinary(t)

	cmd := exec.Command(binPath, "render", "--type", "feat", "--scope", "api",
		"--subject", "add login", "--body", "one|two", "--issues", "#31")
	cmd.Dir = t.TempDir()
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Equal(t, "feat(api): add login\n\none\ntwo\n\n#31\n", string(out))
}

func TestBinary_ErrorExitCode(t *testing.T) {
	binPath := buildBinary(t)

	cmd := exec.Command(binPath, "render", "--type", "nope", "--subject", "x")
	cmd.Dir = t.TempDir()
	out, err := cmd.CombinedOutput()
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), "unknown commit type")
}

func TestBinary_LintStdin(t *testing.T) {
	binPath := buildBinary(t)

	cmd := exec.Command(binPath, "lint", "-")
	cmd.Dir = t.TempDir()
	cmd.Stdin = strings.NewReader("docs: fix typo\n")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestGoVet_Passes(t *testing.T) {
	cmd := exec.Command("go", "vet", "./...")
	cmd.Dir = projectRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go vet failed with output: %s", string(output))
}
