package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
)

func testRules() commit.Rules {
	return commit.Rules{
		Types: []commit.TypeDefinition{
			{Key: "feat"}, {Key: "fix"}, {Key: "docs"}, {Key: "refactor"},
		},
		Limits:               commit.Limits{MaxHeaderWidth: 50, MaxLineWidth: 72},
		AllowCustomScopes:    true,
		AllowBreakingChanges: []string{"feat"},
		FooterPrefix:         "ISSUES CLOSED:",
	}
}

func newTestLinter(t *testing.T, mutate func(*commit.Rules)) *Linter {
	t.Helper()
	rules := testRules()
	if mutate != nil {
		mutate(&rules)
	}
	comp, err := commit.NewComposer(rules)
	require.NoError(t, err)
	return New(comp, rules.FooterPrefix)
}

func rulesOf(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestLint(t *testing.T) {
	t.Parallel()
	longBody := "This body line goes on and on and on well past the wrap column of seventy-two."
	tests := []struct {
		name      string
		text      string
		wantRules []string
		wantLines []int
	}{
		{name: "valid header only", text: "feat: Add login flow\n"},
		{name: "valid with body and footers", text: "fix(auth): Reject expired tokens\n\nTokens past expiry\nare now refused.\n\nISSUES CLOSED: #31"},
		{name: "valid bang on allowed type", text: "feat!: Drop the v1 API"},
		{name: "single long word is exempt", text: "docs: Link the design doc\n\nhttps://example.com/" + strings.Repeat("x", 80)},
		{name: "merge commit skipped", text: "Merge branch 'main' into feature/very-long-branch-name-that-is-long"},
		{name: "fixup skipped", text: "fixup! feat: Add login flow"},
		{
			name:      "unknown type",
			text:      "feature: Add login flow",
			wantRules: []string{RuleType},
			wantLines: []int{1},
		},
		{
			name:      "empty subject",
			text:      "fix:",
			wantRules: []string{RuleSubjectEmpty},
			wantLines: []int{1},
		},
		{
			name:      "malformed header",
			text:      "Add login flow",
			wantRules: []string{RuleHeaderFormat},
			wantLines: []int{1},
		},
		{
			name:      "bang counts toward header width",
			text:      "feat!: " + strings.Repeat("a", 44),
			wantRules: []string{RuleHeaderWidth},
			wantLines: []int{1},
		},
		{
			name:      "space in scope",
			text:      "feat(user auth): Add login flow",
			wantRules: []string{RuleScope},
			wantLines: []int{1},
		},
		{
			name:      "bang on disallowed type",
			text:      "docs!: Rewrite the guide",
			wantRules: []string{RuleBreaking},
			wantLines: []int{1},
		},
		{
			name:      "breaking footer on disallowed type points at footer",
			text:      "fix: Change defaults\n\nBody.\n\nBREAKING CHANGE: defaults differ",
			wantRules: []string{RuleBreaking},
			wantLines: []int{5},
		},
		{
			name:      "missing blank line after header",
			text:      "fix: Change defaults\nBody right away.",
			wantRules: []string{RuleBlankLine},
			wantLines: []int{2},
		},
		{
			name:      "long body line",
			text:      "fix: Change defaults\n\nshort\n" + longBody,
			wantRules: []string{RuleLineWidth},
			wantLines: []int{4},
		},
		{
			name:      "long breaking line",
			text:      "feat: Change defaults\n\nBREAKING CHANGE: " + longBody,
			wantRules: []string{RuleLineWidth},
			wantLines: []int{3},
		},
		{
			name:      "issues footer is verbatim",
			text:      "fix: Change defaults\n\nISSUES CLOSED: " + strings.Repeat("#1234, ", 20),
			wantRules: nil,
		},
		{
			name:      "issues sorted by line",
			text:      "feature: x\nno blank\n" + longBody,
			wantRules: []string{RuleType, RuleBlankLine, RuleLineWidth},
			wantLines: []int{1, 2, 3},
		},
		{
			name:      "empty",
			text:      "# nothing here\n",
			wantRules: []string{RuleEmpty},
			wantLines: []int{1},
		},
	}
	l := newTestLinter(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			issues := l.Lint(tt.text)
			if len(tt.wantRules) == 0 {
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, tt.wantRules, rulesOf(issues))
			lines := make([]int, 0, len(issues))
			for _, i := range issues {
				lines = append(lines, i.Line)
				assert.NotEmpty(t, i.Message)
			}
			assert.Equal(t, tt.wantLines, lines)
		})
	}
}

func TestLint_ClosedScopeList(t *testing.T) {
	t.Parallel()
	l := newTestLinter(t, func(r *commit.Rules) {
		r.AllowCustomScopes = false
		r.Scopes = []string{"auth", "ui"}
	})

	assert.Empty(t, l.Lint("fix(auth): Reject expired tokens"))

	issues := l.Lint("fix(db): Reject expired tokens")
	require.Len(t, issues, 1)
	assert.Equal(t, RuleScope, issues[0].Rule)
	assert.Contains(t, issues[0].Message, "auth, ui")
}

func TestLint_SubjectCase(t *testing.T) {
	t.Parallel()
	l := newTestLinter(t, func(r *commit.Rules) { r.UpperCaseSubject = true })

	assert.Empty(t, l.Lint("fix: Reject expired tokens"))

	issues := l.Lint("fix: reject expired tokens")
	require.Len(t, issues, 1)
	assert.Equal(t, RuleSubjectCase, issues[0].Rule)
}

// Every message the composer renders must lint clean.
func TestLint_AcceptsRenderedMessages(t *testing.T) {
	t.Parallel()
	rules := testRules()
	comp, err := commit.NewComposer(rules)
	require.NoError(t, err)
	l := New(comp, rules.FooterPrefix)

	answers := []commit.Answers{
		{Type: "feat", Subject: "Add login flow"},
		{Type: "fix", Scope: "auth", Subject: "Reject expired tokens", Body: "line one|line two"},
		{Type: "feat", Scope: "api", Subject: "Drop v1", Breaking: strings.Repeat("old clients stop working ", 8), Issues: "#31, #34"},
		{Type: "refactor", Subject: "Split parser", Body: strings.Repeat("word ", 60)},
		{Type: "docs", Subject: "Explain hooks", Issues: "#7"},
	}
	for _, a := range answers {
		msg, err := comp.Compose(a)
		require.NoError(t, err)
		assert.Empty(t, l.Lint(msg), "message:\n%s", msg)
	}
}

func TestLint_AcceptsRenderedMessagesWithoutFooterPrefix(t *testing.T) {
	t.Parallel()
	rules := testRules()
	rules.FooterPrefix = ""
	comp, err := commit.NewComposer(rules)
	require.NoError(t, err)
	l := New(comp, "")

	longIssues := "Related to PROJ-1234 and the follow ups discussed in the planning notes of last week"
	answers := []commit.Answers{
		{Type: "feat", Subject: "Add login flow", Issues: longIssues},
		{Type: "fix", Subject: "Reject expired tokens", Body: "line one|line two", Issues: longIssues},
		{Type: "feat", Subject: "Drop v1", Breaking: strings.Repeat("old clients stop working ", 8), Issues: longIssues},
		{Type: "feat", Subject: "Drop v1", Breaking: strings.Repeat("z", 80) + " is gone", Issues: "#31"},
	}
	for _, a := range answers {
		msg, err := comp.Compose(a)
		require.NoError(t, err)
		assert.Empty(t, l.Lint(msg), "message:\n%s", msg)
	}
}

func TestLint_WithoutFooterPrefixStillChecksBody(t *testing.T) {
	t.Parallel()
	l := newTestLinter(t, func(r *commit.Rules) { r.FooterPrefix = "" })
	long := strings.Repeat("word ", 20)

	issues := l.Lint("fix: x\n\n" + long + "\nsecond line")
	require.Len(t, issues, 1)
	assert.Equal(t, RuleLineWidth, issues[0].Rule)
	assert.Equal(t, 3, issues[0].Line)

	issues = l.Lint("fix: x\n\n" + long + "\n\n#12")
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Line)
}

func TestLintFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	bad := filepath.Join(dir, "bad")
	missing := filepath.Join(dir, "missing")
	require.NoError(t, os.WriteFile(good, []byte("feat: Add login flow\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("feature: Add login flow\n"), 0o644))

	l := newTestLinter(t, nil)
	results, err := l.LintFiles(context.Background(), []string{good, bad, missing}, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].Path)
	assert.True(t, results[0].OK())

	assert.Equal(t, bad, results[1].Path)
	assert.False(t, results[1].OK())
	assert.Equal(t, []string{RuleType}, rulesOf(results[1].Issues))

	assert.Equal(t, missing, results[2].Path)
	require.Error(t, results[2].Err)
	assert.False(t, results[2].OK())
}

func TestLintFiles_ManyFilesDefaultConcurrency(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("msg%02d.txt", i))
		require.NoError(t, os.WriteFile(paths[i], []byte("fix: Tidy up\n"), 0o644))
	}

	results, err := newTestLinter(t, nil).LintFiles(context.Background(), paths, 0)
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.True(t, r.OK())
	}
}

func TestLintFiles_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLinter(t, nil).LintFiles(ctx, []string{"a", "b"}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIssue_String(t *testing.T) {
	t.Parallel()
	i := Issue{Line: 3, Rule: RuleLineWidth, Message: "line is 80 columns wide, max 72"}
	assert.Equal(t, "3: line is 80 columns wide, max 72 [body-max-line-length]", i.String())
}
