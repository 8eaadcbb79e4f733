// Package lint checks existing commit messages against the same rules quill
// uses to compose them. It backs `quill lint` and is meant to run as a git
// commit-msg hook.
package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/logging"
)

// Rule names reported in Issue.Rule.
const (
	RuleEmpty        = "empty-message"
	RuleHeaderFormat = "header-format"
	RuleBlankLine    = "header-blank-line"
	RuleType         = "type-enum"
	RuleSubjectEmpty = "subject-empty"
	RuleSubjectCase  = "subject-case"
	RuleScope        = "scope-enum"
	RuleBreaking     = "breaking-change"
	RuleHeaderWidth  = "header-max-length"
	RuleLineWidth    = "body-max-line-length"
)

// bangBreakingValue stands in for the note when only "!" marks a breaking
// change, so the composer still applies its allow-list.
const bangBreakingValue = "!"

// Issue is one rule violation.
type Issue struct {
	Line    int    `json:"line"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%d: %s [%s]", i.Line, i.Message, i.Rule)
}

// FileResult is the outcome of linting one file. Err is set when the file
// could not be read; Issues is empty for a clean message.
type FileResult struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues,omitempty"`
	Err    error   `json:"-"`
}

// OK reports whether the file was read and produced no issues.
func (r FileResult) OK() bool {
	return r.Err == nil && len(r.Issues) == 0
}

// Linter applies a composer's rules to raw messages. It is safe for
// concurrent use.
type Linter struct {
	composer     *commit.Composer
	footerPrefix string
}

// New returns a Linter enforcing the rules of composer. footerPrefix is the
// configured issues prefix so that issues lines are recognised as footers.
func New(composer *commit.Composer, footerPrefix string) *Linter {
	return &Linter{composer: composer, footerPrefix: footerPrefix}
}

// Lint returns every issue in text, ordered by line. Messages generated by git
// (merges, reverts, fixups) are accepted as-is.
func (l *Linter) Lint(text string) []Issue {
	m, err := parse(text, l.footerPrefix)
	if errors.Is(err, ErrEmptyMessage) {
		return []Issue{{Line: 1, Rule: RuleEmpty, Message: err.Error()}}
	}
	if Skippable(m.Header) {
		return nil
	}

	var issues []Issue
	if m.headerOK {
		issues = append(issues, l.checkHeader(m)...)
	} else {
		issues = append(issues, Issue{Line: m.HeaderLine, Rule: RuleHeaderFormat, Message: ErrMalformedHeader.Error()})
	}
	if !m.separated {
		issues = append(issues, Issue{Line: m.HeaderLine + 1, Rule: RuleBlankLine, Message: "header must be followed by a blank line"})
	}
	issues = append(issues, l.checkLineWidths(m)...)

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	return issues
}

func (l *Linter) checkHeader(m *Message) []Issue {
	breaking := m.BreakingNote()
	if breaking == "" && m.Bang {
		breaking = bangBreakingValue
	}
	answers := commit.Answers{
		Type:     m.Type,
		Scope:    m.Scope,
		Subject:  m.Subject,
		Breaking: breaking,
	}

	var issues []Issue
	for _, ve := range l.composer.Check(answers) {
		// Width is measured on the raw header below so "!" counts.
		if errors.Is(ve, commit.ErrHeaderTooLong) {
			continue
		}
		issues = append(issues, Issue{
			Line:    l.lineFor(m, ve),
			Rule:    ruleFor(ve),
			Message: ve.Error(),
		})
	}

	limit := l.composer.Limits().MaxHeaderWidth
	if w := runewidth.StringWidth(m.Header); w > limit {
		issues = append(issues, Issue{
			Line:    m.HeaderLine,
			Rule:    RuleHeaderWidth,
			Message: fmt.Sprintf("header is %d columns wide, max %d", w, limit),
		})
	}

	if len(issues) == 0 {
		if v, err := l.composer.Validate(answers); err == nil && v.Answers().Subject != strings.TrimSpace(m.Subject) {
			issues = append(issues, Issue{
				Line:    m.HeaderLine,
				Rule:    RuleSubjectCase,
				Message: "subject must start with an upper-case letter",
			})
		}
	}
	return issues
}

// lineFor points breaking-change issues at the footer that declared them.
func (l *Linter) lineFor(m *Message, ve *commit.ValidationError) int {
	if errors.Is(ve, commit.ErrDisallowedBreakingChange) && !m.Bang {
		for _, f := range m.Footers {
			if f.IsBreaking() {
				return f.Lines[0].No
			}
		}
	}
	return m.HeaderLine
}

func ruleFor(ve *commit.ValidationError) string {
	switch {
	case errors.Is(ve, commit.ErrUnknownType):
		return RuleType
	case errors.Is(ve, commit.ErrEmptySubject):
		return RuleSubjectEmpty
	case errors.Is(ve, commit.ErrDisallowedScope), errors.Is(ve, commit.ErrInvalidScope):
		return RuleScope
	case errors.Is(ve, commit.ErrDisallowedBreakingChange):
		return RuleBreaking
	default:
		return RuleHeaderWidth
	}
}

// checkLineWidths applies the wrap column to body and breaking-change lines.
// Lines holding a single word (usually a URL) are exempt since wrapping
// cannot shorten them. Other footers are written verbatim and not checked.
// Without a footer prefix a closing one-line paragraph may be the issues
// answer, so it is exempt as well.
func (l *Linter) checkLineWidths(m *Message) []Issue {
	limit := l.composer.Limits().MaxLineWidth
	body := m.Body
	if l.footerPrefix == "" && len(m.Footers) == 0 && endsWithOneLineParagraph(body) {
		body = body[:len(body)-1]
	}
	lines := append([]Line(nil), body...)
	for _, f := range m.Footers {
		if f.IsBreaking() {
			lines = append(lines, f.Lines...)
		}
	}

	var issues []Issue
	for _, ln := range lines {
		w := runewidth.StringWidth(ln.Text)
		if w <= limit || !wrappable(ln.Text) {
			continue
		}
		issues = append(issues, Issue{
			Line:    ln.No,
			Rule:    RuleLineWidth,
			Message: fmt.Sprintf("line is %d columns wide, max %d", w, limit),
		})
	}
	return issues
}

func endsWithOneLineParagraph(body []Line) bool {
	n := len(body)
	return n == 1 || (n > 1 && body[n-2].Text == "")
}

// wrappable reports whether wrapping could shorten line. The breaking-change
// token always shares its line with the first word of the note.
func wrappable(line string) bool {
	line = strings.TrimPrefix(line, commit.BreakingChangePrefix)
	return len(strings.Fields(line)) > 1
}

// LintFiles lints each path with at most concurrency files in flight.
// Results keep the order of paths. Unreadable files are reported through
// FileResult.Err; only context cancellation aborts the run.
func (l *Linter) LintFiles(ctx context.Context, paths []string, concurrency int) ([]FileResult, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	logger := logging.New("lint")

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.lintFile(path)
			logger.Debug("linted file", "path", path, "issues", len(results[i].Issues))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lint: %w", err)
	}
	return results, nil
}

func (l *Linter) lintFile(path string) FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: fmt.Errorf("reading %s: %w", path, err)}
	}
	return FileResult{Path: path, Issues: l.Lint(string(data))}
}
