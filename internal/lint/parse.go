package lint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyMessage is returned by Parse when nothing but comments and
	// blank lines remain.
	ErrEmptyMessage = errors.New("commit message is empty")
	// ErrMalformedHeader is returned by Parse when the first line is not a
	// conventional-commit header.
	ErrMalformedHeader = errors.New(`header must match "type(scope)!: subject"`)
)

var (
	headerRe   = regexp.MustCompile(`^([^\s():!]+)(?:\(([^()]*)\))?(!)?:(?: (.*))?$`)
	footerRe   = regexp.MustCompile(`^(BREAKING[ -]CHANGE|[A-Za-z][\w-]*)(?:: | #)(.*)$`)
	issueRefRe = regexp.MustCompile(`^#[0-9]+`)
)

// scissors marks the start of the diff appended by `git commit --verbose`.
// Everything from this line on is ignored.
const scissors = "# ------------------------ >8 ------------------------"

// skipPrefixes identify headers git generates itself.
var skipPrefixes = []string{"Merge ", `Revert "`, "fixup! ", "squash! ", "amend! "}

// Line is one line of the original message with its 1-based line number.
type Line struct {
	No   int
	Text string
}

// Footer is one trailer paragraph entry, e.g. "BREAKING CHANGE: ..." or
// "Refs: #12". Continuation lines are folded into Value.
type Footer struct {
	Token string
	Value string
	Lines []Line
}

// IsBreaking reports whether the footer is a breaking-change note.
func (f Footer) IsBreaking() bool {
	return f.Token == "BREAKING CHANGE" || f.Token == "BREAKING-CHANGE"
}

// Message is a parsed commit message.
type Message struct {
	Header     string
	HeaderLine int
	Type       string
	Scope      string
	Subject    string
	// Bang is true when the header carries the "!" breaking marker.
	Bang    bool
	Body    []Line
	Footers []Footer

	// separated is false when a non-blank line follows the header directly.
	separated bool
	headerOK  bool
}

// BodyText returns the body lines joined with newlines.
func (m *Message) BodyText() string {
	texts := make([]string, 0, len(m.Body))
	for _, l := range m.Body {
		texts = append(texts, l.Text)
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// BreakingNote returns the breaking-change footer value, or "" when the
// message declares none.
func (m *Message) BreakingNote() string {
	for _, f := range m.Footers {
		if f.IsBreaking() {
			return f.Value
		}
	}
	return ""
}

// IsBreaking reports whether the message declares a breaking change either
// with "!" or with a BREAKING CHANGE footer.
func (m *Message) IsBreaking() bool {
	return m.Bang || m.BreakingNote() != ""
}

// Skippable reports whether header belongs to a message git generated, such
// as a merge, a revert or an autosquash fixup.
func Skippable(header string) bool {
	for _, p := range skipPrefixes {
		if strings.HasPrefix(header, p) {
			return true
		}
	}
	return false
}

// Parse splits a raw commit message into header, body and footers. Comment
// lines are dropped the way git drops them; "#123" issue references are kept.
// footerPrefix, when set, marks an issues line as a footer.
func Parse(text, footerPrefix string) (*Message, error) {
	m, err := parse(text, footerPrefix)
	if err != nil {
		return nil, err
	}
	if !m.headerOK {
		return m, fmt.Errorf("%w: %q", ErrMalformedHeader, m.Header)
	}
	return m, nil
}

func parse(text, footerPrefix string) (*Message, error) {
	lines := significantLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyMessage
	}

	header := lines[0]
	m := &Message{
		Header:     header.Text,
		HeaderLine: header.No,
		separated:  len(lines) == 1 || lines[1].Text == "",
	}
	if sub := headerRe.FindStringSubmatch(header.Text); sub != nil {
		m.headerOK = true
		m.Type = sub[1]
		m.Scope = sub[2]
		m.Bang = sub[3] == "!"
		m.Subject = sub[4]
	}

	paras := paragraphs(lines[1:])
	split := len(paras)
	if footerPrefix == "" && trailingIssues(paras) {
		split--
	}
	for split > 0 && isFooterStart(paras[split-1][0].Text, footerPrefix) {
		split--
	}
	for i, p := range paras[:split] {
		if i > 0 {
			m.Body = append(m.Body, Line{No: p[0].No - 1})
		}
		m.Body = append(m.Body, p...)
	}
	for _, p := range paras[split:] {
		m.Footers = append(m.Footers, footers(p, footerPrefix)...)
	}
	return m, nil
}

// significantLines drops comments, the verbose diff and surrounding blank
// lines, keeping original line numbers.
func significantLines(text string) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []Line
	for i, raw := range strings.Split(text, "\n") {
		if strings.HasPrefix(raw, scissors) {
			break
		}
		if isComment(raw) {
			continue
		}
		out = append(out, Line{No: i + 1, Text: strings.TrimRight(raw, " \t")})
	}

	start, end := 0, len(out)
	for start < end && out[start].Text == "" {
		start++
	}
	for end > start && out[end-1].Text == "" {
		end--
	}
	return out[start:end]
}

func isComment(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	return !issueRefRe.MatchString(line)
}

// paragraphs groups lines separated by one or more blank lines.
func paragraphs(lines []Line) [][]Line {
	var (
		out [][]Line
		cur []Line
	)
	for _, l := range lines {
		if l.Text == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// trailingIssues reports whether the last paragraph is a single free-text
// line following a footer paragraph, the shape of an unprefixed issues
// answer rendered after a breaking-change note.
func trailingIssues(paras [][]Line) bool {
	n := len(paras)
	if n < 2 || len(paras[n-1]) != 1 || isFooterStart(paras[n-1][0].Text, "") {
		return false
	}
	return isFooterStart(paras[n-2][0].Text, "")
}

func isFooterStart(line, footerPrefix string) bool {
	if footerPrefix != "" && strings.HasPrefix(line, footerPrefix) {
		return true
	}
	return footerRe.MatchString(line) || issueRefRe.MatchString(line)
}

func footers(para []Line, footerPrefix string) []Footer {
	var out []Footer
	for _, l := range para {
		if isFooterStart(l.Text, footerPrefix) || len(out) == 0 {
			out = append(out, newFooter(l, footerPrefix))
			continue
		}
		last := &out[len(out)-1]
		last.Value += "\n" + l.Text
		last.Lines = append(last.Lines, l)
	}
	return out
}

func newFooter(l Line, footerPrefix string) Footer {
	f := Footer{Value: l.Text, Lines: []Line{l}}
	switch {
	case footerPrefix != "" && strings.HasPrefix(l.Text, footerPrefix):
		f.Token = strings.TrimSpace(strings.TrimSuffix(footerPrefix, ":"))
		f.Value = strings.TrimSpace(strings.TrimPrefix(l.Text, footerPrefix))
	default:
		if sub := footerRe.FindStringSubmatch(l.Text); sub != nil {
			f.Token = sub[1]
			f.Value = sub[2]
		}
	}
	return f
}
