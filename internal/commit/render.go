package commit

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Parts is a rendered message split into its sections. Empty sections
// are "".
type Parts struct {
	Header   string `json:"header"`
	Body     string `json:"body,omitempty"`
	Breaking string `json:"breaking,omitempty"`
	Footer   string `json:"footer,omitempty"`
}

// String joins the non-empty sections with blank lines.
func (p Parts) String() string {
	sections := make([]string, 0, 4)
	for _, s := range []string{p.Header, p.Body, p.Breaking, p.Footer} {
		if s != "" {
			sections = append(sections, s)
		}
	}
	return strings.Join(sections, "\n\n")
}

// Render assembles the final commit message from validated answers:
//
//	type(scope): subject
//
//	body, wrapped at the line width
//
//	BREAKING CHANGE: note, wrapped at the line width
//
//	footer prefix + issues, verbatim
//
// Sections whose answer is empty are omitted together with their blank line.
func Render(v Validated) string {
	return RenderParts(v).String()
}

// RenderParts renders each section of the message separately.
func RenderParts(v Validated) Parts {
	a := v.answers
	p := Parts{Header: v.header}

	if a.Body != "" {
		p.Body = Wrap(splitBreaklines(a.Body, v.breakline), v.lineWidth)
	}
	if a.Breaking != "" {
		p.Breaking = wrapBreaking(splitBreaklines(a.Breaking, v.breakline), v.lineWidth)
	}
	if a.Issues != "" {
		p.Footer = a.Issues
		if v.footerPrefix != "" {
			p.Footer = v.footerPrefix + " " + a.Issues
		}
	}
	return p
}

// splitBreaklines turns every occurrence of sep into a line break and trims
// the whitespace around each resulting line. Empty lines at either end are
// dropped; empty lines in between are kept as paragraph breaks.
func splitBreaklines(text, sep string) string {
	if sep == "" {
		sep = DefaultBreaklineChar
	}
	parts := strings.Split(text, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	for len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "\n")
}

// wrapBreaking prefixes note with BreakingChangePrefix and wraps it like
// Wrap, except that the prefix always shares its line with the first word
// so the footer token is never left alone.
func wrapBreaking(note string, width int) string {
	first, rest, _ := strings.Cut(note, "\n")
	lead := BreakingChangePrefix + first

	var out []string
	if width <= 0 || runewidth.StringWidth(lead) <= width {
		out = append(out, lead)
	} else {
		words := strings.Fields(first)
		if len(words) == 0 {
			words = []string{strings.TrimSpace(BreakingChangePrefix)}
		} else {
			words[0] = BreakingChangePrefix + words[0]
		}
		out = append(out, wrapWords(words, width)...)
	}
	if rest != "" {
		out = append(out, Wrap(rest, width))
	}
	return strings.Join(out, "\n")
}

// Wrap hard-wraps every line of text at width using greedy word wrap: each
// output line breaks at the last whitespace that keeps it within width. A
// single word wider than width is kept whole on its own line. Lines already
// within width are returned untouched, so wrapping is idempotent.
func Wrap(text string, width int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	return wrapWords(strings.Fields(line), width)
}

// wrapWords greedily packs words into lines of at most width columns. A
// word may itself contain spaces; it is never split.
func wrapWords(words []string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	for _, word := range words {
		ww := runewidth.StringWidth(word)
		switch {
		case cur.Len() == 0:
			cur.WriteString(word)
			curW = ww
		case curW+1+ww <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curW += 1 + ww
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
			curW = ww
		}
	}
	if cur.Len() > 0 || len(lines) == 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
