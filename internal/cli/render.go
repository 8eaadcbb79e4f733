package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
)

// renderFlags holds the answers passed to `quill render`.
type renderFlags struct {
	Type     string
	Scope    string
	Subject  string
	Body     string
	Breaking string
	Issues   string
	JSON     bool
}

var renderOpts renderFlags

// renderOutput is the --json payload of `quill render`.
type renderOutput struct {
	Message string         `json:"message"`
	Parts   commit.Parts   `json:"parts"`
	Answers commit.Answers `json:"answers"`
}

// renderCmd implements "quill render".
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a commit message from flags without prompting",
	Long: `Validate the given answers against the configuration and print the
commit message they produce. Nothing is committed.

Every violation is reported, not just the first. Use the breakline
character (default "|") in --body and --breaking to force line breaks.

Examples:
  quill render --type feat --scope auth --subject "add login"
  quill render --type fix --subject "handle nil" --body "first|second" --issues "#31"
  git commit -m "$(quill render --type docs --subject "fix typo")"`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.Type, "type", "t", "", "Commit type (required)")
	f.StringVar(&renderOpts.Scope, "scope", "", "Commit scope")
	f.StringVarP(&renderOpts.Subject, "subject", "m", "", "Short imperative description (required)")
	f.StringVar(&renderOpts.Body, "body", "", "Longer description")
	f.StringVar(&renderOpts.Breaking, "breaking", "", "Breaking change note")
	f.StringVar(&renderOpts.Issues, "issues", "", "Issues closed by the change, written verbatim")
	f.BoolVar(&renderOpts.JSON, "json", false, "Output as JSON")
	_ = renderCmd.MarkFlagRequired("type")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	answers := commit.Answers{
		Type:     renderOpts.Type,
		Scope:    renderOpts.Scope,
		Subject:  renderOpts.Subject,
		Body:     renderOpts.Body,
		Breaking: renderOpts.Breaking,
		Issues:   renderOpts.Issues,
	}
	if verrs := s.composer.Check(answers); len(verrs) > 0 {
		errs := make([]error, 0, len(verrs))
		for _, ve := range verrs {
			errs = append(errs, ve)
		}
		return errors.Join(errs...)
	}

	v, err := s.composer.Validate(answers)
	if err != nil {
		return err
	}
	parts := commit.RenderParts(v)
	out := cmd.OutOrStdout()

	if renderOpts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(renderOutput{
			Message: parts.String(),
			Parts:   parts,
			Answers: v.Answers(),
		})
	}
	fmt.Fprintln(out, parts.String())
	return nil
}
