// Package prompt collects commit answers interactively with a sequence of
// huh forms: type, scope, details, then a confirmation showing the rendered
// message.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/config"
	"github.com/AbdelazizMoustafa10m/quill/internal/logging"
	"github.com/AbdelazizMoustafa10m/quill/internal/messages"
	"github.com/AbdelazizMoustafa10m/quill/internal/scope"
)

// ErrCancelled is returned when the user aborts a form or declines the
// final confirmation.
var ErrCancelled = errors.New("commit cancelled by user")

// formWidth keeps the forms readable in an 80 column terminal.
const formWidth = 80

// Page names, in the order they are shown.
const (
	pageType     = "type"
	pageBreaking = "breaking"
	pageScope    = "scope"
	pageDetails  = "details"
	pageFooter   = "footer"
	pageConfirm  = "confirm"
)

// Options configures a Prompter.
type Options struct {
	// Config supplies skip_questions, ask_for_breaking_change_first and the
	// scope path globs.
	Config   *config.Config
	Composer *commit.Composer
	Catalog  *messages.Catalog

	// StagedFiles drive scope pre-selection.
	StagedFiles []string
	// Defaults pre-fills answers, e.g. the issues line from the branch
	// ticket or a saved draft.
	Defaults commit.Answers

	// Accessible switches huh to its line-based accessible mode.
	Accessible bool
	// Output receives the forms. Defaults to stderr so stdout stays clean
	// for --dry-run output.
	Output io.Writer
}

// Prompter runs the interactive forms. Use New and call Run once.
type Prompter struct {
	opts Options

	answers     commit.Answers
	scopeChoice string
	customScope string
	confirmed   bool

	// run executes one page. Tests replace it to answer without a terminal.
	run func(ctx context.Context, page string, form *huh.Form) error
}

// page is one form in the sequence.
type page struct {
	name  string
	skip  func() bool
	build func() *huh.Form
	after func()
}

// New validates opts and returns a Prompter.
func New(opts Options) (*Prompter, error) {
	switch {
	case opts.Config == nil:
		return nil, errors.New("prompt: config is required")
	case opts.Composer == nil:
		return nil, errors.New("prompt: composer is required")
	case opts.Catalog == nil:
		return nil, errors.New("prompt: catalog is required")
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &Prompter{
		opts: opts,
		run: func(ctx context.Context, _ string, form *huh.Form) error {
			return form.RunWithContext(ctx)
		},
	}, nil
}

// Run shows the forms and returns the validated answers. It returns
// ErrCancelled when the user aborts or declines the confirmation.
func (p *Prompter) Run(ctx context.Context) (commit.Answers, error) {
	logger := logging.New("prompt")
	p.answers = p.opts.Defaults
	p.confirmed = false

	for _, pg := range p.pages() {
		if pg.skip != nil && pg.skip() {
			logger.Debug("skipping page", "page", pg.name)
			continue
		}
		if err := p.run(ctx, pg.name, pg.build()); err != nil {
			return commit.Answers{}, mapErr(err)
		}
		if pg.after != nil {
			pg.after()
		}
	}
	if !p.confirmed {
		return commit.Answers{}, ErrCancelled
	}

	v, err := p.opts.Composer.Validate(p.answers)
	if err != nil {
		return commit.Answers{}, fmt.Errorf("prompt: %w", err)
	}
	return v.Answers(), nil
}

func (p *Prompter) pages() []page {
	cfg := p.opts.Config
	breaking := page{
		name:  pageBreaking,
		skip:  p.skipBreaking,
		build: p.breakingForm,
	}

	pages := []page{{name: pageType, build: p.typeForm, after: p.clearDisallowed}}
	if cfg.BreakingChangeFirst() {
		pages = append(pages, breaking)
	}
	pages = append(pages,
		page{name: pageScope, skip: p.skipScope, build: p.scopeForm, after: p.resolveScope},
		page{name: pageDetails, build: p.detailsForm},
	)
	if !cfg.BreakingChangeFirst() {
		pages = append(pages, breaking)
	}
	return append(pages,
		page{name: pageFooter, skip: func() bool { return cfg.Skips(config.QuestionFooter) }, build: p.footerForm},
		page{name: pageConfirm, build: p.confirmForm},
	)
}

func (p *Prompter) skipBreaking() bool {
	return p.opts.Config.Skips(config.QuestionBreaking) || !p.opts.Composer.BreakingAllowed(p.answers.Type)
}

// skipScope hides the scope page when it is configured away. Without a
// scope list the page is a free-form input.
func (p *Prompter) skipScope() bool {
	return p.opts.Config.Skips(config.QuestionScope)
}

// clearDisallowed drops a pre-filled breaking note the chosen type may not
// carry, so a draft for another type cannot fail validation.
func (p *Prompter) clearDisallowed() {
	if !p.opts.Composer.BreakingAllowed(p.answers.Type) {
		p.answers.Breaking = ""
	}
}

func (p *Prompter) typeForm() *huh.Form {
	return p.newForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(p.opts.Catalog.Text(messages.KeyType)).
			Options(typeOptions(p.opts.Composer.Types())...).
			Filtering(true).
			Value(&p.answers.Type),
	))
}

func (p *Prompter) breakingForm() *huh.Form {
	return p.newForm(huh.NewGroup(
		huh.NewInput().
			Title(p.opts.Catalog.Text(messages.KeyBreaking)).
			Value(&p.answers.Breaking),
	))
}

func (p *Prompter) scopeForm() *huh.Form {
	cat := p.opts.Catalog
	names := p.opts.Composer.ScopesFor(p.answers.Type)

	if len(names) == 0 {
		return p.newForm(huh.NewGroup(
			huh.NewInput().
				Title(cat.Text(messages.KeyCustomScope)).
				Value(&p.answers.Scope).
				Validate(p.validateScope),
		))
	}

	p.customScope = ""
	p.scopeChoice = p.initialScopeChoice(names)
	return p.newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(cat.Text(messages.KeyScope)).
				Options(scopeOptions(names, p.opts.Composer.CustomScopesAllowed(), cat)...).
				Filtering(true).
				Value(&p.scopeChoice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title(cat.Text(messages.KeyCustomScope)).
				Value(&p.customScope).
				Validate(p.validateScope),
		).WithHideFunc(func() bool { return p.scopeChoice != customScopeValue }),
	)
}

// initialScopeChoice keeps a pre-filled scope, otherwise pre-selects the
// scope detected from the staged files.
func (p *Prompter) initialScopeChoice(names []string) string {
	if p.answers.Scope != "" {
		if slices.Contains(names, p.answers.Scope) {
			return p.answers.Scope
		}
		if p.opts.Composer.CustomScopesAllowed() {
			p.customScope = p.answers.Scope
			return customScopeValue
		}
	}
	if len(p.opts.StagedFiles) == 0 {
		return emptyScopeValue
	}
	detected, err := scope.Detect(p.opts.StagedFiles, p.opts.Config.ScopeRules(p.answers.Type))
	if err != nil {
		logging.New("prompt").Debug("scope detection failed", "error", err)
		return emptyScopeValue
	}
	if slices.Contains(names, detected) {
		return detected
	}
	return emptyScopeValue
}

// resolveScope copies the select result into the answers.
func (p *Prompter) resolveScope() {
	if len(p.opts.Composer.ScopesFor(p.answers.Type)) == 0 {
		return
	}
	switch p.scopeChoice {
	case customScopeValue:
		p.answers.Scope = p.customScope
	case emptyScopeValue:
		p.answers.Scope = ""
	default:
		p.answers.Scope = p.scopeChoice
	}
}

func (p *Prompter) detailsForm() *huh.Form {
	cat := p.opts.Catalog
	cfg := p.opts.Config

	fields := []huh.Field{
		huh.NewInput().
			Title(cat.Text(messages.KeySubject)).
			DescriptionFunc(p.headerUsage, &p.answers.Subject).
			Value(&p.answers.Subject).
			Validate(p.validateSubject),
	}
	if !cfg.Skips(config.QuestionBody) {
		fields = append(fields, huh.NewText().
			Title(cat.Text(messages.KeyBody)).
			Value(&p.answers.Body))
	}
	return p.newForm(huh.NewGroup(fields...))
}

func (p *Prompter) footerForm() *huh.Form {
	return p.newForm(huh.NewGroup(
		huh.NewInput().
			Title(p.opts.Catalog.Text(messages.KeyFooter)).
			Value(&p.answers.Issues),
	))
}

func (p *Prompter) confirmForm() *huh.Form {
	cat := p.opts.Catalog
	p.confirmed = false
	return p.newForm(huh.NewGroup(
		huh.NewNote().
			Title(cat.Label(messages.LabelPreview, nil)).
			Description(p.preview()),
		huh.NewConfirm().
			Title(cat.Text(messages.KeyConfirmCommit)).
			Affirmative(cat.Label(messages.LabelYes, nil)).
			Negative(cat.Label(messages.LabelNo, nil)).
			Value(&p.confirmed),
	))
}

// preview renders the current answers, or the validation error when they
// would be rejected.
func (p *Prompter) preview() string {
	msg, err := p.opts.Composer.Compose(p.answers)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	return RenderPreview(msg)
}

// newForm applies the shared theme, key map and output settings.
func (p *Prompter) newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithTheme(huh.ThemeCharm()).
		WithWidth(formWidth).
		WithKeyMap(quitKeyMap()).
		WithAccessible(p.opts.Accessible).
		WithOutput(p.opts.Output).
		WithProgramOptions(tea.WithOutput(p.opts.Output))
}

// quitKeyMap lets Esc abort a form in addition to Ctrl+C.
func quitKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	)
	return km
}

// mapErr converts huh-specific errors into ErrCancelled so callers do not
// need to import huh.
func mapErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return fmt.Errorf("prompt: %w", err)
}
