package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/config"
	"github.com/AbdelazizMoustafa10m/quill/internal/git"
	"github.com/AbdelazizMoustafa10m/quill/internal/logging"
	"github.com/AbdelazizMoustafa10m/quill/internal/messages"
)

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, env, CLI flags). It returns the resolved config, the TOML metadata
// (nil when no TOML file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
func loadAndResolveConfig(cmd *cobra.Command) (*config.ResolvedConfig, *toml.MetaData, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, nil, fmt.Errorf("finding config file: %w", err)
		}
		cfgPath = found
	}

	var (
		fileCfg *config.Config
		meta    *toml.MetaData
	)
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		fileCfg, meta = fc, md
	}

	resolved := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, cliOverrides(cmd))
	resolved.Path = cfgPath
	return resolved, meta, nil
}

// cliOverrides collects the config override flags the user actually set.
func cliOverrides(cmd *cobra.Command) *config.CLIOverrides {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	o := &config.CLIOverrides{}
	if changed("max-header-width") {
		o.MaxHeaderWidth = &flagMaxHeaderWidth
	}
	if changed("max-line-width") {
		o.MaxLineWidth = &flagMaxLineWidth
	}
	if changed("language") {
		o.Language = &flagLanguage
	}
	if changed("breakline") {
		o.BreaklineChar = &flagBreakline
	}
	if changed("footer-prefix") {
		o.FooterPrefix = &flagFooterPrefix
	}
	return o
}

// session bundles what every composing command needs.
type session struct {
	resolved *config.ResolvedConfig
	composer *commit.Composer
	catalog  *messages.Catalog
}

func (s *session) config() *config.Config {
	return s.resolved.Config
}

// newSession loads and validates the configuration and builds the composer
// and message catalog from it. Validation warnings are logged; errors abort.
func newSession(cmd *cobra.Command) (*session, error) {
	logger := logging.New("config")

	resolved, meta, err := loadAndResolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if resolved.Path != "" {
		logger.Debug("loaded config", "path", resolved.Path)
	}

	result := config.Validate(resolved.Config, meta)
	for _, w := range result.Warnings() {
		logger.Warn(w.Message, "field", w.Field)
	}
	if result.HasErrors() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
		return nil, fmt.Errorf("invalid configuration (run `quill config validate`):\n  %s", strings.Join(msgs, "\n  "))
	}

	comp, err := resolved.Config.NewComposer()
	if err != nil {
		return nil, err
	}
	cat, err := resolved.Config.NewCatalog()
	if err != nil {
		return nil, err
	}
	return &session{resolved: resolved, composer: comp, catalog: cat}, nil
}

// repoContext is the repository state gathered before prompting.
type repoContext struct {
	Root   string
	Branch string
	Staged []string
}

// collectRepoContext queries git for the repository root, the current
// branch and the staged files concurrently. A detached HEAD leaves Branch
// empty.
func collectRepoContext(ctx context.Context, g *git.GitClient) (*repoContext, error) {
	var rc repoContext
	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		root, err := g.RepoRoot(egctx)
		rc.Root = root
		return err
	})
	eg.Go(func() error {
		branch, err := g.CurrentBranch(egctx)
		if errors.Is(err, git.ErrDetachedHead) {
			return nil
		}
		rc.Branch = branch
		return err
	})
	eg.Go(func() error {
		files, err := g.StagedFiles(egctx)
		rc.Staged = files
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &rc, nil
}

// ticketIssues returns the issues default derived from the branch name, or
// "" when the ticket feature is off or nothing matches.
func ticketIssues(cfg *config.Config, branch string) string {
	if !cfg.TicketEnabled() {
		return ""
	}
	ticket, err := git.TicketFromBranch(branch, cfg.Ticket.Pattern)
	if err != nil || ticket == "" {
		return ""
	}
	return cfg.Ticket.Prefix + ticket
}
