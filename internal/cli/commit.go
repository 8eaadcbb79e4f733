package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/commit"
	"github.com/AbdelazizMoustafa10m/quill/internal/draft"
	"github.com/AbdelazizMoustafa10m/quill/internal/git"
	"github.com/AbdelazizMoustafa10m/quill/internal/logging"
	"github.com/AbdelazizMoustafa10m/quill/internal/messages"
	"github.com/AbdelazizMoustafa10m/quill/internal/prompt"
)

// envAccessible is the environment variable huh-based tools check to switch
// to line-based prompts for screen readers.
const envAccessible = "ACCESSIBLE"

// commitFlags holds the flags shared by `quill` and `quill commit`.
type commitFlags struct {
	DryRun     bool
	Copy       bool
	Retry      bool
	NoVerify   bool
	Signoff    bool
	Amend      bool
	Accessible bool
}

var commitOpts commitFlags

// Seams replaced by tests.
var (
	stdinIsTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	askAnswers = func(ctx context.Context, opts prompt.Options) (commit.Answers, error) {
		p, err := prompt.New(opts)
		if err != nil {
			return commit.Answers{}, err
		}
		return p.Run(ctx)
	}
	copyToClipboard = clipboard.WriteAll
	openDraftStore  = draft.DefaultStore
)

// commitCmd implements "quill commit".
var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Compose a commit message interactively and commit",
	Long: `Ask for the commit type, scope, subject, body, breaking change and
issues, show the rendered message and hand it to "git commit".

When git rejects the commit (for example a failing hook) the answers are
saved so "quill commit --retry" can try again without asking.

Examples:
  quill commit                 # compose and commit the staged changes
  quill commit --dry-run       # print the message instead of committing
  quill commit --copy          # also copy the message to the clipboard
  quill commit --retry         # reuse the answers of the last failed commit
  quill commit --amend         # reword the last commit, staged changes included`,
	Args: cobra.NoArgs,
	RunE: runCommit,
}

func init() {
	addCommitFlags(commitCmd)
	rootCmd.AddCommand(commitCmd)
}

// addCommitFlags binds the commit flags on cmd. Both the root command and
// the commit subcommand carry them.
func addCommitFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&commitOpts.DryRun, "dry-run", false, "Print the message instead of committing")
	f.BoolVar(&commitOpts.Copy, "copy", false, "Copy the message to the clipboard")
	f.BoolVar(&commitOpts.Retry, "retry", false, "Reuse the answers saved by the last failed commit")
	f.BoolVar(&commitOpts.NoVerify, "no-verify", false, "Pass --no-verify to git commit")
	f.BoolVarP(&commitOpts.Signoff, "signoff", "s", false, "Pass --signoff to git commit")
	f.BoolVar(&commitOpts.Amend, "amend", false, "Replace the last commit instead of creating a new one")
	f.BoolVar(&commitOpts.Accessible, "accessible", false, "Use line-based prompts for screen readers (env: ACCESSIBLE)")
}

// runCommit is the RunE handler for both `quill` and `quill commit`.
func runCommit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New("commit")
	opts := commitOpts

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	client, repo, err := openRepo(ctx, opts.DryRun)
	if err != nil {
		return err
	}
	// amended is the commit --amend replaces; amending needs no staged changes.
	var amended string
	if client != nil && !opts.DryRun {
		if opts.Amend {
			amended, err = client.HeadCommit(ctx)
			if err != nil {
				return fmt.Errorf("--amend needs an existing commit: %w", err)
			}
		} else {
			staged, stErr := client.HasStagedChanges(ctx)
			if stErr != nil {
				return stErr
			}
			if !staged {
				return fmt.Errorf("%w (stage changes with git add)", git.ErrNothingStaged)
			}
		}
	}

	store, err := openDraftStore()
	if err != nil {
		logger.Warn("drafts unavailable", "error", err)
		store = nil
	}

	answers, err := collectAnswers(ctx, s, repo, store, opts)
	if errors.Is(err, prompt.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), s.catalog.Label(messages.LabelCancelled, nil))
		return nil
	}
	if err != nil {
		return err
	}

	msg, err := s.composer.Compose(answers)
	if err != nil {
		return err
	}

	if opts.Copy {
		if cpErr := copyToClipboard(msg); cpErr != nil {
			logger.Warn("copying to clipboard failed", "error", cpErr)
		} else {
			logger.Info("copied message to clipboard")
		}
	}

	if opts.DryRun {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	}

	summary, err := client.Commit(ctx, msg, git.CommitOptions{
		NoVerify: opts.NoVerify,
		Signoff:  opts.Signoff,
		Amend:    opts.Amend,
	})
	if err != nil {
		if store != nil {
			if saveErr := store.Save(repo.Root, answers, msg); saveErr != nil {
				logger.Warn("saving draft failed", "error", saveErr)
			} else {
				logger.Info("answers saved; run `quill commit --retry` to try again")
			}
		}
		return err
	}

	if store != nil {
		if clrErr := store.Clear(repo.Root); clrErr != nil {
			logger.Warn("clearing draft failed", "error", clrErr)
		}
	}
	if opts.Amend {
		if head, hErr := client.HeadCommit(ctx); hErr == nil {
			logger.Info("amended commit", "from", amended, "to", head)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), styleSuccess.Render(summary))
	return nil
}

// openRepo opens the repository in the working directory. Outside a
// repository a dry run still works with an empty context.
func openRepo(ctx context.Context, dryRun bool) (*git.GitClient, *repoContext, error) {
	client, err := git.NewGitClient("")
	if err != nil {
		if dryRun {
			logging.New("commit").Debug("no git repository; composing without repository context", "error", err)
			return nil, &repoContext{}, nil
		}
		return nil, nil, err
	}
	repo, err := collectRepoContext(ctx, client)
	if err != nil {
		return nil, nil, err
	}
	return client, repo, nil
}

// collectAnswers loads the saved draft for --retry, otherwise runs the
// interactive prompt.
func collectAnswers(ctx context.Context, s *session, repo *repoContext, store *draft.Store, opts commitFlags) (commit.Answers, error) {
	if opts.Retry {
		if store == nil || repo.Root == "" {
			return commit.Answers{}, errors.New("--retry needs a git repository and a writable cache directory")
		}
		d, err := store.Load(repo.Root)
		if err != nil {
			if errors.Is(err, draft.ErrNoDraft) {
				return commit.Answers{}, fmt.Errorf("%w for %s; run quill commit without --retry", err, repo.Root)
			}
			return commit.Answers{}, err
		}
		logging.New("commit").Debug("loaded draft", "saved_at", d.SavedAt)
		return d.Answers, nil
	}

	if !stdinIsTerminal() {
		return commit.Answers{}, errors.New("interactive mode needs a terminal; use `quill render` or `quill commit --retry`")
	}

	return askAnswers(ctx, prompt.Options{
		Config:      s.config(),
		Composer:    s.composer,
		Catalog:     s.catalog,
		StagedFiles: repo.Staged,
		Defaults:    commit.Answers{Issues: ticketIssues(s.config(), repo.Branch)},
		Accessible:  opts.Accessible || accessibleFromEnv(),
		Output:      os.Stderr,
	})
}

func accessibleFromEnv() bool {
	v, ok := os.LookupEnv(envAccessible)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
