package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/config"
)

// initFlagName and initFlagForce are the flag values for the init subcommand.
var (
	initFlagName   string
	initFlagForce  bool
	initFlagScopes bool
)

// skippedScopeDirs are top-level directories never offered as scopes.
var skippedScopeDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

// initCmd implements "quill init [template]".
var initCmd = &cobra.Command{
	Use:   "init [template]",
	Short: "Write a .quill.toml from a template",
	Long: `Write a .quill.toml into the current directory by rendering an embedded
template. Each top-level directory becomes a scope whose path glob
pre-selects it when only files below it are staged.

An existing .quill.toml, .quill.yaml or .quill.yml is preserved unless
--force is supplied.

Examples:
  quill init                         # conventional template, scopes from directories
  quill init minimal                 # short config that skips body and breaking
  quill init --no-scopes --force     # overwrite, without scopes`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names, _ := config.ListTemplates()
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initFlagName, "name", "n", "", "Project name (defaults to current directory name)")
	initCmd.Flags().BoolVar(&initFlagForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initFlagScopes, "scopes", true, "Derive scopes from top-level directories")
	rootCmd.AddCommand(initCmd)
}

// runInit is the RunE handler for the init command.
func runInit(cmd *cobra.Command, args []string) error {
	templateName := config.DefaultTemplate
	if len(args) > 0 {
		templateName = args[0]
	}

	if !config.TemplateExists(templateName) {
		available, listErr := config.ListTemplates()
		if listErr != nil {
			return fmt.Errorf("listing available templates: %w", listErr)
		}
		return fmt.Errorf("template %q not found; available templates: %s",
			templateName, strings.Join(available, ", "))
	}

	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	projectName := initFlagName
	if projectName == "" {
		projectName = filepath.Base(destDir)
	}

	for _, name := range config.ConfigFileNames {
		existing := filepath.Join(destDir, name)
		if _, statErr := os.Stat(existing); statErr == nil && !initFlagForce {
			return fmt.Errorf("%s already exists in %s; use --force to overwrite", name, destDir)
		}
	}

	vars := config.NewTemplateVars(projectName)
	if initFlagScopes {
		scopes, scanErr := scopesFromDirs(destDir)
		if scanErr != nil {
			return scanErr
		}
		vars.Scopes = scopes
	}

	created, err := config.RenderTemplate(templateName, destDir, vars, initFlagForce)
	if err != nil {
		return fmt.Errorf("rendering template %q: %w", templateName, err)
	}

	// Status output goes to stderr.
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Initialized %q from template %q\n\n", projectName, templateName)

	if len(created) > 0 {
		fmt.Fprintln(stderr, "Created files:")
		for _, f := range created {
			rel, relErr := filepath.Rel(destDir, f)
			if relErr != nil {
				rel = f
			}
			fmt.Fprintf(stderr, "  %s\n", rel)
		}
		fmt.Fprintln(stderr)
	}
	if len(vars.Scopes) > 0 {
		cfg := config.Config{Scopes: vars.Scopes}
		fmt.Fprintf(stderr, "Scopes: %s\n\n", strings.Join(cfg.ScopeNames(), ", "))
	}

	fmt.Fprintln(stderr, "Next steps:")
	fmt.Fprintln(stderr, "  1. Review the types and scopes in .quill.toml")
	fmt.Fprintln(stderr, "  2. Check it with: quill config validate")
	fmt.Fprintln(stderr, "  3. Stage changes and run: quill")
	return nil
}

// scopesFromDirs returns one scope per visible top-level directory of root,
// sorted by name, each matching every file below it.
func scopesFromDirs(root string) ([]config.ScopeConfig, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var scopes []config.ScopeConfig
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
			skippedScopeDirs[name] || strings.ContainsAny(name, " ()") {
			continue
		}
		scopes = append(scopes, config.ScopeConfig{Name: name, Paths: []string{name + "/**"}})
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].Name < scopes[j].Name })
	return scopes, nil
}
