package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var typesJSON bool

// typeRow is one entry of `quill types --json`.
type typeRow struct {
	Key         string   `json:"key"`
	Description string   `json:"description"`
	Breaking    bool     `json:"breaking_allowed"`
	Scopes      []string `json:"scopes"`
}

// typesCmd implements "quill types".
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the configured commit types",
	Long: `List the commit types from the resolved configuration together with
whether they accept a breaking change and which scopes they offer.`,
	Args: cobra.NoArgs,
	RunE: runTypes,
}

func init() {
	typesCmd.Flags().BoolVar(&typesJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(typesCmd)
}

func runTypes(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	rows := make([]typeRow, 0, len(s.composer.Types()))
	for _, t := range s.composer.Types() {
		scopes := s.composer.ScopesFor(t.Key)
		if scopes == nil {
			scopes = []string{}
		}
		rows = append(rows, typeRow{
			Key:         t.Key,
			Description: t.Description,
			Breaking:    s.composer.BreakingAllowed(t.Key),
			Scopes:      scopes,
		})
	}

	out := cmd.OutOrStdout()
	if typesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	fmt.Fprintln(out, renderTypesTable(rows, s.composer.CustomScopesAllowed()))
	return nil
}

func renderTypesTable(rows []typeRow, customScopes bool) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		breaking := "no"
		if r.Breaking {
			breaking = "yes"
		}
		scopes := strings.Join(r.Scopes, ", ")
		if customScopes {
			if scopes != "" {
				scopes += ", "
			}
			scopes += "(custom)"
		}
		if scopes == "" {
			scopes = "-"
		}
		data = append(data, []string{r.Key, r.Description, breaking, scopes})
	}

	t := table.New().
		Headers("TYPE", "DESCRIPTION", "BREAKING", "SCOPES").
		Rows(data...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}
