package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/quill/internal/buildinfo"
)

var (
	versionJSON  bool
	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the quill version",
	Long: `Print the quill version together with the commit and build date.

--short prints only the version, which suits scripts and hook installers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if versionJSON && versionShort {
			return errors.New("--json and --short are mutually exclusive")
		}
		info := buildinfo.GetInfo()
		w := cmd.OutOrStdout()
		switch {
		case versionJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case versionShort:
			_, err := fmt.Fprintln(w, info.Version)
			return err
		default:
			_, err := fmt.Fprintln(w, info.String())
			return err
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build information as JSON")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version")
	rootCmd.AddCommand(versionCmd)
}
