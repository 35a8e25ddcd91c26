package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reliverse/reliverse/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the reliverse version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipReconcileAnnotation: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "reliverse %s\n", version.GetFullVersion())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
