package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/rjs"
)

var bundleNameCmd = &cobra.Command{
	Use:   "bundle-name <module>...",
	Short: "Print the bundle file each module name is packaged in",
	Example: `  bundlegen bundle-name shared/widgets/widgets.all
  shared-widgets.bundle`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			fmt.Fprintln(cmd.OutOrStdout(), rjs.BundleFilename(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleNameCmd)
}
