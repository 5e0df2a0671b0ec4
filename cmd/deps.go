package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/amd"
)

var depsCmd = &cobra.Command{
	Use:   "deps <file>...",
	Short: "Print the external dependencies declared by AMD scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		return runDeps(afero.NewOsFs(), cmd.OutOrStdout(), args, all)
	},
}

// runDeps prints one identifier per line, prefixed by the file name when more
// than one file is given.
func runDeps(fsys afero.Fs, w io.Writer, files []string, all bool) error {
	for _, file := range files {
		data, err := afero.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		deps, _, err := amd.ParseDeclaration(string(data))
		if err != nil {
			var pe *amd.ParseError
			if errors.As(err, &pe) {
				pe.File = file
			}
			return err
		}
		if !all {
			deps = amd.External(deps)
		}
		for _, d := range deps {
			if len(files) > 1 {
				fmt.Fprintf(w, "%s: %s\n", file, d)
			} else {
				fmt.Fprintln(w, d)
			}
		}
	}
	return nil
}

func init() {
	depsCmd.Flags().Bool("all", false, "include relative dependencies")
	rootCmd.AddCommand(depsCmd)
}
