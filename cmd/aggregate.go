package cmd

import (
	"github.com/spf13/cobra"
)

var aggregateCmd = &cobra.Command{
	Use:     "aggregate",
	Aliases: []string{"all"},
	Short:   "Write the *.all.js file of every shared module and libs.all.js",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		libsOnly, _ := cmd.Flags().GetBool("libs-only")
		if libsOnly {
			return runLibs(cmd, e)
		}
		if err := runAggregate(cmd.Context(), e); err != nil {
			e.printer.Error(err.Error())
			return err
		}
		return nil
	},
}

func runLibs(cmd *cobra.Command, e *env) error {
	dest, err := e.synthesizer().GenerateLibsFile(cmd.Context(), e.cfg.EntryFile, e.cfg.LibsDir())
	if err != nil {
		e.printer.Error(err.Error())
		return err
	}
	e.printer.FileWritten(dest)
	return nil
}

func init() {
	aggregateCmd.Flags().Bool("libs-only", false, "only write libs.all.js")
	rootCmd.AddCommand(aggregateCmd)
}
