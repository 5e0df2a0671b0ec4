package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/buildconfig"
	"github.com/papapumpkin/bundlegen/internal/inject"
)

var injectCmd = &cobra.Command{
	Use:   "inject <dest>",
	Short: "Write the entry script with the generated bundles config inserted",
	Long: "Inject generates the bundles config and replaces every " + inject.Marker +
		" marker of the entry script with it, writing the result to dest. Dest may be the " +
		"entry script itself.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		if err := runInject(cmd.Context(), e, args[0]); err != nil {
			e.printer.Error(err.Error())
			return err
		}
		return nil
	},
}

func runInject(ctx context.Context, e *env, dest string) error {
	cfg, err := buildconfig.Load(e.fs, e.cfg.BuildConfig)
	if err != nil {
		return err
	}
	res, err := e.generator().Generate(ctx, cfg.Modules, cfg.Bundles)
	if err != nil {
		return err
	}
	if err := inject.InsertBundlesFile(e.fs, e.cfg.EntryFile, dest, res.Bundles); err != nil {
		return err
	}
	e.printer.FileWritten(dest)
	return nil
}

func init() {
	rootCmd.AddCommand(injectCmd)
}
