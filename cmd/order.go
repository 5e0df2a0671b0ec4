package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/buildconfig"
	"github.com/papapumpkin/bundlegen/internal/rjs"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the order bundles must be loaded in",
	Long: "Order generates the module and bundle configs and prints the bundle names so that " +
		"every bundle follows the bundles providing what its modules exclude. Bundles that " +
		"depend on each other are reported as an error.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		if err := runOrder(cmd.Context(), e); err != nil {
			e.printer.Error(err.Error())
			return err
		}
		return nil
	},
}

func runOrder(ctx context.Context, e *env) error {
	cfg, err := buildconfig.Load(e.fs, e.cfg.BuildConfig)
	if err != nil {
		return err
	}
	res, err := e.generator().Generate(ctx, cfg.Modules, cfg.Bundles)
	if err != nil {
		return err
	}
	graph, err := rjs.BundleGraph(res.Modules, res.Bundles)
	if err != nil {
		return err
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}
	e.printer.LoadOrder(order, graph.Dependencies)
	for _, name := range order {
		fmt.Fprintln(e.out, name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(orderCmd)
}
