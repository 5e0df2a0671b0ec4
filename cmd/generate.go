package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/buildconfig"
	"github.com/papapumpkin/bundlegen/internal/dag"
	"github.com/papapumpkin/bundlegen/internal/inject"
	"github.com/papapumpkin/bundlegen/internal/rjs"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write aggregation files, module and bundle configs for an r.js build",
	Long: "Generate runs the whole pipeline: shared-module *.all.js files, libs.all.js, the " +
		"module config (written with the optimizer options) and the bundles config. With " +
		"--inject-into the bundles config is also inserted into a copy of the entry script.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		opts := generateOptions{}
		opts.dryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.skipAggregate, _ = cmd.Flags().GetBool("skip-aggregate")
		opts.injectInto, _ = cmd.Flags().GetString("inject-into")
		opts.outputDir, _ = cmd.Flags().GetString("output")
		if opts.outputDir == "" {
			opts.outputDir = e.cfg.OutputDir
		}
		e.printer.Banner()
		_, err = runGenerate(cmd.Context(), e, opts)
		if err != nil {
			e.printer.Error(err.Error())
		}
		return err
	},
}

type generateOptions struct {
	dryRun        bool
	skipAggregate bool
	injectInto    string
	outputDir     string
}

func runGenerate(ctx context.Context, e *env, opts generateOptions) (*rjs.Result, error) {
	cfg, err := buildconfig.Load(e.fs, e.cfg.BuildConfig)
	if err != nil {
		return nil, err
	}

	// Module naming picks up *.all.js files, so they are refreshed first.
	if !opts.dryRun && !opts.skipAggregate {
		if err := runAggregate(ctx, e); err != nil {
			return nil, err
		}
	}

	res, err := e.generator().Generate(ctx, cfg.Modules, cfg.Bundles)
	if err != nil {
		return nil, err
	}

	e.printer.Modules(res.Modules)
	e.printer.Bundles(res.Bundles)
	if err := printLoadOrder(e, res); err != nil {
		if !errors.Is(err, dag.ErrCycle) {
			return nil, err
		}
		// Bundles that exclude each other are valid r.js input; only the
		// order report is lost.
		e.logger.Warn("skipping bundle load order", "err", err)
	}

	if opts.dryRun {
		e.printer.Info("dry run: nothing written")
		return res, nil
	}

	paths, err := cfg.WriteOutputs(e.fs, opts.outputDir, res.Modules, res.Bundles)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		e.printer.FileWritten(p)
	}

	if opts.injectInto != "" {
		if err := inject.InsertBundlesFile(e.fs, e.cfg.EntryFile, opts.injectInto, res.Bundles); err != nil {
			return nil, err
		}
		e.printer.FileWritten(opts.injectInto)
	}
	e.printer.Success(fmt.Sprintf("%d module(s), %d bundle(s)", len(res.Modules), len(res.Bundles)))
	return res, nil
}

// printLoadOrder prints the order in which bundles can be loaded.
func printLoadOrder(e *env, res *rjs.Result) error {
	graph, err := rjs.BundleGraph(res.Modules, res.Bundles)
	if err != nil {
		return err
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}
	e.printer.LoadOrder(order, graph.Dependencies)
	return nil
}

// runAggregate writes the shared-module aggregation files and libs.all.js.
func runAggregate(ctx context.Context, e *env) error {
	s := e.synthesizer()
	report, err := s.GenerateAllFiles(ctx, e.cfg.SharedDir)
	if err != nil {
		return err
	}
	e.printer.Aggregation(report)

	dest, err := s.GenerateLibsFile(ctx, e.cfg.EntryFile, e.cfg.LibsDir())
	if err != nil {
		return err
	}
	e.printer.FileWritten(dest)
	return nil
}

func init() {
	generateCmd.Flags().Bool("dry-run", false, "print the generated configs without writing anything")
	generateCmd.Flags().Bool("skip-aggregate", false, "do not rewrite *.all.js and libs.all.js")
	generateCmd.Flags().String("inject-into", "", "write the entry script with the bundles config inserted to this path")
	generateCmd.Flags().StringP("output", "o", "", "folder for the generated JSON (default build)")
	rootCmd.AddCommand(generateCmd)
}
