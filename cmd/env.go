package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/aggregate"
	"github.com/papapumpkin/bundlegen/internal/config"
	"github.com/papapumpkin/bundlegen/internal/rjs"
	"github.com/papapumpkin/bundlegen/internal/ui"
)

// env carries what every command needs, so run functions can be exercised
// against an in-memory filesystem.
type env struct {
	fs      afero.Fs
	cfg     config.Config
	logger  *log.Logger
	printer *ui.Printer
	out     io.Writer // machine-readable output
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &env{
		fs:      afero.NewOsFs(),
		cfg:     cfg,
		logger:  newLogger(os.Stderr, cfg.Verbose),
		printer: ui.New(),
		out:     cmd.OutOrStdout(),
	}, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "bundlegen"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (e *env) generator() *rjs.Generator {
	return &rjs.Generator{
		FS:          e.fs,
		EntryFile:   e.cfg.EntryFile,
		ScriptsRoot: e.cfg.ScriptsRoot,
		Logger:      e.logger,
	}
}

func (e *env) synthesizer() *aggregate.Synthesizer {
	return &aggregate.Synthesizer{
		FS:          e.fs,
		Logger:      e.logger,
		Concurrency: e.cfg.Concurrency,
	}
}
