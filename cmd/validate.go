package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/buildconfig"
	"github.com/papapumpkin/bundlegen/internal/inject"
	"github.com/papapumpkin/bundlegen/internal/libpaths"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the entry script, folders and build config are usable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		return runValidate(e)
	},
}

// runValidate reports every check on its own line and fails if any check
// failed. A missing insertion marker is only a warning since the inject step
// is optional.
func runValidate(e *env) error {
	var failed []string
	check := func(name string, err error) {
		if err != nil {
			fmt.Fprintf(e.out, "✗ %s: %v\n", name, err)
			failed = append(failed, name)
			return
		}
		fmt.Fprintf(e.out, "✓ %s\n", name)
	}

	data, err := afero.ReadFile(e.fs, e.cfg.EntryFile)
	check("entry script "+e.cfg.EntryFile, err)
	if err == nil {
		content := string(data)
		libs := libpaths.Parse(content)
		if len(libs.Names()) == 0 {
			check("library paths region", fmt.Errorf("no libraries between %s and %s", libpaths.StartMarker, libpaths.EndMarker))
		} else {
			check(fmt.Sprintf("library paths region (%d libraries)", len(libs.Names())), nil)
		}
		if !inject.HasMarker(content) {
			fmt.Fprintf(e.out, "! no %s marker: inject will fail\n", inject.Marker)
		}
	}

	check("scripts root "+e.cfg.ScriptsRoot, requireDir(e.fs, e.cfg.ScriptsRoot))
	check("shared folder "+e.cfg.SharedDir, requireDir(e.fs, e.cfg.SharedDir))

	cfg, err := buildconfig.Load(e.fs, e.cfg.BuildConfig)
	if err == nil {
		check(fmt.Sprintf("build config %s (%d modules)", e.cfg.BuildConfig, len(cfg.Modules)), nil)
	} else {
		check("build config "+e.cfg.BuildConfig, err)
	}

	if len(failed) > 0 {
		return fmt.Errorf("validation failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

func requireDir(fsys afero.Fs, dir string) error {
	ok, err := afero.DirExists(fsys, dir)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("not a directory")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
