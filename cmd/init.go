package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/buildconfig"
	"github.com/papapumpkin/bundlegen/internal/rjs"
	"github.com/papapumpkin/bundlegen/internal/scan"
)

var errConfigExists = errors.New("build config already exists")

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter build config listing the app, libraries and shared modules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		if err := runInit(e, force); err != nil {
			e.printer.Error(err.Error())
			return err
		}
		return nil
	},
}

// runInit writes a build config with the app module, the libraries module
// and one path-only module per shared folder.
func runInit(e *env, force bool) error {
	path := e.cfg.BuildConfig
	if exists, _ := afero.Exists(e.fs, path); exists && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
	}

	noLibs := false
	cfg := &buildconfig.BuildConfig{
		Optimizer: map[string]any{
			"baseUrl":        e.cfg.ScriptsRoot,
			"mainConfigFile": e.cfg.EntryFile,
			"dir":            e.cfg.OutputDir + "/scripts",
			"removeCombined": true,
		},
		Modules: []rjs.Module{
			{Name: rjs.AppModule, Include: []string{rjs.AppModule}, InsertRequire: []string{rjs.AppModule}},
			{Name: rjs.LibsModule, Include: []string{rjs.LibsModule}, ExcludeLibs: &noLibs, Create: true},
		},
		Bundles: rjs.Bundles{},
	}

	subs, err := scan.Subfolders(e.fs, e.cfg.SharedDir)
	if err != nil && !errors.Is(err, scan.ErrFolderNotFound) {
		return err
	}
	prefix, err := relativeTo(e.cfg.ScriptsRoot, e.cfg.SharedDir)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		cfg.Modules = append(cfg.Modules, rjs.Module{Path: prefix + sub})
	}

	if err := buildconfig.Save(e.fs, path, cfg); err != nil {
		return err
	}
	e.printer.FileWritten(path)
	return nil
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing build config")
	rootCmd.AddCommand(initCmd)
}

// relativeTo returns dir relative to root as a slash path ending in "/", or
// "" when they are the same folder.
func relativeTo(root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("shared folder %s: %w", dir, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("shared folder %s is outside the scripts root %s", dir, root)
	}
	return rel + "/", nil
}
