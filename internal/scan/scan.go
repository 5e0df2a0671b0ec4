// Package scan lists the script files of an AMD module folder.
//
// All listings walk the folder depth-first in lexical order and return paths
// relative to the folder, slash-separated, so the same tree always yields the
// same result on every platform.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// ErrFolderNotFound indicates a module folder does not exist.
var ErrFolderNotFound = errors.New("module folder not found")

// Glob patterns for the file naming conventions fileName.type.js.
var (
	// EntryPatterns match scripts that define a module's public surface.
	EntryPatterns = []string{"**/*.ctrl.js", "**/*.component.js", "**/*.all.js"}

	// DefinitionPatterns match module-definition files.
	DefinitionPatterns = []string{"**/*.module.js"}

	scriptPatterns = []string{"**/*.js"}

	// moduleScriptIgnores are skipped when collecting a module's dependencies.
	moduleScriptIgnores = []string{"**/*.module.js", "**/*.config.js", "**/*.spec.js"}

	// aggregateIgnores are never listed in an aggregation file.
	aggregateIgnores = []string{"**/*.spec.js", "**/*.all.js", "**/*.module.js", "**/*.config.js"}
)

// Entry is the result of scanning a module folder for entry scripts.
type Entry struct {
	Scripts []string
}

// Count returns the number of entry scripts found.
func (e Entry) Count() int {
	return len(e.Scripts)
}

// First returns the first entry script in scan order, or "" if none.
func (e Entry) First() string {
	if len(e.Scripts) == 0 {
		return ""
	}
	return e.Scripts[0]
}

// EntryScripts returns every *.ctrl.js, *.component.js and *.all.js file under
// dir.
func EntryScripts(ctx context.Context, fsys afero.Fs, dir string) (Entry, error) {
	files, err := Files(ctx, fsys, dir, EntryPatterns, nil)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Scripts: files}, nil
}

// ModuleScripts returns every script under dir whose declared dependencies
// count towards the module's excludes.
func ModuleScripts(ctx context.Context, fsys afero.Fs, dir string) ([]string, error) {
	return Files(ctx, fsys, dir, scriptPatterns, moduleScriptIgnores)
}

// DefinitionFiles returns every *.module.js file under dir.
func DefinitionFiles(ctx context.Context, fsys afero.Fs, dir string) ([]string, error) {
	return Files(ctx, fsys, dir, DefinitionPatterns, nil)
}

// AggregateSources returns the scripts under dir that belong in the folder's
// aggregation file.
func AggregateSources(ctx context.Context, fsys afero.Fs, dir string) ([]string, error) {
	return Files(ctx, fsys, dir, scriptPatterns, aggregateIgnores)
}

// Files walks dir and returns the relative paths of regular files matching any
// of include and none of exclude.
func Files(ctx context.Context, fsys afero.Fs, dir string, include, exclude []string) ([]string, error) {
	if err := requireDir(fsys, dir); err != nil {
		return nil, err
	}

	var files []string
	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

// Subfolders returns the names of the immediate subdirectories of dir, sorted.
func Subfolders(fsys afero.Fs, dir string) ([]string, error) {
	if err := requireDir(fsys, dir); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func requireDir(fsys afero.Fs, dir string) error {
	ok, err := afero.DirExists(fsys, dir)
	if err != nil {
		return fmt.Errorf("checking %s: %w", dir, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, dir)
	}
	return nil
}

// matchAny reports whether rel matches one of patterns. "**/" also matches
// files at the top level, as globbing tools conventionally do.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
