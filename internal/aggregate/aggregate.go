// Package aggregate writes the aggregation scripts that let r.js bundle a
// whole shared module, or every library, through a single identifier:
//
//   - <shared>/<module>/<module>.all.js requires every script of the module;
//   - <scripts>/libs.all.js requires every library of the entry script.
package aggregate

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/papapumpkin/bundlegen/internal/libpaths"
	"github.com/papapumpkin/bundlegen/internal/scan"
)

// Marker ends the hand-written part of an aggregation file. Everything up to
// and including it survives regeneration.
const Marker = "/* gulp:custom-includes-end */"

var markerPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(Marker))

// LibsFile is the name of the library aggregation file.
const LibsFile = "libs.all.js"

const (
	allHeader = "'use strict';\ndefine([\n"
	footer    = "], function() {});"

	defaultConcurrency = 4
)

// Synthesizer writes aggregation files.
type Synthesizer struct {
	FS          afero.Fs    // default: OS filesystem
	Logger      *log.Logger // default: stderr with "bundlegen" prefix
	Concurrency int         // folders written at once (default: 4)
}

// Folder describes the outcome for one shared module folder.
type Folder struct {
	Name    string
	File    string // path of the aggregation file
	Scripts int    // scripts listed
	Written bool   // false when there was nothing to write
	Kept    bool   // the hand-written prefix was preserved
}

// Report lists the folders processed by GenerateAllFiles, sorted by name.
type Report struct {
	Folders []Folder
}

// Written returns the number of aggregation files written.
func (r Report) Written() int {
	n := 0
	for _, f := range r.Folders {
		if f.Written {
			n++
		}
	}
	return n
}

func (s *Synthesizer) applyDefaults() {
	if s.FS == nil {
		s.FS = afero.NewOsFs()
	}
	if s.Logger == nil {
		s.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "bundlegen"})
	}
	if s.Concurrency <= 0 {
		s.Concurrency = defaultConcurrency
	}
}

// GenerateAllFiles writes <sub>/<sub>.all.js for every immediate subfolder of
// baseFolder. Each file requires every script of its folder except spec,
// aggregation, definition and config scripts. Folders touch disjoint files and
// are processed concurrently; the first error cancels the rest.
func (s *Synthesizer) GenerateAllFiles(ctx context.Context, baseFolder string) (Report, error) {
	s.applyDefaults()

	subs, err := scan.Subfolders(s.FS, baseFolder)
	if err != nil {
		return Report{}, err
	}

	folders := make([]Folder, len(subs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, sub := range subs {
		g.Go(func() error {
			f, err := s.generateAllFile(gctx, baseFolder, sub)
			if err != nil {
				return fmt.Errorf("aggregating %s: %w", sub, err)
			}
			folders[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Report{Folders: folders}, nil
}

func (s *Synthesizer) generateAllFile(ctx context.Context, baseFolder, sub string) (Folder, error) {
	dir := filepath.Join(baseFolder, sub)
	target := filepath.Join(dir, sub+".all.js")
	f := Folder{Name: sub, File: target}

	scripts, err := scan.AggregateSources(ctx, s.FS, dir)
	if err != nil {
		return f, err
	}
	f.Scripts = len(scripts)

	existing, err := readOptional(s.FS, target)
	if err != nil {
		return f, err
	}

	list := ScriptList(scripts)
	content, kept := Splice(existing, list+footer)
	if !kept {
		content = allHeader + list + footer
	}
	f.Kept = kept

	if existing == "" && list == "" {
		s.Logger.Debug("nothing to aggregate", "folder", sub)
		return f, nil
	}
	if err := afero.WriteFile(s.FS, target, []byte(content), 0o644); err != nil {
		return f, fmt.Errorf("writing %s: %w", target, err)
	}
	f.Written = true
	s.Logger.Debug("wrote aggregation file", "file", target, "scripts", len(scripts), "kept_prefix", kept)
	return f, nil
}

// GenerateLibsFile overwrites destFolder/libs.all.js with a declaration
// requiring every library of entryFile. It returns the file path.
func (s *Synthesizer) GenerateLibsFile(_ context.Context, entryFile, destFolder string) (string, error) {
	s.applyDefaults()

	libs, err := libpaths.Read(s.FS, entryFile)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destFolder, LibsFile)
	if err := afero.WriteFile(s.FS, dest, []byte(LibsContent(libs)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	s.Logger.Debug("wrote libraries file", "file", dest, "libraries", len(libs.Names()))
	return dest, nil
}

// ScriptList renders folder-relative script paths as the body of a
// dependency array, one './'-prefixed identifier per line with no comma after
// the last.
func ScriptList(scripts []string) string {
	var b strings.Builder
	for i, script := range scripts {
		b.WriteString("  './")
		b.WriteString(strings.TrimSuffix(script, path.Ext(script)))
		if i < len(scripts)-1 {
			b.WriteString("',\n")
		} else {
			b.WriteString("'\n")
		}
	}
	return b.String()
}

// LibsContent renders the libs.all.js declaration for libs.
func LibsContent(libs libpaths.Set) string {
	var b strings.Builder
	b.WriteString("define([\n")
	for _, lib := range libs.Names() {
		fmt.Fprintf(&b, "'%s',\n", lib)
	}
	b.WriteString(footer)
	return b.String()
}

// Splice replaces whatever follows Marker in existing with section. The text
// up to and including the first marker (matched case-insensitively) is kept
// verbatim and followed by a newline. When existing holds no marker, Splice
// returns section unchanged and false.
func Splice(existing, section string) (string, bool) {
	loc := markerPattern.FindStringIndex(existing)
	if loc == nil {
		return section, false
	}
	return existing[:loc[1]] + "\n" + section, true
}

// readOptional returns the content of name, or "" when it does not exist.
func readOptional(fsys afero.Fs, name string) (string, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}
