// Package libpaths reads the library identifiers declared in the marked
// paths region of an application's entry script:
//
//	paths: {
//	  /* libs-paths:start */
//	  'jquery': 'vendor/jquery/jquery',
//	  "angular": 'vendor/angular/angular',
//	  /* libs-paths:end */
//	}
package libpaths

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Marker comments delimiting the library region. Their literal text is part of
// the entry script contract.
const (
	StartMarker = "/* libs-paths:start */"
	EndMarker   = "/* libs-paths:end */"
)

var (
	startPattern = regexp.MustCompile(`(?im)` + regexp.QuoteMeta(StartMarker))
	endPattern   = regexp.MustCompile(`(?im)` + regexp.QuoteMeta(EndMarker))

	// objectKeyPattern matches a quoted object key followed by a colon.
	objectKeyPattern = regexp.MustCompile(`['"]([^'"\n]*)['"] *:`)
)

// Set is the ordered list of library identifiers found in an entry script.
// Duplicates and empty keys are kept as found.
type Set []string

// Names returns the non-empty identifiers of s in order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for _, name := range s {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Contains reports whether id is one of the library identifiers.
func (s Set) Contains(id string) bool {
	for _, name := range s {
		if name != "" && name == id {
			return true
		}
	}
	return false
}

// Region returns the concatenated text of every start/end marked region of
// content. Text before the first start marker is never part of a region.
func Region(content string) string {
	segments := startPattern.Split(content, -1)
	var b strings.Builder
	for _, seg := range segments[1:] {
		loc := endPattern.FindStringIndex(seg)
		if loc == nil {
			continue
		}
		b.WriteString(seg[:loc[0]])
	}
	return b.String()
}

// Parse returns the library identifiers declared in content.
func Parse(content string) Set {
	region := Region(content)
	matches := objectKeyPattern.FindAllStringSubmatch(region, -1)
	set := make(Set, 0, len(matches))
	for _, m := range matches {
		set = append(set, m[1])
	}
	return set
}

// Read parses the entry script at path. A missing file is an error; the
// result is never cached.
func Read(fsys afero.Fs, path string) (Set, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading entry script %s: %w", path, err)
	}
	return Parse(string(data)), nil
}
