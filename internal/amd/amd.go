// Package amd extracts dependency declarations from AMD-style script sources,
// i.e. files of the form define([ "dep1", "dep2" ], factory).
//
// Extraction is shallow. Comments are blanked out and the first define( call
// outside a string literal whose first argument is an array literal is parsed
// as a list of quoted strings. Everything else in the file is ignored.
package amd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// ErrMalformedDeclaration indicates the dependency array of a define() call
// could not be parsed.
var ErrMalformedDeclaration = errors.New("malformed dependency declaration")

// ParseError records where a dependency array failed to parse.
type ParseError struct {
	File   string // empty when parsing in-memory source
	Offset int    // byte offset into the source
	Reason string
}

// Error names the file when known, then the offset and reason.
func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s at offset %d: %s", ErrMalformedDeclaration, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: %s at offset %d: %s", e.File, ErrMalformedDeclaration, e.Offset, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedDeclaration).
func (e *ParseError) Unwrap() error {
	return ErrMalformedDeclaration
}

// declarePattern matches the opening of a define call with an array literal
// as its first argument, up to and including the '['.
var declarePattern = regexp.MustCompile(`(?i)\bdefine\s*\(\s*\[`)

// ParseDeclaration returns every identifier listed in the first dependency
// declaration of src, in source order. found is false when src declares no
// dependency array.
func ParseDeclaration(src string) (deps []string, found bool, err error) {
	code := StripComments(src)
	loc := declarePattern.FindStringIndex(blankStrings(code))
	if loc == nil {
		return nil, false, nil
	}
	deps, err = parseStringArray(code, loc[1]-1)
	if err != nil {
		return nil, true, err
	}
	return deps, true, nil
}

// ExtractDependencies returns the external dependencies declared by src:
// identifiers of the first define() array that are neither empty nor relative
// ("./", "../"). Order is preserved and duplicates are kept.
func ExtractDependencies(src string) ([]string, error) {
	deps, _, err := ParseDeclaration(src)
	if err != nil {
		return nil, err
	}
	return External(deps), nil
}

// External filters deps down to non-empty, non-relative identifiers.
func External(deps []string) []string {
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		if d == "" || IsRelative(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// IsRelative reports whether id refers to a file of the same module.
func IsRelative(id string) bool {
	return strings.HasPrefix(id, "./") || strings.HasPrefix(id, "../")
}

// ReadDependencies reads the script at path from fsys and returns its external
// dependencies. Parse errors carry the file path.
func ReadDependencies(fsys afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	deps, err := ExtractDependencies(string(data))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return deps, nil
}
