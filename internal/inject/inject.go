// Package inject writes the generated bundles config back into the entry
// script, where r.js and the runtime loader pick it up.
package inject

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/papapumpkin/bundlegen/internal/rjs"
)

// Marker is replaced by the bundles config.
const Marker = "/* build:insert-bundles-config-here */"

// ErrMarkerNotFound indicates the entry script has no insertion marker.
var ErrMarkerNotFound = errors.New("bundles insertion marker not found")

var markerPattern = regexp.MustCompile(`(?im)` + regexp.QuoteMeta(Marker))

// HasMarker reports whether content holds an insertion marker, in any letter
// case.
func HasMarker(content string) bool {
	return markerPattern.MatchString(content)
}

// InsertBundles replaces every insertion marker in content with
//
//	bundles: {"name.bundle":["a","b"],
//	...},
//
// the compact JSON of bundles with a line break after each member list.
func InsertBundles(content string, bundles rjs.Bundles) (string, error) {
	if !HasMarker(content) {
		return "", ErrMarkerNotFound
	}
	text, err := ObjectKey("bundles", bundles)
	if err != nil {
		return "", err
	}
	return markerPattern.ReplaceAllLiteralString(content, text), nil
}

// ObjectKey renders key and value as an object literal entry, "key: <json>,",
// breaking the line after every "]," so array-valued maps stay readable.
func ObjectKey(key string, value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("encoding %s: %w", key, err)
	}
	text := key + ": " + strings.TrimSuffix(buf.String(), "\n") + ","
	return strings.ReplaceAll(text, "],", "],\n"), nil
}

// InsertBundlesFile reads the entry script src, inserts bundles and writes the
// result to dest. src and dest may be the same file.
func InsertBundlesFile(fsys afero.Fs, src, dest string, bundles rjs.Bundles) error {
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("reading entry script %s: %w", src, err)
	}
	out, err := InsertBundles(string(data), bundles)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	if err := afero.WriteFile(fsys, dest, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
