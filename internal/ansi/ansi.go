// Package ansi provides the ANSI escape codes used for terminal output and a
// helper to strip them when color is disabled.
package ansi

import (
	"os"
	"regexp"
)

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Yellow = "\033[33m"
	Green  = "\033[32m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
)

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// Strip removes every SGR escape sequence from s.
func Strip(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// ColorEnabled reports whether colored output is wanted: NO_COLOR is unset
// and TERM is not "dumb".
func ColorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
