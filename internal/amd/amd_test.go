package amd

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestExtractDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "relative paths filtered",
			src:  `define(["./a", "../b", "c", "d/e"], function() {});`,
			want: []string{"c", "d/e"},
		},
		{
			name: "single quotes",
			src:  "'use strict';\ndefine([\n  'angular',\n  './list.ctrl'\n], function(angular) {});",
			want: []string{"angular"},
		},
		{
			name: "duplicates kept",
			src:  `define(["x", "x", "./y"], function() {});`,
			want: []string{"x", "x"},
		},
		{
			name: "empty strings dropped",
			src:  `define(["", "lodash"], function() {});`,
			want: []string{"lodash"},
		},
		{
			name: "no declaration",
			src:  "var x = 1;\n",
			want: []string{},
		},
		{
			name: "empty array",
			src:  `define([], function() {});`,
			want: []string{},
		},
		{
			name: "commented out entries",
			src: `define([
  'a', // first
  /* 'b', */
  'c'
], function() {});`,
			want: []string{"a", "c"},
		},
		{
			name: "commented out declaration before the real one",
			src:  "// define(['old'], fn);\n/* define(['older'], fn); */\ndefine(['new'], fn);",
			want: []string{"new"},
		},
		{
			name: "comment markers inside strings survive",
			src:  `define(["text!http://cdn/x.html", "a/*b"], function() {});`,
			want: []string{"text!http://cdn/x.html", "a/*b"},
		},
		{
			name: "whitespace and case",
			src:  "DEFINE ( [ 'q' ] , function() {});",
			want: []string{"q"},
		},
		{
			name: "only first declaration",
			src:  "define(['first'], fn);\ndefine(['second'], fn);",
			want: []string{"first"},
		},
		{
			name: "declaration inside a string literal",
			src:  "var s = \"define(['fake'])\";\ndefine(['real'], fn);",
			want: []string{"real"},
		},
		{
			name: "declaration inside a template literal",
			src:  "var t = `\ndefine(['fake'])`;\ndefine(['real'], fn);",
			want: []string{"real"},
		},
		{
			name: "escaped quote",
			src:  `define(['it\'s'], fn);`,
			want: []string{"it's"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractDependencies(tt.src)
			if err != nil {
				t.Fatalf("ExtractDependencies: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractDependencies_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"trailing comma", `define(["a", "b",], fn);`},
		{"unterminated array", `define(["a", "b"`},
		{"unterminated string", `define(["a`},
		{"identifier element", `define([angular], fn);`},
		{"missing comma", `define(["a" "b"], fn);`},
		{"nested array", `define([["a"]], fn);`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ExtractDependencies(tt.src)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedDeclaration) {
				t.Errorf("error %v does not wrap ErrMalformedDeclaration", err)
			}
		})
	}
}

func TestParseDeclaration_KeepsRelative(t *testing.T) {
	t.Parallel()

	deps, found, err := ParseDeclaration(`define(['./a', 'b'], fn);`)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected declaration to be found")
	}
	if diff := cmp.Diff([]string{"./a", "b"}, deps); diff != "" {
		t.Errorf("deps mismatch (-want +got):\n%s", diff)
	}

	_, found, err = ParseDeclaration("module.exports = {};")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected no declaration")
	}
}

func TestStripComments_PreservesOffsets(t *testing.T) {
	t.Parallel()

	src := "a /* x\ny */ b // c\nd"
	got := StripComments(src)
	if len(got) != len(src) {
		t.Fatalf("length changed: %d -> %d", len(src), len(got))
	}
	want := "a     \n     b     \nd"
	if got != want {
		t.Errorf("StripComments = %q, want %q", got, want)
	}
}

func TestBlankStrings(t *testing.T) {
	t.Parallel()

	src := "a('x\\'y', \"z\")\n`p\nq`"
	got := blankStrings(src)
	if len(got) != len(src) {
		t.Fatalf("length changed: %d -> %d", len(src), len(got))
	}
	want := "a('    ', \" \")\n` \n `"
	if got != want {
		t.Errorf("blankStrings = %q, want %q", got, want)
	}
}

func TestReadDependencies(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/s/ok.js", []byte(`define(['lib', './x'], fn);`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/s/bad.js", []byte(`define(['lib',], fn);`), 0o644); err != nil {
		t.Fatal(err)
	}

	deps, err := ReadDependencies(fsys, "/s/ok.js")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"lib"}, deps); diff != "" {
		t.Errorf("deps mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadDependencies(fsys, "/s/bad.js")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.File != "/s/bad.js" {
		t.Errorf("ParseError.File = %q, want /s/bad.js", pe.File)
	}

	if _, err := ReadDependencies(fsys, "/s/missing.js"); err == nil {
		t.Error("expected error for missing file")
	}
}
