package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/bundlegen/internal/amd"
	"github.com/papapumpkin/bundlegen/internal/buildconfig"
	"github.com/papapumpkin/bundlegen/internal/config"
	"github.com/papapumpkin/bundlegen/internal/dag"
	"github.com/papapumpkin/bundlegen/internal/inject"
	"github.com/papapumpkin/bundlegen/internal/rjs"
	"github.com/papapumpkin/bundlegen/internal/ui"
)

const mainJS = `require.config({
  paths: {
    /* libs-paths:start */
    'jquery': 'vendor/jquery',
    'angular': 'vendor/angular',
    /* libs-paths:end */
  },
  /* build:insert-bundles-config-here */
  deps: ['app']
});
`

const buildTOML = `
[optimizer]
baseUrl = "scripts"

[[modules]]
name = "app"
include = ["app"]

[[modules]]
name = "libs.all"
include = ["libs.all"]
exclude_libs = false

[[modules]]
path = "shared/x"

[[modules]]
path = "shared/y"

[[modules]]
path = "profile"
`

func projectFiles() map[string]string {
	return map[string]string{
		"/w/scripts/main.js":                 mainJS,
		"/w/scripts/app.js":                  `define(['angular'], function() {});`,
		"/w/scripts/shared/x/a.ctrl.js":      `define(['jquery', 'shared/y/y.all'], function() {});`,
		"/w/scripts/shared/y/b.service.js":   `define(['angular'], function() {});`,
		"/w/scripts/profile/profile.ctrl.js": `define(['shared/x/x.all', './helper'], function() {});`,
		"/w/scripts/profile/helper.js":       `define([], function() {});`,
		"/w/bundlegen.toml":                  buildTOML,
	}
}

// testEnv returns an env over an in-memory project. Printer output goes to
// the returned buffer, machine output to e.out.
func testEnv(t *testing.T, files map[string]string) (*env, *bytes.Buffer) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var stderr bytes.Buffer
	return &env{
		fs: fsys,
		cfg: config.Config{
			EntryFile:   "/w/scripts/main.js",
			ScriptsRoot: "/w/scripts",
			SharedDir:   "/w/scripts/shared",
			BuildConfig: "/w/bundlegen.toml",
			OutputDir:   "/w/build",
			Concurrency: 2,
		},
		logger:  newLogger(&stderr, false),
		printer: ui.NewWriter(&stderr),
		out:     &bytes.Buffer{},
	}, &stderr
}

func readFile(t *testing.T, fsys afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunGenerate(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(t, projectFiles())
	res, err := runGenerate(context.Background(), e, generateOptions{
		outputDir:  "/w/build",
		injectInto: "/w/build/main.js",
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, e.fs, "/w/scripts/shared/x/x.all.js"); !strings.Contains(got, "'./a.ctrl'") {
		t.Errorf("x.all.js = %q", got)
	}
	if got := readFile(t, e.fs, "/w/scripts/libs.all.js"); got != "define([\n'jquery',\n'angular',\n], function() {});" {
		t.Errorf("libs.all.js = %q", got)
	}

	byPath := make(map[string]rjs.Module)
	for _, m := range res.Modules {
		byPath[m.Path] = m
	}
	wantX := rjs.Module{
		Name:    "shared/x/a.ctrl",
		Path:    "shared/x",
		Include: []string{"shared/x/x.all"},
		Exclude: []string{"jquery", "angular", "shared/y/y.all"},
	}
	if diff := cmp.Diff(wantX, byPath["shared/x"]); diff != "" {
		t.Errorf("shared/x module mismatch (-want +got):\n%s", diff)
	}
	if got := byPath["profile"].Exclude; !cmp.Equal(got, []string{"jquery", "angular", "shared/x/x.all"}) {
		t.Errorf("profile Exclude = %v", got)
	}

	wantBundles := map[string][]string{
		"shared-x.bundle": {"shared/x/a.ctrl", "shared/x/x.all"},
		"shared-y.bundle": {"shared/y/y.all"},
		"profile.bundle":  {"profile/profile.ctrl"},
		"app.bundle":      {"app", "app"},
	}
	for name, want := range wantBundles {
		if diff := cmp.Diff(want, res.Bundles[name]); diff != "" {
			t.Errorf("bundle %s mismatch (-want +got):\n%s", name, diff)
		}
	}

	opts := readFile(t, e.fs, "/w/build/"+buildconfig.OptimizerFile)
	if !strings.Contains(opts, `"baseUrl": "scripts"`) || !strings.Contains(opts, `"shared/x/a.ctrl"`) {
		t.Errorf("optimizer options missing content:\n%s", opts)
	}
	if _, err := e.fs.Stat("/w/build/" + buildconfig.BundlesFile); err != nil {
		t.Errorf("bundles JSON not written: %v", err)
	}

	injected := readFile(t, e.fs, "/w/build/main.js")
	if strings.Contains(injected, inject.Marker) || !strings.Contains(injected, `bundles: {"app.bundle":["app","app"],`) {
		t.Errorf("bundles not injected:\n%s", injected)
	}
	if readFile(t, e.fs, "/w/scripts/main.js") != mainJS {
		t.Error("entry script modified in place")
	}
}

func TestRunGenerate_DryRun(t *testing.T) {
	t.Parallel()

	e, stderr := testEnv(t, projectFiles())
	if _, err := runGenerate(context.Background(), e, generateOptions{dryRun: true, outputDir: "/w/build"}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"/w/build", "/w/scripts/libs.all.js", "/w/scripts/shared/x/x.all.js"} {
		if ok, _ := afero.Exists(e.fs, name); ok {
			t.Errorf("dry run wrote %s", name)
		}
	}
	if !strings.Contains(stderr.String(), "load order") {
		t.Errorf("expected load order in summary, got:\n%s", stderr.String())
	}
}

// mutualFiles makes shared/x and shared/y require each other's aggregation
// file, so each bundle excludes an identifier the other provides.
func mutualFiles() map[string]string {
	files := projectFiles()
	files["/w/scripts/shared/y/b.service.js"] = `define(['angular', 'shared/x/x.all'], function() {});`
	return files
}

func TestRunGenerate_MutuallyDependentModules(t *testing.T) {
	t.Parallel()

	e, stderr := testEnv(t, mutualFiles())
	res, err := runGenerate(context.Background(), e, generateOptions{outputDir: "/w/build"})
	if err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	for _, name := range []string{buildconfig.OptimizerFile, buildconfig.BundlesFile} {
		if ok, _ := afero.Exists(e.fs, "/w/build/"+name); !ok {
			t.Errorf("%s not written", name)
		}
	}
	if diff := cmp.Diff([]string{"shared/y/y.all"}, res.Bundles["shared-y.bundle"]); diff != "" {
		t.Errorf("shared-y bundle mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr.String(), "skipping bundle load order") {
		t.Errorf("expected a load order warning, got:\n%s", stderr.String())
	}
}

func TestRunOrder_MutuallyDependentModules(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(t, mutualFiles())
	if err := runAggregate(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if err := runOrder(context.Background(), e); !errors.Is(err, dag.ErrCycle) {
		t.Errorf("runOrder error = %v, want ErrCycle", err)
	}
}

func TestRunGenerate_MalformedScript(t *testing.T) {
	t.Parallel()

	files := projectFiles()
	files["/w/scripts/profile/broken.js"] = `define(['a' 'b'], fn);`
	e, _ := testEnv(t, files)

	_, err := runGenerate(context.Background(), e, generateOptions{outputDir: "/w/build"})
	if !errors.Is(err, amd.ErrMalformedDeclaration) {
		t.Fatalf("error = %v, want ErrMalformedDeclaration", err)
	}
	if ok, _ := afero.Exists(e.fs, "/w/build/"+buildconfig.OptimizerFile); ok {
		t.Error("failed generation must not write outputs")
	}
}

func TestRunGenerate_MissingBuildConfig(t *testing.T) {
	t.Parallel()

	files := projectFiles()
	delete(files, "/w/bundlegen.toml")
	e, _ := testEnv(t, files)

	_, err := runGenerate(context.Background(), e, generateOptions{outputDir: "/w/build"})
	if !errors.Is(err, buildconfig.ErrNoBuildConfig) {
		t.Errorf("error = %v, want ErrNoBuildConfig", err)
	}
}

func TestRunOrder(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(t, projectFiles())
	if err := runAggregate(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	if err := runOrder(context.Background(), e); err != nil {
		t.Fatal(err)
	}

	got := strings.Fields(e.out.(*bytes.Buffer).String())
	want := []string{"libs.all.bundle", "app.bundle", "shared-y.bundle", "shared-x.bundle", "profile.bundle"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunInject_InPlace(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(t, projectFiles())
	if err := runInject(context.Background(), e, e.cfg.EntryFile); err != nil {
		t.Fatal(err)
	}
	got := readFile(t, e.fs, e.cfg.EntryFile)
	if !strings.Contains(got, "bundles: {") || !strings.Contains(got, "deps: ['app']") {
		t.Errorf("unexpected entry script:\n%s", got)
	}

	// The marker is consumed, so a second run has nowhere to insert.
	if err := runInject(context.Background(), e, e.cfg.EntryFile); !errors.Is(err, inject.ErrMarkerNotFound) {
		t.Errorf("second inject error = %v, want ErrMarkerNotFound", err)
	}
}

func TestRunDeps(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/a.js", []byte(`define(["./a", "../b", "c", "d/e"], fn);`), 0o644)
	afero.WriteFile(fsys, "/b.js", []byte(`define(['x'], fn);`), 0o644)
	afero.WriteFile(fsys, "/bad.js", []byte(`define(['x',], fn);`), 0o644)

	tests := []struct {
		name  string
		files []string
		all   bool
		want  string
	}{
		{"external only", []string{"/a.js"}, false, "c\nd/e\n"},
		{"all", []string{"/a.js"}, true, "./a\n../b\nc\nd/e\n"},
		{"several files", []string{"/a.js", "/b.js"}, false, "/a.js: c\n/a.js: d/e\n/b.js: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if err := runDeps(fsys, &out, tt.files, tt.all); err != nil {
				t.Fatal(err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}

	t.Run("malformed names the file", func(t *testing.T) {
		t.Parallel()
		err := runDeps(fsys, &bytes.Buffer{}, []string{"/bad.js"}, false)
		var pe *amd.ParseError
		if !errors.As(err, &pe) || pe.File != "/bad.js" {
			t.Errorf("error = %v, want ParseError for /bad.js", err)
		}
	})
}

func TestBundleNameCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	if err := bundleNameCmd.RunE(c, []string{"app", "a", "shared/widgets/widgets.all", "x/y"}); err != nil {
		t.Fatal(err)
	}
	want := "app.bundle\na.bundle\nshared-widgets.bundle\nx.bundle\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid project", func(t *testing.T) {
		t.Parallel()
		files := projectFiles()
		files["/w/scripts/shared/.keep"] = ""
		e, _ := testEnv(t, files)
		if err := runValidate(e); err != nil {
			t.Errorf("runValidate() = %v\n%s", err, e.out)
		}
		if !strings.Contains(e.out.(*bytes.Buffer).String(), "2 libraries") {
			t.Errorf("expected library count, got:\n%s", e.out)
		}
	})

	t.Run("upper case insertion marker", func(t *testing.T) {
		t.Parallel()
		files := projectFiles()
		files["/w/scripts/main.js"] = strings.Replace(mainJS, inject.Marker, strings.ToUpper(inject.Marker), 1)
		files["/w/scripts/shared/.keep"] = ""
		e, _ := testEnv(t, files)
		if err := runValidate(e); err != nil {
			t.Errorf("runValidate() = %v\n%s", err, e.out)
		}
		if out := e.out.(*bytes.Buffer).String(); strings.Contains(out, "! no") {
			t.Errorf("marker should be found regardless of case:\n%s", out)
		}
	})

	t.Run("broken project", func(t *testing.T) {
		t.Parallel()
		e, _ := testEnv(t, map[string]string{"/w/scripts/main.js": "require.config({});"})
		err := runValidate(e)
		if err == nil {
			t.Fatal("expected validation error")
		}
		out := e.out.(*bytes.Buffer).String()
		for _, substr := range []string{"✗ library paths region", "✗ shared folder", "✗ build config", "! no"} {
			if !strings.Contains(out, substr) {
				t.Errorf("expected %q in output:\n%s", substr, out)
			}
		}
	})
}

func TestRunInit(t *testing.T) {
	t.Parallel()

	files := projectFiles()
	delete(files, "/w/bundlegen.toml")
	e, _ := testEnv(t, files)

	if err := runInit(e, false); err != nil {
		t.Fatal(err)
	}
	cfg, err := buildconfig.Load(e.fs, e.cfg.BuildConfig)
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, m := range cfg.Modules {
		if m.Path != "" {
			paths = append(paths, m.Path)
		}
	}
	if diff := cmp.Diff([]string{"shared/x", "shared/y"}, paths); diff != "" {
		t.Errorf("shared module paths mismatch (-want +got):\n%s", diff)
	}
	if cfg.Optimizer["mainConfigFile"] != "/w/scripts/main.js" {
		t.Errorf("mainConfigFile = %v", cfg.Optimizer["mainConfigFile"])
	}

	if err := runInit(e, false); !errors.Is(err, errConfigExists) {
		t.Errorf("second init error = %v, want errConfigExists", err)
	}
	if err := runInit(e, true); err != nil {
		t.Errorf("forced init: %v", err)
	}
}

func TestRelativeTo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		root, dir string
		want      string
		wantErr   bool
	}{
		{"scripts", "scripts/shared", "shared/", false},
		{"scripts", "scripts", "", false},
		{"scripts", "lib/shared", "", true},
	}
	for _, tt := range tests {
		got, err := relativeTo(tt.root, tt.dir)
		if (err != nil) != tt.wantErr {
			t.Errorf("relativeTo(%q, %q) error = %v, wantErr %v", tt.root, tt.dir, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("relativeTo(%q, %q) = %q, want %q", tt.root, tt.dir, got, tt.want)
		}
	}
}
