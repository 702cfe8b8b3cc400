package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmc/protogolden"
)

const catalogPath = "../../testdata/catalog.yaml"

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCatalog(t *testing.T) {
	stdout, stderr, err := execute(t, "run", "-c", catalogPath, "--workdir", t.TempDir())
	if err != nil {
		t.Fatalf("run: %v\nstdout:\n%s\nstderr:\n%s", err, stdout, stderr)
	}
	for _, want := range []string{
		"PASS  Proto3GeneratorCommonjsStrictTest",
		"PASS  Proto3GeneratorCommonjsTest",
		"PASS  NestedFixtureCommonjsStrict",
		"3 passed, 0 failed",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunFilter(t *testing.T) {
	stdout, _, err := execute(t, "run", "-c", catalogPath, "--run", "^Proto3GeneratorCommonjsTest$", "--workdir", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "1 passed, 0 failed") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	fixtures, err := filepath.Abs("../../testdata/js")
	if err != nil {
		t.Fatal(err)
	}
	catalog := `frontend: builtin
generator_flag: js_out
fixtures: ` + fixtures + `
layout:
  option_prefix: import_style=
cases:
  - name: MissingFixture
    fixture: /does_not_exist
    variant: commonjs
  - name: MissingImport
    fixture: /test
    variant: commonjs
  - name: Passing
    fixture: /test
    imports: [/test_import]
    variant: commonjs
`
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := execute(t, "run", "-c", path, "--workdir", dir)
	if err == nil || err.Error() != "2 of 3 cases failed" {
		t.Errorf("run error = %v, want 2 of 3 cases failed", err)
	}
	for _, want := range []string{"ERROR MissingFixture", "FAIL  MissingImport", "PASS  Passing", "1 passed, 2 failed"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "front end exited with status 1") {
		t.Errorf("stderr missing invocation failure:\n%s", stderr)
	}
}

func TestList(t *testing.T) {
	stdout, _, err := execute(t, "list", "-c", catalogPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "test_pb_commonjs_strict.js") || !strings.Contains(stdout, "NestedFixtureCommonjsStrict") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestFrontendFactory(t *testing.T) {
	f, err := frontendFactory("builtin")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f("js_out", nil).(*protogolden.CommandLine); !ok {
		t.Error("builtin front end is not in-process")
	}

	f, err = frontendFactory("protoc --plugin=protoc-gen-js=bin/gen")
	if err != nil {
		t.Fatal(err)
	}
	ef, ok := f("js_out", nil).(*protogolden.ExecFrontend)
	if !ok || len(ef.Command) != 2 {
		t.Errorf("exec front end = %#v", ef)
	}

	if _, err := frontendFactory(`protoc "unterminated`); err == nil {
		t.Error("frontendFactory accepted an unterminated quote")
	}
}
