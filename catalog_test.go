package protogolden

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadCatalog(t *testing.T) {
	const src = `
frontend: builtin
generator_flag: js_out
fixtures: testdata/js
layout:
  option_prefix: import_style=
cases:
  - name: Strict
    fixture: /test
    imports: [/test_import]
    variant: commonjs_strict
  - fixture: /other
    variant: commonjs
`
	c, err := LoadCatalog(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := &Catalog{
		Frontend:      "builtin",
		GeneratorFlag: "js_out",
		Fixtures:      "testdata/js",
		Layout:        Layout{SourceExt: ".proto", ArtifactSuffix: "_pb", ArtifactExt: ".js", OptionPrefix: "import_style="},
		Cases: []TestCase{
			{Name: "Strict", Fixture: "/test", Imports: []string{"/test_import"}, Variant: "commonjs_strict"},
			{Name: "other_commonjs", Fixture: "/other", Variant: "commonjs"},
		},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("LoadCatalog() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	tests := []struct {
		name, src, wantErr string
	}{
		{"unknown key", "generator_flag: js_out\nfixtures: x\nbogus: 1\n", "field bogus not found"},
		{"no flag", "fixtures: x\n", "generator_flag is required"},
		{"no fixtures", "generator_flag: js_out\n", "fixtures is required"},
		{"no variant", "generator_flag: js_out\nfixtures: x\ncases:\n  - fixture: /a\n", "variant is required"},
		{"no fixture", "generator_flag: js_out\nfixtures: x\ncases:\n  - variant: v\n", "fixture is required"},
		{"bad variant", "generator_flag: js_out\nfixtures: x\ncases:\n  - fixture: /a\n    variant: a/b\n", "path separators"},
		{"duplicate", "generator_flag: js_out\nfixtures: x\ncases:\n  - fixture: /a\n    variant: v\n  - fixture: a\n    variant: v\n", `duplicate case name "a_v"`},
		{"empty import", "generator_flag: js_out\nfixtures: x\ncases:\n  - fixture: /a\n    variant: v\n    imports: [/]\n", "empty import fixture"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadCatalog() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCatalogFileResolvesFixtures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("generator_flag: js_out\nfixtures: goldens\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "goldens"); c.Fixtures != want {
		t.Errorf("Fixtures = %q, want %q", c.Fixtures, want)
	}
}

func TestFilter(t *testing.T) {
	cases := []TestCase{
		{Name: "Proto3GeneratorCommonjsStrictTest"},
		{Name: "Proto3GeneratorCommonjsTest"},
		{Fixture: "/nested/simple", Variant: "es6"},
	}
	got, err := Filter(cases, "Strict|es6$")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tc := range got {
		names = append(names, tc.String())
	}
	if diff := cmp.Diff([]string{"Proto3GeneratorCommonjsStrictTest", "nested_simple_es6"}, names); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if _, err := Filter(cases, "("); err == nil {
		t.Error("Filter() accepted an invalid pattern")
	}
}
