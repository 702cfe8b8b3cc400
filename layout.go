package protogolden

import (
	"path"
	"strings"
)

// Layout is the file naming convention shared by fixtures, artifacts and
// golden files.
type Layout struct {
	SourceExt      string `yaml:"source_ext"`      // extension of fixture sources, ".proto"
	ArtifactSuffix string `yaml:"artifact_suffix"` // appended to the fixture name, "_pb"
	ArtifactExt    string `yaml:"artifact_ext"`    // generator-specific extension, ".js"
	OptionPrefix   string `yaml:"option_prefix"`   // prepended to the variant to form the generator option
}

// DefaultLayout is the layout of the JavaScript generator goldens.
var DefaultLayout = Layout{
	SourceExt:      ".proto",
	ArtifactSuffix: "_pb",
	ArtifactExt:    ".js",
	OptionPrefix:   "import_style=",
}

// withDefaults fills unset fields from DefaultLayout.
func (l Layout) withDefaults() Layout {
	if l.SourceExt == "" {
		l.SourceExt = DefaultLayout.SourceExt
	}
	if l.ArtifactSuffix == "" {
		l.ArtifactSuffix = DefaultLayout.ArtifactSuffix
	}
	if l.ArtifactExt == "" {
		l.ArtifactExt = DefaultLayout.ArtifactExt
	}
	return l
}

// SourceName returns the slash-separated, repository relative name of a
// fixture source: "/test" -> "test.proto".
func (l Layout) SourceName(fixture string) string {
	return cleanFixture(fixture) + l.SourceExt
}

// ArtifactName returns the name of the generated artifact: "test_pb.js".
func (l Layout) ArtifactName(fixture string) string {
	return cleanFixture(fixture) + l.ArtifactSuffix + l.ArtifactExt
}

// GoldenName returns the name of the golden file for fixture and variant:
// "test_pb_commonjs.js". It depends on nothing but its arguments.
func (l Layout) GoldenName(fixture, variant string) string {
	return cleanFixture(fixture) + l.ArtifactSuffix + "_" + variant + l.ArtifactExt
}

// Option returns the generator option string for variant.
func (l Layout) Option(variant string) string {
	return l.OptionPrefix + variant
}

// cleanFixture makes a fixture name repository relative. Names are written
// with a leading slash in catalogs; ".." never escapes the repository root.
func cleanFixture(fixture string) string {
	return strings.TrimPrefix(path.Clean("/"+fixture), "/")
}
