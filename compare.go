package protogolden

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Comparator checks generated artifacts against golden files.
type Comparator struct {
	Repo   *Repository
	Layout Layout
}

// Comparison holds both sides of a successful or failed comparison.
type Comparison struct {
	ArtifactPath string
	GoldenPath   string
	Want         string
	Got          string
}

// GoldenPath returns the location of the golden file for fixture and variant.
func (c *Comparator) GoldenPath(fixture, variant string) string {
	return c.Repo.Path(c.Layout.withDefaults().GoldenName(fixture, variant))
}

// Verify compares the artifact generated for fixture in ws with the golden
// file for variant. It returns a *MismatchError when the artifact is missing
// or differs, and a *FixtureError when the golden file cannot be read.
func (c *Comparator) Verify(ws *Workspace, fixture, variant string) (*Comparison, error) {
	layout := c.Layout.withDefaults()
	goldenName := layout.GoldenName(fixture, variant)
	cmpn := &Comparison{
		ArtifactPath: ws.ArtifactPath(fixture),
		GoldenPath:   c.Repo.Path(goldenName),
	}

	want, err := c.Repo.ReadFile(goldenName)
	if err != nil {
		return cmpn, &FixtureError{Op: "read golden", Fixture: fixture, Path: cmpn.GoldenPath, Err: err}
	}
	cmpn.Want = asText(want)

	got, err := os.ReadFile(cmpn.ArtifactPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cmpn, &MismatchError{
			Kind:         ArtifactMissing,
			ArtifactPath: cmpn.ArtifactPath,
			GoldenPath:   cmpn.GoldenPath,
			Err:          err,
		}
	}
	if err != nil {
		return cmpn, &FixtureError{Op: "read artifact", Fixture: fixture, Path: cmpn.ArtifactPath, Err: err}
	}
	cmpn.Got = asText(got)

	if diff := lineDiff(cmpn.Want, cmpn.Got); diff != "" {
		return cmpn, &MismatchError{
			Kind:         ContentDiffers,
			ArtifactPath: cmpn.ArtifactPath,
			GoldenPath:   cmpn.GoldenPath,
			Diff:         diff,
		}
	}
	return cmpn, nil
}

// lineDiff diffs want and got line by line, so every differing line is
// reported in full.
func lineDiff(want, got string) string {
	return cmp.Diff(strings.SplitAfter(want, "\n"), strings.SplitAfter(got, "\n"))
}

// asText applies the same text-mode read to both sides of a comparison.
func asText(b []byte) string {
	return string(bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n")))
}
