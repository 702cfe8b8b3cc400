package protogolden

import (
	"errors"
	"fmt"
	"strings"
)

// FixtureError is returned when a fixture or golden file cannot be read, or
// the workspace cannot be written. It aborts the test case.
type FixtureError struct {
	Op      string // "stage", "read golden", ...
	Fixture string
	Path    string
	Err     error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Fixture, e.Path, e.Err)
}

func (e *FixtureError) Unwrap() error {
	return e.Err
}

// InvocationError is returned when the front end exits with a non-zero status.
type InvocationError struct {
	Case   string
	Args   []string
	Status int
	Output string // front end diagnostics
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	if e.Case != "" {
		fmt.Fprintf(&b, "%s: ", e.Case)
	}
	fmt.Fprintf(&b, "front end exited with status %d: %s", e.Status, strings.Join(e.Args, " "))
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, "\n%s", out)
	}
	return b.String()
}

// MismatchKind says why a generated artifact did not match its golden file.
type MismatchKind int

const (
	// ArtifactMissing means the front end reported success but wrote nothing.
	ArtifactMissing MismatchKind = iota + 1
	// ContentDiffers means the artifact exists and differs from the golden.
	ContentDiffers
)

func (k MismatchKind) String() string {
	switch k {
	case ArtifactMissing:
		return "artifact missing"
	case ContentDiffers:
		return "content differs"
	}
	return fmt.Sprintf("MismatchKind(%d)", int(k))
}

// MismatchError reports a failed comparison.
type MismatchError struct {
	Case         string
	Kind         MismatchKind
	ArtifactPath string
	GoldenPath   string
	Diff         string // (-want +got), only for ContentDiffers
	Err          error  // underlying read error, only for ArtifactMissing
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	if e.Case != "" {
		fmt.Fprintf(&b, "%s: ", e.Case)
	}
	switch e.Kind {
	case ArtifactMissing:
		fmt.Fprintf(&b, "generated artifact %s does not exist (golden %s)", e.ArtifactPath, e.GoldenPath)
	default:
		fmt.Fprintf(&b, "generated artifact %s differs from golden %s (-want +got):\n%s", e.ArtifactPath, e.GoldenPath, e.Diff)
	}
	return b.String()
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is an infrastructure failure that should abort
// a test case rather than be reported as an assertion failure.
func IsFatal(err error) bool {
	var fe *FixtureError
	return errors.As(err, &fe)
}
