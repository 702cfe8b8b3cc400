package protogolden

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"testing"

	"go.uber.org/multierr"
)

// Suite runs test cases through Stage, Run and Verify.
type Suite struct {
	Repo          *Repository
	Layout        Layout
	Invoker       *Invoker
	GeneratorFlag string

	// WorkDir is where per-case workspaces are created; os.TempDir when empty.
	WorkDir string
	// KeepWorkspace leaves workspaces on disk after a case finishes.
	KeepWorkspace bool
	// Parallel marks subtests started by Test as parallel.
	Parallel bool
	// Logf receives progress messages. Nil discards them.
	Logf func(format string, args ...any)
}

// NewSuite returns a suite for a validated catalog with the given front end.
func NewSuite(c *Catalog, newFrontend FrontendFactory) *Suite {
	return &Suite{
		Repo:          DirRepository(c.Fixtures),
		Layout:        c.Layout,
		Invoker:       &Invoker{NewFrontend: newFrontend},
		GeneratorFlag: c.GeneratorFlag,
	}
}

// Comparator returns the comparator the suite verifies with.
func (s *Suite) Comparator() *Comparator {
	return &Comparator{Repo: s.Repo, Layout: s.Layout}
}

// Invocation returns the front end invocation for tc in ws.
func (s *Suite) Invocation(tc TestCase, ws *Workspace) Invocation {
	return Invocation{
		GeneratorFlag: s.GeneratorFlag,
		Option:        s.Layout.Option(tc.Variant),
		SearchPath:    ws.Root,
		Target:        ws.SourcePath(tc.Fixture),
	}
}

// Run runs tc in a fresh workspace.
func (s *Suite) Run(tc TestCase) error {
	dir, err := os.MkdirTemp(s.WorkDir, "protogolden-*")
	if err != nil {
		return &FixtureError{Op: "create workspace", Fixture: tc.Fixture, Path: s.WorkDir, Err: err}
	}
	ws, err := NewWorkspace(dir, s.Repo, s.Layout)
	if err != nil {
		os.RemoveAll(dir)
		return err
	}
	if s.KeepWorkspace {
		s.logf("%s: workspace %s", tc, ws.Root)
	} else {
		defer func() {
			if err := ws.Remove(); err != nil {
				s.logf("%s: %v", tc, err)
			}
		}()
	}
	return s.RunIn(tc, ws)
}

// RunIn runs tc in ws. Callers that reuse one workspace for several cases
// must not run those cases concurrently.
func (s *Suite) RunIn(tc TestCase, ws *Workspace) error {
	if err := tc.validate(); err != nil {
		return fmt.Errorf("%s: %w", tc, err)
	}
	for _, fixture := range append([]string{tc.Fixture}, tc.Imports...) {
		staged, err := ws.Stage(fixture)
		if err != nil {
			return err
		}
		s.logf("%s: staged %s", tc, staged)
	}
	if err := ws.RemoveArtifact(tc.Fixture); err != nil {
		return err
	}

	inv := s.Invocation(tc, ws)
	s.logf("%s: running %q", tc, s.Invoker.Args(inv))
	if _, err := s.Invoker.Run(inv); err != nil {
		var ie *InvocationError
		if errors.As(err, &ie) {
			ie.Case = tc.String()
		}
		return err
	}

	if _, err := s.Comparator().Verify(ws, tc.Fixture, tc.Variant); err != nil {
		var me *MismatchError
		if errors.As(err, &me) {
			me.Case = tc.String()
		}
		return err
	}
	return nil
}

// RunAll runs every case serially and returns all failures combined.
func (s *Suite) RunAll(cases []TestCase) error {
	var errs error
	for _, tc := range cases {
		errs = multierr.Append(errs, s.Run(tc))
	}
	return errs
}

// Filter returns the cases whose name matches pattern.
func Filter(cases []TestCase, pattern string) ([]TestCase, error) {
	if pattern == "" {
		return cases, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []TestCase
	for _, tc := range cases {
		if re.MatchString(tc.String()) {
			out = append(out, tc)
		}
	}
	return out, nil
}

// Test runs each case as a subtest of t. Fixture errors abort the subtest;
// invocation and comparison failures are reported as test errors.
func (s *Suite) Test(t *testing.T, cases []TestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.String(), func(t *testing.T) {
			if s.Parallel {
				t.Parallel()
			}
			ws, err := NewWorkspace(t.TempDir(), s.Repo, s.Layout)
			if err != nil {
				t.Fatal(err)
			}
			sub := *s
			sub.Logf = t.Logf
			err = sub.RunIn(tc, ws)
			switch {
			case err == nil:
			case IsFatal(err):
				t.Fatal(err)
			default:
				t.Error(err)
			}
		})
	}
}

func (s *Suite) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
