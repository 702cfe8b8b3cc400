package protogolden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Workspace is a writable directory into which fixtures are staged and into
// which the generator writes its output.
type Workspace struct {
	Root string

	repo   *Repository
	layout Layout
}

// NewWorkspace creates root if needed and returns a workspace staging from repo.
func NewWorkspace(root string, repo *Repository, layout Layout) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, &FixtureError{Op: "create workspace", Path: abs, Err: err}
	}
	return &Workspace{Root: abs, repo: repo, layout: layout.withDefaults()}, nil
}

// Stage copies the fixture source into the workspace, preserving its
// relative path, and returns the staged path.
func (w *Workspace) Stage(fixture string) (string, error) {
	name := w.layout.SourceName(fixture)
	data, err := w.repo.ReadFile(name)
	if err != nil {
		return "", &FixtureError{Op: "stage", Fixture: fixture, Path: w.repo.Path(name), Err: err}
	}
	dst := w.path(name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", &FixtureError{Op: "stage", Fixture: fixture, Path: dst, Err: err}
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", &FixtureError{Op: "stage", Fixture: fixture, Path: dst, Err: err}
	}
	return dst, nil
}

// SourcePath returns where Stage puts the fixture source.
func (w *Workspace) SourcePath(fixture string) string {
	return w.path(w.layout.SourceName(fixture))
}

// ArtifactPath returns where the generator is expected to write its output.
func (w *Workspace) ArtifactPath(fixture string) string {
	return w.path(w.layout.ArtifactName(fixture))
}

// RemoveArtifact deletes a previously generated artifact so that it cannot
// satisfy the next comparison.
func (w *Workspace) RemoveArtifact(fixture string) error {
	p := w.ArtifactPath(fixture)
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FixtureError{Op: "remove stale artifact", Fixture: fixture, Path: p, Err: err}
	}
	return nil
}

// Remove deletes the workspace directory and everything in it.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}

func (w *Workspace) path(name string) string {
	return filepath.Join(w.Root, filepath.FromSlash(name))
}
