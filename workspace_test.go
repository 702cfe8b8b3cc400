package protogolden

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func memRepo(files map[string]string) *Repository {
	fsys := make(fstest.MapFS, len(files))
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return &Repository{fsys: fsys, desc: "mem"}
}

func TestWorkspaceStage(t *testing.T) {
	repo := memRepo(map[string]string{
		"test.proto":        "syntax = \"proto3\";\n",
		"nested/deep.proto": "package deep;\n",
	})
	ws, err := NewWorkspace(t.TempDir(), repo, DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}

	for fixture, want := range map[string]string{
		"/test":        "syntax = \"proto3\";\n",
		"/nested/deep": "package deep;\n",
	} {
		staged, err := ws.Stage(fixture)
		if err != nil {
			t.Fatalf("Stage(%q) error = %v", fixture, err)
		}
		if staged != ws.SourcePath(fixture) {
			t.Errorf("Stage(%q) = %q, want %q", fixture, staged, ws.SourcePath(fixture))
		}
		got, err := os.ReadFile(staged)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("staged %s = %q, want %q", fixture, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(ws.Root, "nested", "deep.proto")); err != nil {
		t.Errorf("relative path not preserved: %v", err)
	}
}

func TestWorkspaceStageMissingFixture(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), memRepo(nil), DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ws.Stage("/does_not_exist")
	var fe *FixtureError
	if !errors.As(err, &fe) {
		t.Fatalf("Stage() error = %v, want *FixtureError", err)
	}
	if fe.Op != "stage" || fe.Fixture != "/does_not_exist" || fe.Path != "mem/does_not_exist.proto" {
		t.Errorf("FixtureError = %+v", fe)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error does not wrap fs.ErrNotExist: %v", err)
	}
	if _, err := os.Stat(ws.SourcePath("/does_not_exist")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("failed stage left a file behind: %v", err)
	}
}

func TestWorkspaceStageUnwritable(t *testing.T) {
	repo := memRepo(map[string]string{"sub/x.proto": "x"})
	ws, err := NewWorkspace(t.TempDir(), repo, DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	// A regular file where the parent directory should go.
	if err := os.WriteFile(filepath.Join(ws.Root, "sub"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Stage("/sub/x"); !IsFatal(err) {
		t.Errorf("Stage() error = %v, want fatal", err)
	}
}

func TestWorkspaceRemoveArtifact(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), memRepo(nil), DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.RemoveArtifact("/test"); err != nil {
		t.Fatalf("RemoveArtifact() on missing artifact = %v", err)
	}
	if err := os.WriteFile(ws.ArtifactPath("/test"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ws.RemoveArtifact("/test"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.ArtifactPath("/test")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("artifact still present: %v", err)
	}
}

func TestWorkspaceRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")
	ws, err := NewWorkspace(root, memRepo(nil), DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("workspace still present: %v", err)
	}
}
