package protogolden

import (
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/tools/txtar"
)

// Repository is a read-only collection of fixture sources and golden files.
type Repository struct {
	fsys fs.FS
	desc string
}

// DirRepository returns a repository backed by the directory dir.
func DirRepository(dir string) *Repository {
	return &Repository{fsys: os.DirFS(dir), desc: dir}
}

// ArchiveRepository returns a repository backed by the files of a txtar
// archive.
func ArchiveRepository(name string, a *txtar.Archive) (*Repository, error) {
	fsys, err := txtar.FS(a)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", name, err)
	}
	return &Repository{fsys: fsys, desc: name}, nil
}

// LoadArchiveRepository parses the txtar file at path into a repository.
func LoadArchiveRepository(path string) (*Repository, error) {
	a, err := txtar.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return ArchiveRepository(path, a)
}

// ReadFile reads the repository relative file name.
func (r *Repository) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(r.fsys, cleanFixture(name))
}

// Path returns a human readable location for name, used in messages.
func (r *Repository) Path(name string) string {
	return r.desc + "/" + cleanFixture(name)
}

func (r *Repository) String() string {
	return r.desc
}
