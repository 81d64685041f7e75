package fs

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is the workspace file system. Relative paths handed to Path resolve
// against RootDir; absolute ones are kept.
type FS interface {
	afero.Fs
	RootDir() string
	Path(elem ...string) string
}

var _ FS = (*rootDirFS)(nil)

func New(entry string) FS {
	return &rootDirFS{entry: entry, Fs: afero.NewOsFs()}
}

// NewMem returns an in-memory workspace rooted at entry.
func NewMem(entry string) FS {
	return &rootDirFS{entry: entry, Fs: afero.NewMemMapFs()}
}

type rootDirFS struct {
	afero.Fs
	entry string
}

func (r rootDirFS) RootDir() string {
	return r.entry
}

func (r rootDirFS) Path(elem ...string) string {
	pth := filepath.Join(elem...)
	if filepath.IsAbs(pth) || r.entry == "" {
		return pth
	}

	return filepath.Join(r.entry, pth)
}
