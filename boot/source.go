package boot

import (
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// Source gives the loader access to the module list and the bundle archives.
type Source interface {
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// Open opens a text file.
	Open(path string) (io.ReadCloser, error)
	// OpenArchive opens a bundle archive for random access.
	OpenArchive(path string) (*zip.ReadCloser, error)
}

// FileSource reads from the local file system.
type FileSource struct{}

// Exists implements Source.
func (FileSource) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Open implements Source.
func (FileSource) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// OpenArchive implements Source.
func (FileSource) OpenArchive(path string) (*zip.ReadCloser, error) {
	return zip.OpenReader(path)
}
