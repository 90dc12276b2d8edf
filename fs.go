package datekeeper

import (
	"io"
	"os"
)

// A File is the open handle the keeper writes through. [os.File]
// satisfies it.
type File interface {
	io.WriteCloser
	// Sync flushes buffered writes to stable storage.
	Sync() error
}

// A Filesystem provides the byte-level file and directory primitives
// the keeper builds on. The default implementation is backed by the
// [os] package; installing another one with [WithFilesystem] lets
// tests exercise rotation against in-memory files, full disks, or
// undeletable archives without touching the rotation logic itself.
//
// Remove must report an error wrapping [os.ErrNotExist] when the path
// is already gone; the keeper treats that case as a successful delete.
type Filesystem interface {
	// OpenFile opens path for writing, creating it if needed. When
	// truncate is set any existing content is discarded, otherwise
	// writes append.
	OpenFile(path string, truncate bool) (File, error)
	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)
	// ListDir returns the names of the entries in dir.
	ListDir(dir string) ([]string, error)
	// Remove deletes path.
	Remove(path string) error
	// Exists reports whether path exists.
	Exists(path string) bool
	// Size returns the current size of path in bytes.
	Size(path string) (int64, error)
}

type osFilesystem struct{}

var _ Filesystem = osFilesystem{}

func (osFilesystem) OpenFile(path string, truncate bool) (File, error) {
	flag := os.O_CREATE | os.O_WRONLY
	if truncate {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_APPEND
	}
	return os.OpenFile(path, flag, 0644)
}

func (osFilesystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (osFilesystem) ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (osFilesystem) Remove(path string) error { return os.Remove(path) }

func (osFilesystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFilesystem) Size(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}
