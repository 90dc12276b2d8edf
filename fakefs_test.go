package datekeeper

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fakeFS is an in-memory Filesystem so rotation tests can simulate
// pre-seeded directories, undeletable archives, and failing opens
// without touching disk.
type fakeFS struct {
	mu        sync.Mutex
	files     map[string]*bytes.Buffer
	removeErr map[string]error
	openErr   map[string]error
	opened    []string
}

var _ Filesystem = (*fakeFS)(nil)

func newFakeFS() *fakeFS {
	return &fakeFS{
		files:     make(map[string]*bytes.Buffer),
		removeErr: make(map[string]error),
		openErr:   make(map[string]error),
	}
}

func (f *fakeFS) seed(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = bytes.NewBufferString(content)
}

func (f *fakeFS) failRemove(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeErr[path] = err
}

func (f *fakeFS) failOpen(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr[path] = err
}

func (f *fakeFS) content(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf, ok := f.files[path]
	if !ok {
		return ""
	}
	return buf.String()
}

// paths returns every file in dir, sorted.
func (f *fakeFS) paths(dir string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for path := range f.files {
		if filepath.Dir(path) == dir {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

func (f *fakeFS) OpenFile(path string, truncate bool) (File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openErr[path]; err != nil {
		return nil, err
	}
	if _, ok := f.files[path]; !ok || truncate {
		f.files[path] = new(bytes.Buffer)
	}
	f.opened = append(f.opened, path)
	return &fakeFile{fs: f, path: path}, nil
}

func (f *fakeFS) Open(path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func (f *fakeFS) ListDir(dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for path := range f.files {
		if filepath.Dir(path) == dir {
			names = append(names, filepath.Base(path))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeFS) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.removeErr[path]; err != nil {
		return err
	}
	if _, ok := f.files[path]; !ok {
		return fmt.Errorf("remove %s: %w", path, os.ErrNotExist)
	}
	delete(f.files, path)
	return nil
}

func (f *fakeFS) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

func (f *fakeFS) Size(path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf, ok := f.files[path]
	if !ok {
		return 0, fmt.Errorf("stat %s: %w", path, os.ErrNotExist)
	}
	return int64(buf.Len()), nil
}

type fakeFile struct {
	fs     *fakeFS
	path   string
	closed bool
}

func (f *fakeFile) Write(p []byte) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return 0, fmt.Errorf("write %s: file already closed", f.path)
	}
	buf, ok := f.fs.files[f.path]
	if !ok {
		return 0, fmt.Errorf("write %s: %w", f.path, os.ErrNotExist)
	}
	return buf.Write(p)
}

func (f *fakeFile) Sync() error { return nil }

func (f *fakeFile) Close() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return fmt.Errorf("close %s: file already closed", f.path)
	}
	f.closed = true
	return nil
}
