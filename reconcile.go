package datekeeper

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/trviph/collection"
)

const gzipExtension = ".gz"

// An indexEntry pairs a rotation's time key with the file holding it.
// Keys are fixed width and zero padded, so ordering entries by key
// orders the files chronologically.
type indexEntry struct {
	key  string
	path string
}

// scanArchives lists the directory holding base and returns every file
// the calculator recognises as one of this keeper's rotations, oldest
// first. Compressed archives are matched alongside plain ones.
func scanArchives(fsys Filesystem, calc Calculator, base string) ([]indexEntry, error) {
	dir := filepath.Dir(base)
	names, err := fsys.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s, caused by %w", dir, err)
	}

	minHeap, err := collection.NewHeap(func(current, other indexEntry) bool {
		return current.key < other.key
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create heap, caused by %w", err)
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		key := calc.ExtractTimeKey(base, strings.TrimSuffix(path, gzipExtension))
		if key == "" {
			continue
		}
		minHeap.Push(indexEntry{key: key, path: path})
	}

	var entries []indexEntry
	for !minHeap.IsEmpty() {
		entry, err := minHeap.Pop()
		if err != nil {
			return nil, fmt.Errorf("failed to order archives, caused by %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// reconcileArchives seeds the retention queue from the files already
// on disk. The newest maxFiles entries, the freshly opened active file
// among them, are the ones the keeper keeps track of; when delete on
// init is configured the older remainder is removed best effort, so a
// file that resists deletion now is simply seen again by a later
// construction.
func (k *Keeper) reconcileArchives(entries []indexEntry) {
	firstKept := 0
	if len(entries) > k.maxFiles {
		firstKept = len(entries) - k.maxFiles
	}
	for _, entry := range entries[firstKept:] {
		if entry.path == k.filename {
			continue
		}
		// The directory listing and this check are not atomic; a file
		// removed in between is skipped rather than tracked.
		if k.fsys.Exists(entry.path) {
			k.retained.push(entry.path)
		}
	}
	if k.deleteOnInit {
		for _, entry := range entries[:firstKept] {
			_ = k.fsys.Remove(entry.path)
		}
	}
}
