// Package deps tracks which entry point owns each consumed input file.
package deps

import (
	"path/filepath"
	"sync"
)

// Index is a process-lifetime reverse map from input file path to the
// entry point whose build last consumed it. Entries are upserted after
// every successful build and never evicted: stale mappings for files no
// longer consumed are harmless because they are only looked up for paths
// that change again.
//
// A single Index instance is created at startup and passed by reference
// into the build executor (writer) and the change router (reader).
type Index struct {
	mu      sync.RWMutex
	owners  map[string]string
	isEntry func(path string) bool
}

// NewIndex creates an empty index. isEntry reports whether a path itself
// matches the root-entry naming convention and therefore resolves to
// itself without a recorded owner.
func NewIndex(isEntry func(path string) bool) *Index {
	return &Index{
		owners:  make(map[string]string),
		isEntry: isEntry,
	}
}

// Record registers inputPath as consumed by entryPath, overwriting any
// prior owner. Input paths arrive relative to the working directory, while
// lookups may use absolute paths, so keys are stored in absolute form.
func (i *Index) Record(inputPath, entryPath string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.owners[canonical(inputPath)] = filepath.Clean(entryPath)
}

// Resolve returns the entry point that must be rebuilt when changedPath
// changes. A path matching the entry convention is its own entry point.
// ok is false when the path was never recorded by any build.
func (i *Index) Resolve(changedPath string) (string, bool) {
	changedPath = filepath.Clean(changedPath)

	if i.isEntry != nil && i.isEntry(changedPath) {
		return changedPath, true
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	entry, ok := i.owners[canonical(changedPath)]
	return entry, ok
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Len returns the number of recorded input files.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.owners)
}
