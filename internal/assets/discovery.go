// Package assets discovers bundle entry points under the theme's source tree.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// entryMarker is the naming convention for bundle roots: any file whose
// base name contains this marker is treated as an entry point.
const entryMarker = "index"

// IsEntryName reports whether the file's base name matches the root-entry
// naming convention, regardless of extension.
func IsEntryName(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.Contains(strings.TrimSuffix(base, ext), entryMarker)
}

// HasExtension reports whether path ends in one of the given extensions.
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// FindEntryPoints recursively enumerates all files under root and returns
// those matching the entry naming convention within the recognized
// extension set. Hidden directories and node_modules are skipped. The
// error propagates when root does not exist or is unreadable; callers may
// log it and continue with no entries.
func FindEntryPoints(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", root)
	}

	var entries []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && (strings.HasPrefix(info.Name(), ".") || info.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		if IsEntryName(path) && HasExtension(path, exts) {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory: %w", err)
	}

	log.Debug().Int("count", len(entries)).Str("dir", root).Msg("Discovered entry points")

	return entries, nil
}
