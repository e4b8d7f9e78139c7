// Package registry discovers log files on disk by walking a working tree for files with
// the conventional extension.
package registry

import (
	"os"
	"path/filepath"
	"sort"
)

// Extension is the conventional suffix for a log file produced by this module.
const Extension = ".glog"

// FindLogFiles walks the directory tree rooted at root and returns every file with the
// Extension suffix, sorted for deterministic output.
func FindLogFiles(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == Extension {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// FindNearest searches startDir and each of its ancestors, in order, for a single log file,
// returning the first one found. Returns ("", false) if none is found before reaching the
// filesystem root.
func FindNearest(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}

	for {
		entries, err := os.ReadDir(dir)
		if err == nil {
			var names []string
			for _, e := range entries {
				if !e.IsDir() && filepath.Ext(e.Name()) == Extension {
					names = append(names, e.Name())
				}
			}
			if len(names) > 0 {
				sort.Strings(names)
				return filepath.Join(dir, names[0]), true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
