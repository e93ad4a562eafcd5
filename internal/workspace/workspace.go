// Package workspace locates run directories and their log files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RunDirs returns the immediate subdirectories of workspace whose names
// start with prefix, in directory listing order. It does not recurse.
func RunDirs(workspace, prefix string) ([]string, error) {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		return nil, fmt.Errorf("reading workspace %s: %w", workspace, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(workspace, entry.Name())
		// Follow symlinks so linked run directories are still found.
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}

// LogFiles returns the regular files in dir whose names start with prefix.
func LogFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// Name returns the run directory's identifying base name.
func Name(runDir string) string {
	return filepath.Base(filepath.Clean(runDir))
}
