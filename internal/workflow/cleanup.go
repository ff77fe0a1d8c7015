package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mediasort/internal/fileutil"
	"mediasort/internal/media"
)

// CleanupResult lists what CleanupSource removed and what it could not.
type CleanupResult struct {
	Removed []string `json:"removed,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// CleanupSource deletes junk files left in dir after its media moved out and
// removes dir once it is empty. The monitor root itself and anything outside it
// are never touched. Only dir's direct entries are considered.
func CleanupSource(root, dir string) CleanupResult {
	var result CleanupResult
	if root == "" || dir == "" {
		return result
	}
	root = filepath.Clean(root)
	dir = filepath.Clean(dir)
	if dir == root || !fileutil.IsWithin(root, dir) {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, fmt.Sprintf("read %s: %v", dir, err))
		}
		return result
	}
	for _, entry := range entries {
		if entry.IsDir() || !media.IsJunk(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", path, err))
			continue
		}
		result.Removed = append(result.Removed, path)
	}

	empty, err := fileutil.IsEmptyDir(dir)
	if err != nil || !empty {
		return result
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", dir, err))
		return result
	}
	result.Removed = append(result.Removed, dir)
	return result
}
