package fileutil

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// WalkFunc receives every entry found by Walk. Directory entries are reported
// before their contents.
type WalkFunc func(path string, entry fs.DirEntry)

// Walk visits the tree below root using an explicit stack. root has depth 0;
// subdirectories deeper than maxDepth are not entered, and a negative maxDepth
// means unbounded. Directories under any of excluded are skipped entirely, as
// are directories that cannot be read. The only error returned is ctx's,
// checked between directories.
func Walk(ctx context.Context, root string, maxDepth int, excluded []string, fn WalkFunc) error {
	type frame struct {
		dir   string
		depth int
	}
	stack := []frame{{dir: filepath.Clean(root)}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(top.dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(top.dir, entry.Name())
			if entry.IsDir() {
				if IsUnderAny(path, excluded) {
					continue
				}
				fn(path, entry)
				if maxDepth < 0 || top.depth+1 <= maxDepth {
					stack = append(stack, frame{dir: path, depth: top.depth + 1})
				}
				continue
			}
			fn(path, entry)
		}
	}
	return nil
}
