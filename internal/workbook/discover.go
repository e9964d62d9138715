package workbook

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DirectoryPattern selects the files picked up when a directory is given.
const DirectoryPattern = "**/*.{workbook,json,yaml,yml}"

// Discover expands args into document paths. An argument may be a file, a
// directory (searched with DirectoryPattern) or a doublestar glob such as
// "dashboards/**/*.json". "-" is passed through. The result is deduplicated
// and keeps argument order; matches within one argument are sorted.
func Discover(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	for _, arg := range args {
		if arg == "-" {
			add(arg)
			continue
		}

		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			matches, err := matchDir(arg)
			if err != nil {
				return nil, err
			}
			add(matches...)
		case err == nil:
			add(arg)
		case !os.IsNotExist(err):
			return nil, err
		default:
			if !doublestar.ValidatePathPattern(arg) {
				return nil, fmt.Errorf("invalid pattern %q", arg)
			}
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("failed to expand %q: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("%s: %w", arg, fs.ErrNotExist)
			}
			sort.Strings(matches)
			add(matches...)
		}
	}
	return out, nil
}

func matchDir(dir string) ([]string, error) {
	found, err := doublestar.Glob(os.DirFS(dir), DirectoryPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}
	matches := make([]string, 0, len(found))
	for _, f := range found {
		matches = append(matches, filepath.Join(dir, filepath.FromSlash(f)))
	}
	sort.Strings(matches)
	return matches, nil
}
