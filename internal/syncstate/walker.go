package syncstate

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minimem/minimem/internal/memdir"
	gitignore "github.com/sabhiram/go-gitignore"
)

// builtinIgnoreLines always apply, underneath the user's exclude globs.
var builtinIgnoreLines = []string{
	memdir.PrivateDirName + "/",
	".git/",
	".DS_Store",
	"Thumbs.db",
	"*.tmp",
	"*.swp",
}

var builtinIgnore = gitignore.CompileIgnoreLines(builtinIgnoreLines...)

// ListSyncableFiles walks dir recursively and returns the sorted relative
// slash paths of every file matching at least one include glob and no
// exclude glob. The private subdirectory is skipped entirely. A directory
// that does not exist yields an empty list; other I/O errors propagate.
func ListSyncableFiles(dir string, include, exclude []string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if d.Name() == memdir.PrivateDirName || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if builtinIgnore.MatchesPath(relPath) {
			return nil
		}
		if !matchesAny(include, relPath) {
			return nil
		}
		if matchesAny(exclude, relPath) {
			return nil
		}

		files = append(files, relPath)
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func matchesAny(globs []string, relPath string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
