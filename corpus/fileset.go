package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDirs are the tagged directories of the corpus, relative to its root.
var DefaultDirs = []string{"brown1/tagfiles", "brown2/tagfiles", "brownv/tagfiles"}

// FileSet enumerates the files of a corpus.
type FileSet struct {
	Root string
	Dirs []string
}

func NewFileSet(root string) *FileSet {
	return &FileSet{Root: root, Dirs: DefaultDirs}
}

// Files returns the paths of the regular files of each directory, in
// directory order and then by name. Missing directories are skipped.
func (s *FileSet) Files() ([]string, error) {
	var files []string
	for _, d := range s.Dirs {
		dir := filepath.Join(s.Root, d)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}

		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Rel returns path relative to the root of the set.
func (s *FileSet) Rel(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		return path
	}
	return rel
}

// Walk returns the regular files under root whose name matches the glob
// pattern, f.ex. "*.xml".
func Walk(root, pattern string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
