package corpus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

const xzExt = ".xz"

type file struct {
	io.Reader
	f *os.File
}

func (f *file) Close() error {
	return f.f.Close()
}

// Open opens a corpus file for reading, decompressing .xz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, xzExt) {
		return f, nil
	}

	xr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("not valid xz %s: %w", path, err)
	}

	return &file{Reader: xr, f: f}, nil
}

// Name returns the document title and the corpus of a corpus file path.
//
//	brown1/tagfiles/br-a01.xml.xz -> br-a01, brown1
func Name(path string) (title, corpus string) {
	base := strings.TrimSuffix(filepath.Base(path), xzExt)
	title = strings.TrimSuffix(base, ".xml")

	dir := filepath.Dir(path)
	if filepath.Base(dir) == "tagfiles" {
		dir = filepath.Dir(dir)
	}

	corpus = filepath.Base(dir)
	if corpus == "." || corpus == string(filepath.Separator) {
		corpus = ""
	}
	return title, corpus
}
