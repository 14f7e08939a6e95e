package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/storage"
)

// TSVStore appends all docs of a run to three tab separated files:
//
//	<name>.raw  sid, text
//	<name>.tag  sid, from, to, sense tag, surface
//	<name>.txt  the tokens of each sentence as text|key
type TSVStore struct {
	mu    sync.Mutex
	files []*os.File

	raw *bufio.Writer
	tag *bufio.Writer
	txt *bufio.Writer
}

var _ storage.RecordWriter = (*TSVStore)(nil)

const tsvHeader = "# semalign tab version\n#\n"

func NewTSVStore(dir, name string) (*TSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &TSVStore{}
	var ws []*bufio.Writer
	for _, e := range []string{".raw", ".tag", ".txt"} {
		f, err := os.Create(filepath.Join(dir, name+e))
		if err != nil {
			s.Close()
			return nil, err
		}
		s.files = append(s.files, f)
		ws = append(ws, bufio.NewWriter(f))
	}
	s.raw, s.tag, s.txt = ws[0], ws[1], ws[2]

	s.raw.WriteString(tsvHeader)
	s.txt.WriteString(tsvHeader)
	return s, nil
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\n", " ")

func (s *TSVStore) Write(doc sent.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range doc.Records {
		if _, err := fmt.Fprintf(s.raw, "%s\t%s\n", r.Id, tsvEscaper.Replace(r.Text)); err != nil {
			return err
		}

		for i, a := range r.Annotations {
			_, err := fmt.Fprintf(s.tag, "%s\t%d\t%d\t%s\t%s\n", r.Id, a.Span.Start, a.Span.End, a.Sense.Tag(), tsvEscaper.Replace(r.Surface(i)))
			if err != nil {
				return err
			}
		}

		toks := make([]string, len(r.Tokens))
		for i, t := range r.Tokens {
			toks[i] = tsvEscaper.Replace(t.Text) + "|" + t.SenseKey
		}
		if _, err := fmt.Fprintln(s.txt, strings.Join(toks, "\t")); err != nil {
			return err
		}
	}

	return nil
}

// Close flushes and closes the files.
func (s *TSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, w := range []*bufio.Writer{s.raw, s.tag, s.txt} {
		if w != nil {
			errs = append(errs, w.Flush())
		}
	}
	for _, f := range s.files {
		errs = append(errs, f.Close())
	}
	s.files = nil
	return errors.Join(errs...)
}
