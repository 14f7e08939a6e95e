package filesystem

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/storage"
)

const ext = ".json"

// DocStore keeps each doc in its own JSON lines file, one record per line,
// under a directory per corpus: <root>/<corpus>/<title>.json
type DocStore struct {
	root string

	// Overwrite replaces existing outputs instead of refusing them.
	Overwrite bool
}

var _ storage.RecordRepository = (*DocStore)(nil)
var _ storage.Exister = (*DocStore)(nil)

// NewDocStore creates a filesystem document store rooted at root.
func NewDocStore(root string) (*DocStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DocStore{root: root}, nil
}

func (h *DocStore) path(title, corpus string) string {
	return filepath.Join(h.root, corpus, title+ext)
}

func (h *DocStore) Exists(title, corpus string) (bool, error) {
	if h.Overwrite {
		return false, nil
	}
	_, err := os.Stat(h.path(title, corpus))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Write stores the records of doc. The file is written under a temporary
// name and renamed, so a partial output never looks complete.
func (h *DocStore) Write(doc sent.Doc) error {
	exists, err := h.Exists(doc.Title, doc.Corpus)
	if err != nil {
		return err
	}
	if exists {
		return storage.ErrDocExists
	}

	path := h.path(doc.Title, doc.Corpus)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+doc.Title+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteRecords(tmp, doc.Records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// WriteRecords writes one JSON record per line.
func WriteRecords(w io.Writer, records []sent.Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadRecords reads JSON lines records.
func ReadRecords(r io.Reader) ([]sent.Record, error) {
	dec := json.NewDecoder(r)
	var records []sent.Record
	for {
		var rec sent.Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("JSON decoding error: %w", err)
		}
		records = append(records, rec)
	}
}

func (h *DocStore) docs() ([]sent.Doc, error) {
	var docs []sent.Doc
	err := filepath.WalkDir(h.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || filepath.Ext(path) != ext {
			return nil
		}

		rel, err := filepath.Rel(h.root, path)
		if err != nil {
			return err
		}

		corpus := filepath.Dir(rel)
		if corpus == "." {
			corpus = ""
		}

		docs = append(docs, sent.Doc{
			Title:  strings.TrimSuffix(filepath.Base(path), ext),
			Corpus: corpus,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Corpus != docs[j].Corpus {
			return docs[i].Corpus < docs[j].Corpus
		}
		return docs[i].Title < docs[j].Title
	})

	for i := range docs {
		docs[i].Id = i
	}
	return docs, nil
}

func (h *DocStore) List(match string) ([]sent.Doc, error) {
	docs, err := h.docs()
	if err != nil {
		return nil, err
	}

	if match == "" {
		return docs, nil
	}

	var matched []sent.Doc
	for _, d := range docs {
		if strings.Contains(d.Title, match) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

func (h *DocStore) Read(title string) (sent.Doc, error) {
	docs, err := h.docs()
	if err != nil {
		return sent.Doc{}, err
	}

	for _, d := range docs {
		if d.Title != title {
			continue
		}

		f, err := os.Open(h.path(d.Title, d.Corpus))
		if err != nil {
			return sent.Doc{}, fmt.Errorf("IO error: %w", err)
		}
		defer f.Close()

		d.Records, err = ReadRecords(f)
		if err != nil {
			return sent.Doc{}, err
		}
		return d, nil
	}

	return sent.Doc{}, fmt.Errorf("doc %s: %w", title, storage.ErrNotFound)
}

// docTitle returns the title part of a sentence id <title>-<para>-<snum>
func docTitle(sid string) string {
	parts := strings.Split(sid, "-")
	if len(parts) < 3 {
		return sid
	}
	return strings.Join(parts[:len(parts)-2], "-")
}

func (h *DocStore) Sentence(id string) (sent.Record, error) {
	doc, err := h.Read(docTitle(id))
	if err != nil {
		return sent.Record{}, err
	}

	for _, r := range doc.Records {
		if r.Id == id {
			return r, nil
		}
	}
	return sent.Record{}, fmt.Errorf("sentence %s: %w", id, storage.ErrNotFound)
}

func (h *DocStore) Unresolved() ([]storage.Unresolved, error) {
	docs, err := h.docs()
	if err != nil {
		return nil, err
	}

	counts := map[storage.Unresolved]int{}
	for _, d := range docs {
		full, err := h.Read(d.Title)
		if err != nil {
			return nil, err
		}
		for _, r := range full.Records {
			for _, a := range r.Annotations {
				if a.Sense.Resolved() {
					continue
				}
				counts[storage.Unresolved{Key: a.Sense.LookupKey(), Lemma: a.Sense.Lemma}]++
			}
		}
	}

	return storage.SortUnresolved(counts), nil
}
