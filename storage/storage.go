package storage

import (
	"errors"
	"sort"

	sent "github.com/revelaction/semalign/sentence"
)

var (
	// ErrDocExists is returned by writers that refuse to store a doc twice.
	ErrDocExists = errors.New("doc already stored")

	ErrNotFound = errors.New("not found")
)

// RecordReader defines read operations for aligned record storage
type RecordReader interface {
	// List returns the metadata (Id, Title, Corpus) of documents.
	// If match is not empty, only documents whose title contains the string are returned.
	// Content (Records) is not loaded.
	List(match string) ([]sent.Doc, error)

	// Read returns a document by title
	Read(title string) (sent.Doc, error)

	// Sentence returns the record of a sentence by its id
	Sentence(id string) (sent.Record, error)

	// Unresolved returns the sense keys stored without canonical id,
	// ordered by decreasing count.
	Unresolved() ([]Unresolved, error)
}

// RecordWriter defines write operations for aligned record storage
type RecordWriter interface {
	// Write persists a document and its records
	Write(doc sent.Doc) error
}

// RecordRepository combines read and write operations
type RecordRepository interface {
	RecordReader
	RecordWriter
}

// Exister defines an optional capability for writers that can tell, before
// a file is processed, that its output is already present.
type Exister interface {
	Exists(title, corpus string) (bool, error)
}

// Unresolved is a sense key without canonical id and its number of
// occurrences.
type Unresolved struct {
	Key   string
	Lemma string
	Count int
}

// SortUnresolved converts counts keyed by key and lemma into a list ordered by
// decreasing count, then key.
func SortUnresolved(counts map[Unresolved]int) []Unresolved {
	list := make([]Unresolved, 0, len(counts))
	for u, n := range counts {
		u.Count = n
		list = append(list, u)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		if list[i].Key != list[j].Key {
			return list[i].Key < list[j].Key
		}
		return list[i].Lemma < list[j].Lemma
	})
	return list
}
