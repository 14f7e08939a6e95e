package sentence

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Kind is the markup class of a token: a word-form or a punctuation mark.
type Kind int

const (
	Word Kind = iota
	Punctuation
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "wf"
	case Punctuation:
		return "punc"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "wf":
		*k = Word
	case "punc":
		*k = Punctuation
	default:
		return fmt.Errorf("unknown token kind %q", s)
	}
	return nil
}

// Token represents a surface token of a sentence, with its sense annotation.
type Token struct {
	// The token text as found in the corpus
	Text string `json:"text"`

	Kind Kind `json:"tag"`

	// The lemma of the word-form. Empty for punctuation.
	Lemma string `json:"lemma,omitempty"`

	// SenseKey is lemma%lexsn, empty when the word-form is not sense tagged.
	SenseKey string `json:"sk,omitempty"`

	// Relation is the rdf attribute (f.ex. "person" for proper names)
	Relation string `json:"rdf,omitempty"`

	// Any other markup attribute: pos, wnsn, cmd, ot, pn...
	Attrs map[string]string `json:"attrs,omitempty"`
}

// HasSense reports whether the token carries a sense key.
func (t Token) HasSense() bool {
	return t.SenseKey != ""
}

// LemmaOrText returns the lemma, falling back to the text.
func (t Token) LemmaOrText() string {
	if t.Lemma != "" {
		return t.Lemma
	}
	return t.Text
}

// WithText returns a copy of the token with a different text.
func (t Token) WithText(text string) Token {
	t.Text = text
	return t
}

// Sentence is one <s> element of a corpus file.
type Sentence struct {
	Id   string `json:"sid"`
	File string `json:"filename"`
	Para string `json:"para"`
	Num  string `json:"snum"`

	Tokens []Token `json:"tokens"`
}

// SentenceId builds the sentence identifier from its file code, paragraph
// and sentence numbers. Missing parts are rendered as "n/a".
func SentenceId(file, para, snum string) string {
	return fmt.Sprintf("%s-%s-%s", orNA(file), orNA(para), orNA(snum))
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

// Span is a half-open [Start, End) range of runes in the rendered text of a
// sentence.
type Span struct {
	TokenIndex int `json:"token"`
	Start      int `json:"cfrom"`
	End        int `json:"cto"`
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Sense is the outcome of resolving a sense key. CanonicalId is empty when the
// inventory does not know the key.
type Sense struct {
	// RawKey is the key as found in the corpus, possibly several keys
	// separated by ';'.
	RawKey string `json:"sk"`

	// Key is the corrected first key that was looked up, set only when it
	// differs from RawKey.
	Key string `json:"key,omitempty"`

	CanonicalId string `json:"id,omitempty"`
	Lemma       string `json:"lemma"`
}

// LookupKey returns the key that was looked up in the inventory.
func (s Sense) LookupKey() string {
	if s.Key != "" {
		return s.Key
	}
	return s.RawKey
}

func (s Sense) Resolved() bool {
	return s.CanonicalId != ""
}

// Tag is the identifier written downstream: the canonical id, or the looked
// up key when kept as fallback.
func (s Sense) Tag() string {
	if s.CanonicalId != "" {
		return s.CanonicalId
	}
	return s.LookupKey()
}

type Annotation struct {
	Span  Span  `json:"span"`
	Sense Sense `json:"sense"`
}

// Record is the output of the alignment of one sentence.
type Record struct {
	Id          string       `json:"sid"`
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations"`
	Tokens      []Token      `json:"tokens,omitempty"`
}

// Surface returns the part of the text covered by the annotation at index i.
func (r Record) Surface(i int) string {
	sp := r.Annotations[i].Span
	runes := []rune(r.Text)
	if sp.Start < 0 || sp.End > len(runes) || sp.Start > sp.End {
		return ""
	}
	return string(runes[sp.Start:sp.End])
}

// Doc is the aligned content of one corpus file.
type Doc struct {
	Id int `json:"-"`

	// Title is the file code, f.ex. br-a01
	Title string `json:"title"`

	// Corpus is the collection the file belongs to, f.ex. brown1
	Corpus string `json:"corpus,omitempty"`

	Records []Record `json:"records"`
}

// Digest returns the hex BLAKE3 fingerprint of the doc records.
func (d Doc) Digest() (string, error) {
	data, err := json.Marshal(d.Records)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Library is a collection of Doc
type Library []Doc
