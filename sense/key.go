// Package sense resolves the sense keys of word-forms to canonical sense
// identifiers.
package sense

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrMalformedKey is the sentinel wrapped by *MalformedKeyError.
var ErrMalformedKey = errors.New("malformed sense key")

type MalformedKeyError struct {
	Key    string
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed sense key %q: %s", e.Key, e.Reason)
}

func (e *MalformedKeyError) Unwrap() error {
	return ErrMalformedKey
}

// Key is a parsed sense key: lemma%ss_type:lex_filenum:lex_id:head_word:head_id
type Key struct {
	Lemma      string
	SsType     int
	LexFilenum int
	LexId      int

	// HeadWord and HeadId are only set for adjective satellites.
	HeadWord string
	HeadId   int
}

func (k Key) String() string {
	head := ""
	if k.HeadWord != "" {
		head = fmt.Sprintf("%02d", k.HeadId)
	}
	return fmt.Sprintf("%s%%%d:%02d:%02d:%s:%s", k.Lemma, k.SsType, k.LexFilenum, k.LexId, k.HeadWord, head)
}

// Satellite reports whether the key belongs to an adjective satellite.
func (k Key) Satellite() bool {
	return k.SsType == 5
}

// Numeric fields are captured as strings: participle would parse "08" as an
// invalid octal int.
type keyGrammar struct {
	Lemma      string `parser:"@Word \"%\""`
	SsType     string `parser:"@Word \":\""`
	LexFilenum string `parser:"@Word \":\""`
	LexId      string `parser:"@Word \":\""`
	HeadWord   string `parser:"@Word? \":\""`
	HeadId     string `parser:"@Word?"`
}

var keyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Percent", Pattern: `%`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Word", Pattern: `[^%:]+`},
})

var keyParser = participle.MustBuild[keyGrammar](
	participle.Lexer(keyLexer),
)

// FirstKey returns the first of several keys joined by ';'.
func FirstKey(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseKey parses a single sense key.
func ParseKey(s string) (Key, error) {
	g, err := keyParser.ParseString("", s)
	if err != nil {
		return Key{}, &MalformedKeyError{Key: s, Reason: err.Error()}
	}

	lemma := strings.TrimSpace(g.Lemma)
	if lemma == "" {
		return Key{}, &MalformedKeyError{Key: s, Reason: "empty lemma"}
	}

	k := Key{Lemma: lemma, HeadWord: g.HeadWord}

	fields := []struct {
		name  string
		value string
		dst   *int
		min   int
		max   int
	}{
		{"ss_type", g.SsType, &k.SsType, 1, 5},
		{"lex_filenum", g.LexFilenum, &k.LexFilenum, 0, 99},
		{"lex_id", g.LexId, &k.LexId, 0, 99},
	}

	for _, f := range fields {
		n, err := strconv.Atoi(f.value)
		if err != nil || n < f.min || n > f.max {
			return Key{}, &MalformedKeyError{Key: s, Reason: fmt.Sprintf("invalid %s %q", f.name, f.value)}
		}
		*f.dst = n
	}

	if g.HeadId != "" {
		n, err := strconv.Atoi(g.HeadId)
		if err != nil {
			return Key{}, &MalformedKeyError{Key: s, Reason: fmt.Sprintf("invalid head_id %q", g.HeadId)}
		}
		k.HeadId = n
	}

	if (k.HeadWord == "") != (g.HeadId == "") {
		return Key{}, &MalformedKeyError{Key: s, Reason: "head_word and head_id must be set together"}
	}

	return k, nil
}
