// Package corpus reads sense-tagged corpus files: <s> sentence elements
// holding <wf> word-forms and <punc> punctuation, grouped in <p> paragraphs
// of a <context> file.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	sent "github.com/revelaction/semalign/sentence"
)

var (
	contextExpr = xpath.MustCompile("ancestor::context[1]")
	paraExpr    = xpath.MustCompile("ancestor::p[1]")
)

// attributes with a dedicated Token field
var tokenFields = map[string]bool{
	"lemma": true,
	"lexsn": true,
	"rdf":   true,
}

// Each streams the sentences of r to fn, in document order. Only one <s>
// element is held in memory at a time.
func Each(r io.Reader, fn func(sent.Sentence) error) error {
	p, err := xmlquery.CreateStreamParser(r, "//s")
	if err != nil {
		return err
	}

	for {
		n, err := p.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := fn(sentence(n)); err != nil {
			return err
		}
	}
}

// Parse returns all sentences of r.
func Parse(r io.Reader) ([]sent.Sentence, error) {
	var sentences []sent.Sentence
	err := Each(r, func(s sent.Sentence) error {
		sentences = append(sentences, s)
		return nil
	})
	return sentences, err
}

// ParseFile returns all sentences of the file at path. xz compressed files
// are decompressed transparently.
func ParseFile(path string) ([]sent.Sentence, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sentences, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sentences, nil
}

func attr(n *xmlquery.Node, expr *xpath.Expr, name string) string {
	a := xmlquery.QuerySelector(n, expr)
	if a == nil {
		return ""
	}
	return a.SelectAttr(name)
}

func sentence(n *xmlquery.Node) sent.Sentence {
	s := sent.Sentence{
		File: attr(n, contextExpr, "filename"),
		Para: attr(n, paraExpr, "pnum"),
		Num:  n.SelectAttr("snum"),
	}
	s.Id = sent.SentenceId(s.File, s.Para, s.Num)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}

		switch c.Data {
		case "wf":
			s.Tokens = append(s.Tokens, wordForm(c))
		case "punc":
			s.Tokens = append(s.Tokens, sent.Token{
				Text:  c.InnerText(),
				Kind:  sent.Punctuation,
				Attrs: attrs(c),
			})
		}
	}

	return s
}

func wordForm(n *xmlquery.Node) sent.Token {
	t := sent.Token{
		Text:     n.InnerText(),
		Kind:     sent.Word,
		Lemma:    strings.TrimSpace(n.SelectAttr("lemma")),
		Relation: n.SelectAttr("rdf"),
		Attrs:    attrs(n),
	}

	lexsn := strings.TrimSpace(n.SelectAttr("lexsn"))
	if t.Lemma != "" && lexsn != "" {
		t.SenseKey = SenseKey(t.Lemma, lexsn)
	}

	return t
}

var keySeparators = strings.NewReplacer("\t", " ", "|", " ")

// SenseKey builds the sense key of a word-form from its lemma and lexsn
// attributes.
func SenseKey(lemma, lexsn string) string {
	return strings.TrimSpace(keySeparators.Replace(lemma + "%" + lexsn))
}

func attrs(n *xmlquery.Node) map[string]string {
	var m map[string]string
	for _, a := range n.Attr {
		if tokenFields[a.Name.Local] {
			continue
		}
		if m == nil {
			m = map[string]string{}
		}
		m[a.Name.Local] = a.Value
	}
	return m
}
