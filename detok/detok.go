// Package detok joins the tokens of a sentence into natural surface text.
package detok

import (
	"strings"

	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/surface"
)

// JoinRules repair the spacing introduced by joining tokens with a single
// space.
var JoinRules = surface.Rules{
	{Old: " , , ", New: ", "},
	{Old: " , ", New: ", "},
	{Old: surface.OpenQuote + " ", New: surface.OpenQuote},
	{Old: " " + surface.CloseQuote, New: surface.CloseQuote},
	{Old: " ! ", New: "! "},
	{Old: " 'll ", New: "'ll "},
	{Old: " 've ", New: "'ve "},
	{Old: " 're ", New: "'re "},
	{Old: " 'd ", New: "'d "},
	{Old: " 's ", New: "'s "},
	{Old: " 'm ", New: "'m "},
	{Old: " ' ", New: "' "},
	{Old: " ; ", New: "; "},
	{Old: "( ", New: "("},
	{Old: " )", New: ")"},
	{Old: " n't ", New: "n't "},
	{Old: "  ", New: " "},
}

// terminals must be flush against the preceding token at the end of a
// sentence.
var terminals = []string{" .", " :", " ?", " !"}

// Detokenize joins the token texts and repairs punctuation spacing.
func Detokenize(texts []string) string {
	s := JoinRules.Apply(strings.Join(texts, " "))
	for _, t := range terminals {
		if strings.HasSuffix(s, t) {
			s = s[:len(s)-2] + t[1:]
			break
		}
	}
	return strings.TrimSpace(s)
}

// Tokens detokenizes the text of the given tokens.
func Tokens(tokens []sent.Token) string {
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.Text
	}
	return Detokenize(texts)
}
