// Package surface repairs the text of single corpus tokens: contractions split
// by the corpus tokenizer, ASCII quote markers and stray spacing.
package surface

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	OpenQuote  = "“"
	CloseQuote = "”"
)

// Rule is a literal substring replacement.
type Rule struct {
	Old string
	New string
}

// Rules is an ordered list of replacements. Later rules see the output of
// earlier ones.
type Rules []Rule

// maxPasses bounds Apply. Every rule in this package shortens its input in
// runes, so the fixed point is reached long before.
const maxPasses = 8

// Apply runs the rules in order and repeats until no rule changes the text.
func (rs Rules) Apply(s string) string {
	for pass := 0; pass < maxPasses; pass++ {
		out := s
		for _, r := range rs {
			out = strings.ReplaceAll(out, r.Old, r.New)
		}
		if out == s {
			return out
		}
		s = out
	}
	return s
}

// Shrinking reports whether every rule strictly shortens the text it
// replaces, which guarantees Apply converges.
func (rs Rules) Shrinking() bool {
	for _, r := range rs {
		if utf8.RuneCountInString(r.New) >= utf8.RuneCountInString(r.Old) {
			return false
		}
	}
	return true
}

var quoteRules = Rules{
	{"``", OpenQuote},
	{"''", CloseQuote},
}

// TokenRules restore contractions and normalize quotes and bracket spacing
// inside a token. Quote conversion must run before the spacing rules that
// refer to the directional quotes.
var TokenRules = Rules{
	{" ' nuff", " 'nuff"},
	{"Ol ' ", "Ol' "},
	{"O ' ", "O' "},
	{"ma ' am", "ma'am"},
	{"Ma ' am", "Ma'am"},
	{"probl ' y", "probl'y"},
	{"ai n't", "ain't"},
	{"holdin '", "holdin'"},
	{"hangin '", "hangin'"},
	{"dryin ' ", "dryin' "},
	{"Y ' all", "Y'all"},
	{"y ' know", "y'know"},
	{"c ' n", "c'n"},
	{"l ' identite", "l'identite"},
	{"Rue de L ' Arcade", "Rue de l'Arcade"},
	{"p ' lite", "p'lite"},
	{"rev ' rend", "rev'rend"},
	{"coup d ' etat", "coup d'etat"},
	{"t ' gethuh", "t'gethuh"},
	{"``", OpenQuote},
	{"''", CloseQuote},
	{" ,", ","},
	{"( ", "("},
	{" )", ")"},
	{" " + CloseQuote, CloseQuote},
	{" 's", "'s"},
	{"o '", "o'"},
	{"s ' ", "s' "},
}

var separators = strings.NewReplacer("\t", " ", "|", " ", "_", " ")

// Rewrite returns the surface form of a raw token text. Multi-word units
// joined by underscores become space separated.
func Rewrite(raw string) string {
	s := separators.Replace(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	s = norm.NFC.String(s)
	return TokenRules.Apply(s)
}

// Quotes converts only the doubled ASCII quote markers to directional quotes.
func Quotes(s string) string {
	return quoteRules.Apply(s)
}
