// Package align recovers the character spans of the tokens of a sentence in
// its detokenized text.
//
// The search for each token starts where the previous match ended and never
// moves backwards. Repeated surface forms ("the ... the") are therefore
// matched in token order, and the spans of a sentence are ordered and never
// overlap.
package align

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/revelaction/semalign/diag"
	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/surface"
)

// traceLen is the number of match attempts kept for a TokenNotFound report.
const traceLen = 4

// ErrTokenNotFound is the sentinel wrapped by *Error.
var ErrTokenNotFound = errors.New("token not found")

// Token is the input of the aligner.
type Token struct {
	Text     string
	HasSense bool
}

// FromSentence converts sentence tokens to aligner tokens.
func FromSentence(tokens []sent.Token) []Token {
	toks := make([]Token, len(tokens))
	for i, t := range tokens {
		toks[i] = Token{Text: t.Text, HasSense: t.HasSense()}
	}
	return toks
}

// Error reports a token that could not be located in the rendered text. The
// whole sentence alignment is void.
type Error struct {
	Reason     diag.Kind
	SentenceId string
	TokenIndex int
	Token      string

	// SearchStart is the rune offset where the search began.
	SearchStart int

	Trace []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: token %d %q in %s from %d", e.Reason, e.TokenIndex, e.Token, e.SentenceId, e.SearchStart)
}

func (e *Error) Unwrap() error {
	return ErrTokenNotFound
}

// Diagnostic converts the error into a diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Kind:       e.Reason,
		Severity:   diag.Error,
		SentenceId: e.SentenceId,
		TokenIndex: e.TokenIndex,
		Token:      e.Token,
		Position:   e.SearchStart,
		Message:    "token not found, sentence skipped",
		Trace:      e.Trace,
	}
}

// Result holds the spans of the sensed tokens and the non fatal findings.
type Result struct {
	Spans       []sent.Span
	Diagnostics []diag.Diagnostic
}

// Aligner aligns tokens against rendered text.
type Aligner struct {
	// Duplicates are punctuation marks that the corpus tokenizer sometimes
	// emits twice while the rendered text holds them once.
	Duplicates []string
}

// New returns an Aligner guarding against doubled commas.
func New() *Aligner {
	return &Aligner{Duplicates: []string{","}}
}

func (a *Aligner) isDuplicate(text, previous string) bool {
	if text != previous {
		return false
	}
	for _, d := range a.Duplicates {
		if d == text {
			return true
		}
	}
	return false
}

// Align returns the span of every sensed token in rendered.
func (a *Aligner) Align(sid string, tokens []Token, rendered string) (Result, error) {
	var res Result

	// cursor is a byte offset in rendered, runeCursor the same position in
	// runes.
	cursor, runeCursor := 0, 0
	previous := ""
	processed := false
	trace := make([]string, 0, traceLen)

	for i, tk := range tokens {
		text := surface.Quotes(tk.Text)

		if processed && a.isDuplicate(text, previous) {
			d := diag.New(diag.DuplicatePunctuation, sid, "duplicate %q skipped", text)
			d.TokenIndex = i
			d.Token = text
			d.Position = runeCursor
			res.Diagnostics = append(res.Diagnostics, d)
			continue
		}

		if len(trace) == traceLen {
			trace = trace[1:]
		}
		trace = append(trace, fmt.Sprintf("looking for %q from %d", text, runeCursor))

		idx := strings.Index(rendered[cursor:], text)
		if idx == -1 {
			return Result{}, &Error{
				Reason:      diag.TokenNotFound,
				SentenceId:  sid,
				TokenIndex:  i,
				Token:       text,
				SearchStart: runeCursor,
				Trace:       append([]string(nil), trace...),
			}
		}

		start := runeCursor + utf8.RuneCountInString(rendered[cursor:cursor+idx])
		end := start + utf8.RuneCountInString(text)

		if !processed && start != 0 {
			d := diag.New(diag.LeadingOffset, sid, "sentence starts at %d instead of 0", start)
			d.TokenIndex = i
			d.Token = text
			d.Position = start
			res.Diagnostics = append(res.Diagnostics, d)
		}

		cursor += idx + len(text)
		runeCursor = end

		if tk.HasSense {
			res.Spans = append(res.Spans, sent.Span{TokenIndex: i, Start: start, End: end})
		}

		previous = text
		processed = true
	}

	if cursor != len(rendered) {
		d := diag.New(diag.OffsetMismatch, sid, "expected to end at %d but ended at %d, trailing %q",
			utf8.RuneCountInString(rendered), runeCursor, rendered[cursor:])
		d.Position = runeCursor
		res.Diagnostics = append(res.Diagnostics, d)
	}

	return res, nil
}
