// Package pipeline turns parsed corpus sentences into aligned records and
// drives the processing of whole corpora.
package pipeline

import (
	"errors"
	"fmt"

	sent "github.com/revelaction/semalign/sentence"
)

// ErrStructural signals a contract violation between the aligner and the
// resolver. It aborts a run.
var ErrStructural = errors.New("structural inconsistency")

type InconsistencyError struct {
	SentenceId string
	TokenIndex int
	Reason     string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: sentence %s token %d: %s", ErrStructural, e.SentenceId, e.TokenIndex, e.Reason)
}

func (e *InconsistencyError) Unwrap() error {
	return ErrStructural
}

// Assemble pairs every span with the sense of its token. Each span must have
// exactly one sense and each sense exactly one span.
func Assemble(id, text string, tokens []sent.Token, spans []sent.Span, senses map[int]sent.Sense) (sent.Record, error) {
	rec := sent.Record{
		Id:          id,
		Text:        text,
		Tokens:      tokens,
		Annotations: make([]sent.Annotation, 0, len(spans)),
	}

	seen := make(map[int]bool, len(spans))
	for _, sp := range spans {
		if seen[sp.TokenIndex] {
			return sent.Record{}, &InconsistencyError{id, sp.TokenIndex, "two spans for one token"}
		}
		seen[sp.TokenIndex] = true

		if sp.TokenIndex < 0 || sp.TokenIndex >= len(tokens) {
			return sent.Record{}, &InconsistencyError{id, sp.TokenIndex, "span outside the token sequence"}
		}

		s, ok := senses[sp.TokenIndex]
		if !ok {
			return sent.Record{}, &InconsistencyError{id, sp.TokenIndex, "span without sense"}
		}

		rec.Annotations = append(rec.Annotations, sent.Annotation{Span: sp, Sense: s})
	}

	for idx := range senses {
		if !seen[idx] {
			return sent.Record{}, &InconsistencyError{id, idx, "sense without span"}
		}
	}

	return rec, nil
}
