package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/revelaction/semalign/align"
	"github.com/revelaction/semalign/detok"
	"github.com/revelaction/semalign/diag"
	"github.com/revelaction/semalign/sense"
	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/surface"
)

// ErrSkipped wraps the errors that void a single sentence.
var ErrSkipped = errors.New("sentence skipped")

// Processor runs the alignment chain for single sentences. It is safe for
// concurrent use if its Resolver is.
type Processor struct {
	Aligner  *align.Aligner
	Resolver *sense.Resolver

	// KeepUnresolved keeps senses without canonical id, tagged with their raw
	// key. By default they are dropped.
	KeepUnresolved bool
}

func NewProcessor(inv sense.Inventory) *Processor {
	return &Processor{
		Aligner:  align.New(),
		Resolver: sense.NewResolver(inv),
	}
}

func (p *Processor) keep(st sense.Status) bool {
	switch st {
	case sense.Resolved:
		return true
	case sense.NotFound, sense.Malformed, sense.Failed:
		return p.KeepUnresolved
	default:
		return false
	}
}

// Process returns the aligned record of s and the findings about it.
//
// A sentence whose tokens cannot be aligned returns an error wrapping both
// ErrSkipped and the *align.Error. An ErrStructural error must abort the run.
func (p *Processor) Process(ctx context.Context, s sent.Sentence) (sent.Record, []diag.Diagnostic, error) {
	tokens := make([]sent.Token, len(s.Tokens))
	for i, t := range s.Tokens {
		tokens[i] = t.WithText(surface.Rewrite(t.Text))
	}

	text := detok.Tokens(tokens)

	res, err := p.Aligner.Align(s.Id, align.FromSentence(tokens), text)
	if err != nil {
		var ae *align.Error
		if errors.As(err, &ae) {
			return sent.Record{}, []diag.Diagnostic{ae.Diagnostic()}, fmt.Errorf("%w: %w", ErrSkipped, err)
		}
		return sent.Record{}, nil, err
	}

	ds := res.Diagnostics
	spans := make([]sent.Span, 0, len(res.Spans))
	senses := make(map[int]sent.Sense, len(res.Spans))

	for _, sp := range res.Spans {
		tk := tokens[sp.TokenIndex]
		r := p.Resolver.Resolve(ctx, tk.SenseKey, tk.Lemma, tk.Relation)
		if d, ok := r.Diagnostic(s.Id, sp.TokenIndex); ok {
			ds = append(ds, d)
		}

		if !p.keep(r.Status) {
			continue
		}
		spans = append(spans, sp)
		senses[sp.TokenIndex] = r.Sense
	}

	rec, err := Assemble(s.Id, text, tokens, spans, senses)
	if err != nil {
		var ie *InconsistencyError
		if errors.As(err, &ie) {
			d := diag.New(diag.StructuralInconsistency, s.Id, "%s", ie.Reason)
			d.Severity = diag.Error
			d.TokenIndex = ie.TokenIndex
			ds = append(ds, d)
		}
		return sent.Record{}, ds, err
	}

	return rec, ds, nil
}
