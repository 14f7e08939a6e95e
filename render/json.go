package render

import (
	"encoding/json"
	"io"

	sent "github.com/revelaction/semalign/sentence"
)

// JSONRenderer writes records as JSON to a writer.
type JSONRenderer struct {
	W io.Writer

	// WithTokens keeps the source tokens of each record in the output.
	WithTokens bool
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Render serializes records as a JSON array.
func (r *JSONRenderer) Render(recs []sent.Record) error {
	if recs == nil {
		recs = []sent.Record{}
	}

	if !r.WithTokens {
		out := make([]sent.Record, len(recs))
		for i, rec := range recs {
			rec.Tokens = nil
			out[i] = rec
		}
		recs = out
	}

	return json.NewEncoder(r.W).Encode(recs)
}

// compile-time interface check
var _ RecordRenderer = (*JSONRenderer)(nil)
