package stat

import (
	sent "github.com/revelaction/semalign/sentence"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	NumDocs               int
	NumSentences          int
	NumTokens             int
	NumAnnotations        int
	NumResolved           int
	TokensPerSentenceMean int
	TokensPerSentenceDis  map[int]int

	// Senses counts the distinct sense tags
	Senses map[string]int
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{TokensPerSentenceDis: map[int]int{}, Senses: map[string]int{}}
	return &Handler{
		stats: stats,
	}
}

// Aggregate adds the records of doc to the stats. It can be called once per
// doc of a store.
func (h *Handler) Aggregate(doc sent.Doc) {
	h.stats.NumDocs++
	h.stats.NumSentences += len(doc.Records)
	//
	for _, rec := range doc.Records {
		h.stats.NumTokens += len(rec.Tokens)
		h.stats.TokensPerSentenceDis[len(rec.Tokens)]++

		h.stats.NumAnnotations += len(rec.Annotations)
		for _, a := range rec.Annotations {
			if a.Sense.Resolved() {
				h.stats.NumResolved++
			}
			h.stats.Senses[a.Sense.Tag()]++
		}
	}

	if h.stats.NumSentences > 0 {
		h.stats.TokensPerSentenceMean = h.stats.NumTokens / h.stats.NumSentences
	}
}
