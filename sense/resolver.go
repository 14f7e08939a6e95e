package sense

import (
	"context"
	"fmt"

	"github.com/revelaction/semalign/diag"
	sent "github.com/revelaction/semalign/sentence"
)

// Status is the outcome of a resolution.
type Status int

const (
	Resolved Status = iota
	NotFound
	Malformed
	Nonsense
	Failed
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not-found"
	case Malformed:
		return "malformed"
	case Nonsense:
		return "nonsense"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Result struct {
	Sense    sent.Sense
	Status   Status
	Relation string

	// Err is set for Malformed and Failed.
	Err error
}

// Diagnostic returns the finding to report for the result. Resolved and
// Nonsense results report nothing.
func (r Result) Diagnostic(sid string, tokenIndex int) (diag.Diagnostic, bool) {
	var d diag.Diagnostic
	switch r.Status {
	case NotFound:
		d = diag.New(diag.SenseNotFound, sid, "no sense id for key %s rdf %q", r.Sense.LookupKey(), r.Relation)
	case Malformed:
		d = diag.New(diag.MalformedKey, sid, "%v", r.Err)
	case Failed:
		d = diag.New(diag.LookupFailed, sid, "lookup of %s: %v", r.Sense.LookupKey(), r.Err)
	default:
		return diag.Diagnostic{}, false
	}
	d.TokenIndex = tokenIndex
	d.Token = r.Sense.RawKey
	return d, true
}

// Resolver resolves raw sense keys through a run-scoped cache.
type Resolver struct {
	Cache       *Cache
	Corrections Corrections
	Filter      *Filter

	// WithNonsense disables the nonsense filter.
	WithNonsense bool
}

// NewResolver returns a Resolver with the built-in corrections and nonsense
// filter.
func NewResolver(inv Inventory) *Resolver {
	return &Resolver{
		Cache:       NewCache(inv),
		Corrections: DefaultCorrections(),
		Filter:      DefaultFilter(),
	}
}

// key returns the corrected first key of rawKey.
func (r *Resolver) key(rawKey string) string {
	return r.Corrections.Apply(FirstKey(rawKey))
}

func (r *Resolver) skip(key, lemma, relation string) bool {
	return !r.WithNonsense && r.Filter.Nonsense(key, lemma, relation)
}

// Preload fetches with one batched inventory read the keys of the sensed
// tokens that Resolve would look up.
func (r *Resolver) Preload(ctx context.Context, tokens []sent.Token) error {
	var keys []string
	for _, t := range tokens {
		if !t.HasSense() {
			continue
		}
		key := r.key(t.SenseKey)
		if r.skip(key, t.Lemma, t.Relation) {
			continue
		}
		if _, err := ParseKey(key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return r.Cache.Preload(ctx, keys)
}

// Resolve maps a raw key to its canonical sense id. Only the first of
// several ';' separated keys is considered. Resolve never fails: lookup
// problems are reported in the Status of the result.
func (r *Resolver) Resolve(ctx context.Context, rawKey, lemma, relation string) Result {
	key := r.key(rawKey)
	res := Result{
		Sense:    sent.Sense{RawKey: rawKey, Lemma: lemma},
		Relation: relation,
	}
	if key != rawKey {
		res.Sense.Key = key
	}

	if r.skip(key, lemma, relation) {
		res.Status = Nonsense
		return res
	}

	if _, err := ParseKey(key); err != nil {
		res.Status = Malformed
		res.Err = err
		return res
	}

	id, found, err := r.Cache.Get(ctx, key)
	if err != nil {
		res.Status = Failed
		res.Err = fmt.Errorf("resolve %s: %w", key, err)
		return res
	}

	if !found {
		res.Status = NotFound
		return res
	}

	res.Sense.CanonicalId = id
	res.Status = Resolved
	return res
}
