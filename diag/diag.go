// Package diag collects data-quality findings produced while aligning a
// corpus, so that they can be counted and audited after a run.
package diag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// TokenNotFound: a token text could not be located at or after the cursor.
	TokenNotFound Kind = iota
	// OffsetMismatch: the cursor did not land on the end of the rendered text.
	OffsetMismatch
	// LeadingOffset: the first token does not start at offset 0.
	LeadingOffset
	// DuplicatePunctuation: a doubled punctuation token was skipped.
	DuplicatePunctuation
	// SenseNotFound: the inventory has no canonical id for the key.
	SenseNotFound
	// MalformedKey: the key could not be parsed into its components.
	MalformedKey
	// LookupFailed: the inventory returned an error.
	LookupFailed
	// StructuralInconsistency: span and sense sets do not match.
	StructuralInconsistency
)

var kindNames = map[Kind]string{
	TokenNotFound:           "token-not-found",
	OffsetMismatch:          "offset-mismatch",
	LeadingOffset:           "leading-offset",
	DuplicatePunctuation:    "duplicate-punctuation",
	SenseNotFound:           "sense-not-found",
	MalformedKey:            "malformed-key",
	LookupFailed:            "lookup-failed",
	StructuralInconsistency: "structural-inconsistency",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Kinds returns all kinds in declaration order.
func Kinds() []Kind {
	return []Kind{TokenNotFound, OffsetMismatch, LeadingOffset, DuplicatePunctuation,
		SenseNotFound, MalformedKey, LookupFailed, StructuralInconsistency}
}

// Severity of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single finding about a sentence.
type Diagnostic struct {
	Kind       Kind
	Severity   Severity
	SentenceId string

	// TokenIndex is -1 when the finding is about the whole sentence.
	TokenIndex int
	Token      string

	// Position is a rune offset in the rendered text, -1 if not applicable.
	Position int

	Message string

	// Trace holds the last match attempts before a failure.
	Trace []string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s] %s", d.Severity, d.Kind, d.SentenceId)
	if d.TokenIndex >= 0 {
		fmt.Fprintf(&b, " token %d %q", d.TokenIndex, d.Token)
	}
	if d.Position >= 0 {
		fmt.Fprintf(&b, " at %d", d.Position)
	}
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// New returns a warning diagnostic without token or position.
func New(kind Kind, sid string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:       kind,
		Severity:   Warning,
		SentenceId: sid,
		TokenIndex: -1,
		Position:   -1,
		Message:    fmt.Sprintf(format, args...),
	}
}

// Bag collects diagnostics from concurrent workers.
type Bag struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	counts      map[Kind]int
	errorCount  int
	warnCount   int
}

func NewBag() *Bag {
	return &Bag{counts: map[Kind]int{}}
}

func (b *Bag) Add(ds ...Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, d := range ds {
		b.diagnostics = append(b.diagnostics, d)
		b.counts[d.Kind]++
		switch d.Severity {
		case Error:
			b.errorCount++
		case Warning:
			b.warnCount++
		}
	}
}

func (b *Bag) ErrorCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

func (b *Bag) WarningCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnCount
}

// Diagnostics returns a copy of the collected diagnostics, ordered by
// sentence id so that output does not depend on worker scheduling.
func (b *Bag) Diagnostics() []Diagnostic {
	b.mu.Lock()
	ds := make([]Diagnostic, len(b.diagnostics))
	copy(ds, b.diagnostics)
	b.mu.Unlock()

	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].SentenceId < ds[j].SentenceId
	})
	return ds
}

// Counts returns the number of diagnostics per kind.
func (b *Bag) Counts() map[Kind]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := make(map[Kind]int, len(b.counts))
	for k, v := range b.counts {
		c[k] = v
	}
	return c
}

// Of returns the diagnostics of the given kind.
func (b *Bag) Of(kind Kind) []Diagnostic {
	var ds []Diagnostic
	for _, d := range b.Diagnostics() {
		if d.Kind == kind {
			ds = append(ds, d)
		}
	}
	return ds
}
