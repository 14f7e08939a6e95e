package align

import (
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/revelaction/semalign/detok"
	"github.com/revelaction/semalign/diag"
	sent "github.com/revelaction/semalign/sentence"
)

func toks(texts ...string) []Token {
	ts := make([]Token, len(texts))
	for i, t := range texts {
		ts[i] = Token{Text: t, HasSense: true}
	}
	return ts
}

func kinds(ds []diag.Diagnostic) []diag.Kind {
	var ks []diag.Kind
	for _, d := range ds {
		ks = append(ks, d.Kind)
	}
	return ks
}

func TestAlignDuplicateComma(t *testing.T) {
	tokens := []Token{
		{"The", true}, {"dog", true}, {",", false}, {",", false}, {"ran", true}, {".", false},
	}

	res, err := New().Align("br-a01-1-1", tokens, "The dog, ran.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []sent.Span{
		{TokenIndex: 0, Start: 0, End: 3},
		{TokenIndex: 1, Start: 4, End: 7},
		{TokenIndex: 4, Start: 9, End: 12},
	}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("spans = %v, want %v", res.Spans, want)
	}

	if got := kinds(res.Diagnostics); !reflect.DeepEqual(got, []diag.Kind{diag.DuplicatePunctuation}) {
		t.Errorf("diagnostics = %v", got)
	}
	if res.Diagnostics[0].TokenIndex != 3 {
		t.Errorf("expected duplicate at token 3, got %d", res.Diagnostics[0].TokenIndex)
	}
}

func TestAlignRepeatedForms(t *testing.T) {
	tokens := []Token{
		{"the", true}, {"cat", false}, {"sat", false}, {"on", false}, {"the", true}, {"mat", false}, {".", false},
	}

	res, err := New().Align("s", tokens, "the cat sat on the mat.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []sent.Span{
		{TokenIndex: 0, Start: 0, End: 3},
		{TokenIndex: 4, Start: 15, End: 18},
	}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("spans = %v, want %v", res.Spans, want)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestAlignRuneOffsets(t *testing.T) {
	res, err := New().Align("s", toks("naïve", "café", "au", "lait"), "naïve café au lait")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []sent.Span{
		{TokenIndex: 0, Start: 0, End: 5},
		{TokenIndex: 1, Start: 6, End: 10},
		{TokenIndex: 2, Start: 11, End: 13},
		{TokenIndex: 3, Start: 14, End: 18},
	}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("spans = %v, want %v", res.Spans, want)
	}
}

func TestAlignQuotes(t *testing.T) {
	res, err := New().Align("s", toks("``", "Hi", "''"), "“Hi”")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []sent.Span{
		{TokenIndex: 0, Start: 0, End: 1},
		{TokenIndex: 1, Start: 1, End: 3},
		{TokenIndex: 2, Start: 3, End: 4},
	}
	if !reflect.DeepEqual(res.Spans, want) {
		t.Errorf("spans = %v, want %v", res.Spans, want)
	}
}

func TestAlignTokenNotFound(t *testing.T) {
	_, err := New().Align("br-a01-2-3", toks("a", "b", "c", "d", "e", "x"), "a b c d e")
	if err == nil {
		t.Fatal("expected error")
	}

	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}

	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *Error, got %T", err)
	}

	if ae.TokenIndex != 5 || ae.Token != "x" || ae.SearchStart != 9 {
		t.Errorf("unexpected error fields %+v", ae)
	}
	if ae.Reason != diag.TokenNotFound {
		t.Errorf("unexpected reason %s", ae.Reason)
	}
	if len(ae.Trace) != 4 {
		t.Fatalf("expected trace of 4, got %d: %v", len(ae.Trace), ae.Trace)
	}
	if !strings.Contains(ae.Trace[3], `"x"`) || !strings.Contains(ae.Trace[0], `"c"`) {
		t.Errorf("unexpected trace %v", ae.Trace)
	}

	d := ae.Diagnostic()
	if d.Severity != diag.Error || d.SentenceId != "br-a01-2-3" {
		t.Errorf("unexpected diagnostic %v", d)
	}
}

func TestAlignNeverBacktracks(t *testing.T) {
	// "dog" occurs only before the cursor
	_, err := New().Align("s", toks("dog", "ran", "dog"), "dog ran")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestAlignLeadingOffset(t *testing.T) {
	res, err := New().Align("s", toks("hello"), " hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := kinds(res.Diagnostics); !reflect.DeepEqual(got, []diag.Kind{diag.LeadingOffset}) {
		t.Fatalf("diagnostics = %v", got)
	}
	if res.Spans[0].Start != 1 {
		t.Errorf("expected start 1, got %d", res.Spans[0].Start)
	}
}

func TestAlignOffsetMismatch(t *testing.T) {
	res, err := New().Align("s", toks("hello"), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := kinds(res.Diagnostics); !reflect.DeepEqual(got, []diag.Kind{diag.OffsetMismatch}) {
		t.Fatalf("diagnostics = %v", got)
	}
	if res.Diagnostics[0].Position != 5 {
		t.Errorf("expected position 5, got %d", res.Diagnostics[0].Position)
	}
}

func TestAlignCustomDuplicates(t *testing.T) {
	a := &Aligner{}
	_, err := a.Align("s", toks("a", ",", ","), "a,")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("without guard the second comma must fail, got %v", err)
	}

	a.Duplicates = []string{",", ";"}
	res, err := a.Align("s", toks("a", ";", ";"), "a;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Spans) != 2 {
		t.Errorf("expected 2 spans, got %v", res.Spans)
	}
}

func TestAlignSpansOrdered(t *testing.T) {
	texts := strings.Fields("the boy saw the girl and the girl saw the boy")
	res, err := New().Align("s", toks(texts...), strings.Join(texts, " "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(res.Spans); i++ {
		if res.Spans[i].Start < res.Spans[i-1].End {
			t.Fatalf("spans overlap: %v %v", res.Spans[i-1], res.Spans[i])
		}
	}
}

func TestFromSentence(t *testing.T) {
	got := FromSentence([]sent.Token{{Text: "dog", SenseKey: "dog%1:05:00::"}, {Text: "."}})
	want := []Token{{"dog", true}, {".", false}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAlignCoverage(t *testing.T) {
	vocab := []string{"the", "dog", "ran", "a", "cat", "home", "It", ",", ".", ";", "n't", "'s", "(", ")", "!"}
	rnd := rand.New(rand.NewSource(1))
	a := New()

	checked := 0
	for n := 0; n < 2000; n++ {
		texts := make([]string, 1+rnd.Intn(12))
		for i := range texts {
			texts[i] = vocab[rnd.Intn(len(vocab))]
		}
		rendered := detok.Detokenize(texts)

		res, err := a.Align("s", toks(texts...), rendered)
		if err != nil || slices.Contains(kinds(res.Diagnostics), diag.OffsetMismatch) {
			continue
		}
		checked++

		runes := []rune(rendered)
		covered, end := 0, 0
		for _, sp := range res.Spans {
			if sp.Start < end {
				t.Fatalf("%q: span %+v overlaps the previous one", texts, sp)
			}
			if got := string(runes[sp.Start:sp.End]); got != texts[sp.TokenIndex] {
				t.Fatalf("%q: span %+v covers %q", texts, sp, got)
			}
			covered += sp.Start - end + sp.Len()
			end = sp.End
		}
		if covered != len(runes) {
			t.Fatalf("%q: spans and gaps cover %d runes of %d in %q", texts, covered, len(runes), rendered)
		}
	}

	if checked < 1000 {
		t.Errorf("only %d sentences aligned without offset mismatch", checked)
	}
}
