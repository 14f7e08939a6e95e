package render

import (
	"bytes"
	"strings"
	"testing"

	sent "github.com/revelaction/semalign/sentence"
)

func newTestRenderer(format string) (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRenderer()
	r.Out = &buf
	r.Format = format
	return r, &buf
}

func TestRenderText(t *testing.T) {
	r, buf := newTestRenderer("text")
	if err := r.Render([]sent.Record{testRecord()}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "The dog, ran.\n" {
		t.Errorf("unexpected output %q", got)
	}

	r.HasColor = true
	want := "The " + Green256 + "dog" + Off + ", " + Yellow256 + "ran" + Off + "."
	if got := r.SentenceString(testRecord()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTag(t *testing.T) {
	r, buf := newTestRenderer("tag")
	if err := r.Render([]sent.Record{testRecord()}); err != nil {
		t.Fatal(err)
	}
	want := "4\t7\t02084071-n\tdog\n9\t12\trun%2:38:99::\tran\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderSense(t *testing.T) {
	r, buf := newTestRenderer("sense")
	r.HasPrefix = true
	if err := r.Render([]sent.Record{testRecord()}); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "[br-a01-1-1            2] ✍  ") {
		t.Errorf("unexpected prefix %q", got)
	}
	if !strings.HasSuffix(got, "The dog/02084071-n, ran/run%2:38:99::.\n") {
		t.Errorf("unexpected text %q", got)
	}
}

func TestRenderAggr(t *testing.T) {
	r, buf := newTestRenderer("aggr")
	rec2 := sent.Record{
		Id:   "br-a01-1-2",
		Text: "Dog.",
		Annotations: []sent.Annotation{
			{Span: sent.Span{Start: 0, End: 3}, Sense: sent.Sense{RawKey: "dog%1:05:00::", CanonicalId: "02084071-n"}},
		},
	}
	if err := r.Render([]sent.Record{testRecord(), rec2}); err != nil {
		t.Fatal(err)
	}
	want := "02084071-n dog\nrun%2:38:99:: ran\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNextFormat(t *testing.T) {
	r := NewRenderer()
	seen := []string{r.Format}
	for range SupportedFormats() {
		r.NextFormat()
		seen = append(seen, r.Format)
	}
	if seen[0] != seen[len(seen)-1] || seen[1] != "tag" {
		t.Errorf("unexpected cycle %v", seen)
	}

	r.NextPrefix()
	if !r.HasPrefix {
		t.Error("expected prefix toggled")
	}
}
