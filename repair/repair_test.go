package repair

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revelaction/semalign/corpus"
)

const soup = `<contextfile concordance=brown>
<context filename=br-a01 paras=yes>
<p pnum=1>
<s snum=1>
<wf cmd=done pos=NNP lemma=AT&T wnsn=1 lexsn=1:14:00::>AT&T</wf>
<wf cmd=done pos=VB lemma=say wnsn=1 lexsn=2:32:00::>said</wf>
<punc>.</punc>
</s>
</p>
</context>
</contextfile>
`

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quotes attributes", `<wf pos=NN lemma=dog>dog</wf>`, `<wf pos="NN" lemma="dog">dog</wf>`},
		{"escapes text", `<punc>&</punc>`, `<punc>&amp;</punc>`},
		{"closes inner elements", `<a><b>x</a>`, `<a><b>x</b></a>`},
		{"drops stray end tags", `<a>x</c></a>`, `<a>x</a>`},
		{"closes at end", `<a><b>x`, `<a><b>x</b></a>`},
		{"self closing", `<a><br/></a>`, `<a><br/></a>`},
		{"drops declaration", `<?xml version="1.0"?><a/>`, `<a/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Repair(strings.NewReader(tt.in), &buf); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepairParses(t *testing.T) {
	var buf bytes.Buffer
	if err := Repair(strings.NewReader(soup), &buf); err != nil {
		t.Fatal(err)
	}

	sentences, err := corpus.Parse(&buf)
	if err != nil {
		t.Fatalf("repaired markup must parse: %v", err)
	}
	if len(sentences) != 1 || sentences[0].Id != "br-a01-1-1" {
		t.Fatalf("unexpected sentences %+v", sentences)
	}
	if tk := sentences[0].Tokens[0]; tk.Text != "AT&T" || tk.SenseKey != "AT&T%1:14:00::" {
		t.Errorf("unexpected token %+v", tk)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "br-a01")
	if err := os.WriteFile(src, []byte(soup), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "fixed", "brown1", "br-a01.xml")
	if err := File(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := corpus.ParseFile(dst); err != nil {
		t.Errorf("unexpected parse error: %v", err)
	}

	if err := File(src, dst); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}
