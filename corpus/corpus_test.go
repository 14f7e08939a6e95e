package corpus

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	sent "github.com/revelaction/semalign/sentence"
)

const sample = `<contextfile concordance="brown">
<context filename="br-a01" paras="yes">
<p pnum="1">
<s snum="1">
<wf cmd="ignore" pos="DT">The</wf>
<wf cmd="done" rdf="group" pos="NNP" lemma="group" wnsn="1" lexsn="1:03:00::" pn="group">Fulton_County_Grand_Jury</wf>
<wf cmd="done" pos="VB" lemma="say" wnsn="1" lexsn="2:32:00::">said</wf>
<punc>,</punc>
<wf cmd="done" pos="JJ" lemma="long" wnsn="2" lexsn="3:00:02::|3:00:01::">long</wf>
<punc>.</punc>
</s>
<s snum="2">
<wf cmd="ignore" pos="PRP">It</wf>
<wf cmd="done" pos="VB" lemma="be" wnsn="1" lexsn="2:42:03::">was</wf>
<punc>.</punc>
</s>
</p>
<p pnum="2">
<s snum="3">
<wf cmd="ignore" pos="UH">Yes</wf>
</s>
</p>
</context>
</contextfile>
`

func TestParse(t *testing.T) {
	sentences, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(sentences))
	}

	ids := []string{sentences[0].Id, sentences[1].Id, sentences[2].Id}
	if want := []string{"br-a01-1-1", "br-a01-1-2", "br-a01-2-3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}

	s := sentences[0]
	if len(s.Tokens) != 6 {
		t.Fatalf("expected 6 tokens, got %d", len(s.Tokens))
	}

	jury := s.Tokens[1]
	if jury.Text != "Fulton_County_Grand_Jury" || jury.Lemma != "group" || jury.Relation != "group" {
		t.Errorf("unexpected token %+v", jury)
	}
	if jury.SenseKey != "group%1:03:00::" {
		t.Errorf("unexpected sense key %q", jury.SenseKey)
	}
	if jury.Attrs["pos"] != "NNP" || jury.Attrs["pn"] != "group" {
		t.Errorf("unexpected attrs %v", jury.Attrs)
	}
	if _, ok := jury.Attrs["lemma"]; ok {
		t.Error("lemma must not be duplicated in attrs")
	}

	if s.Tokens[0].HasSense() {
		t.Error("word-form without lexsn must not have a sense key")
	}

	if s.Tokens[3].Kind != sent.Punctuation || s.Tokens[3].Text != "," {
		t.Errorf("unexpected punctuation %+v", s.Tokens[3])
	}

	if got := s.Tokens[4].SenseKey; got != "long%3:00:02:: 3:00:01::" {
		t.Errorf("unexpected multi sense key %q", got)
	}
}

func TestParseMissingContext(t *testing.T) {
	sentences, err := Parse(strings.NewReader(`<root><s snum="7"><wf>x</wf></s></root>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(sentences) != 1 || sentences[0].Id != "n/a-n/a-7" {
		t.Errorf("unexpected sentences %+v", sentences)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader(`<context><s snum="1"><wf>x</s></context>`))
	if err == nil {
		t.Fatal("expected error for malformed markup")
	}
}

func TestParseFileXz(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "brown1", "tagfiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "br-a01.xml.xz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(sample)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	sentences, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sentences) != 3 {
		t.Errorf("expected 3 sentences, got %d", len(sentences))
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		path   string
		title  string
		corpus string
	}{
		{"semcor/brown1/tagfiles/br-a01", "br-a01", "brown1"},
		{"semcor/brownv/tagfiles/br-e22.xml.xz", "br-e22", "brownv"},
		{"fixed/br-k12.xml", "br-k12", "fixed"},
		{"br-k12.xml", "br-k12", ""},
	}

	for _, tt := range tests {
		title, corpus := Name(tt.path)
		if title != tt.title || corpus != tt.corpus {
			t.Errorf("Name(%q) = %q, %q, want %q, %q", tt.path, title, corpus, tt.title, tt.corpus)
		}
	}
}

func TestFileSet(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"brown1/tagfiles/br-a02", "brown1/tagfiles/br-a01", "brown2/tagfiles/br-e01"} {
		path := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fs := NewFileSet(root)
	files, err := fs.Files()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rel []string
	for _, f := range files {
		rel = append(rel, fs.Rel(f))
	}

	want := []string{
		filepath.Join("brown1", "tagfiles", "br-a01"),
		filepath.Join("brown1", "tagfiles", "br-a02"),
		filepath.Join("brown2", "tagfiles", "br-e01"),
	}
	if !reflect.DeepEqual(rel, want) {
		t.Errorf("files = %v, want %v", rel, want)
	}
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.xml", "b.txt", "sub/c.xml"} {
		path := filepath.Join(root, name)
		os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := Walk(root, "*.xml")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %v", files)
	}
}
