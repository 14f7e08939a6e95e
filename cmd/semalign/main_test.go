package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revelaction/semalign/pipeline"
)

const tagfile = `<contextfile concordance="brown">
<context filename="br-a01" paras="yes">
<p pnum="1">
<s snum="1">
<wf cmd="ignore" pos="DT">The</wf>
<wf cmd="done" pos="NN" lemma="dog" wnsn="1" lexsn="1:05:00::">dog</wf>
<punc>,</punc>
<wf cmd="done" pos="VB" lemma="run" wnsn="1" lexsn="2:38:99::">ran</wf>
<punc>.</punc>
</s>
</p>
</context>
</contextfile>
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(UI{Out: &out, Err: &errOut}).Run(append([]string{"semalign"}, args...))
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupCorpus returns the root of a one file corpus and a tab separated
// inventory knowing only "dog".
func setupCorpus(t *testing.T) (root, inv string) {
	t.Helper()
	dir := t.TempDir()
	root = filepath.Join(dir, "semcor")
	writeFile(t, filepath.Join(root, "brown1", "tagfiles", "br-a01"), tagfile)

	inv = filepath.Join(dir, "senses.tsv")
	writeFile(t, inv, "# key\tid\ndog%1:05:00::\t02084071-n\n")
	return root, inv
}

func TestConvertJSONL(t *testing.T) {
	root, inv := setupCorpus(t)
	store := filepath.Join(t.TempDir(), "out")

	out, _, err := run(t, "convert", "--no-progress", "--keep-unresolved", "--store", store, "--inventory", inv, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "files 1, docs 1, existing 0, failed 0") {
		t.Errorf("unexpected report %q", out)
	}
	if !strings.Contains(out, "annotations 2") || !strings.Contains(out, "sense-not-found 1") {
		t.Errorf("unexpected report %q", out)
	}

	out, _, err = run(t, "doc", "--store", store)
	if err != nil || !strings.Contains(out, "br-a01") {
		t.Errorf("unexpected doc list %q %v", out, err)
	}

	out, _, err = run(t, "doc", "--store", store, "--format", "sense", "br-a01")
	if err != nil || !strings.Contains(out, "The dog/02084071-n, ran/run%2:38:99::.") {
		t.Errorf("unexpected doc %q %v", out, err)
	}

	out, _, err = run(t, "sentence", "--store", store, "br-a01-1-1")
	if err != nil || !strings.Contains(out, "4\t7\t02084071-n\tdog") {
		t.Errorf("unexpected sentence %q %v", out, err)
	}

	out, _, err = run(t, "unk", "--store", store)
	if err != nil || !strings.Contains(out, "02084071-n\tdog\t1\n") || !strings.Contains(out, "run%2:38:99::\trun\t1\n") {
		t.Errorf("unexpected concepts %q %v", out, err)
	}
	if !strings.Contains(out, "Known: 1 concepts, 1 instances\nUnknown: 1 concepts, 1 instances\n") {
		t.Errorf("unexpected totals %q", out)
	}

	out, _, err = run(t, "stat", "--store", store)
	if err != nil || !strings.Contains(out, "Num docs 1, num sentences 1, num tokens 5") {
		t.Errorf("unexpected stat %q %v", out, err)
	}

	// second run finds the output in place
	out, _, err = run(t, "convert", "--no-progress", "--store", store, "--inventory", inv, root)
	if err != nil || !strings.Contains(out, "docs 0, existing 1") {
		t.Errorf("unexpected report %q %v", out, err)
	}
}

func TestUnkDefaultStore(t *testing.T) {
	root, inv := setupCorpus(t)
	store := filepath.Join(t.TempDir(), "records.db")

	if _, _, err := run(t, "convert", "--no-progress", "--store", store, "--inventory", inv, root); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "unk", "--store", store)
	if err != nil {
		t.Fatal(err)
	}

	want := "# Known concepts\nsynset\tlemma\tcount\n02084071-n\tdog\t1\n" +
		"# Unknown concepts\nsensekey\tlemma\tcount\n" +
		"no unresolved annotations stored. Convert with --keep-unresolved to record them\n" +
		"# Total\nKnown: 1 concepts, 1 instances\nUnknown: 0 concepts, 0 instances\n"
	if out != want {
		t.Errorf("unk = %q, want %q", out, want)
	}
}

func TestConvertSQLite(t *testing.T) {
	root, tsv := setupCorpus(t)
	dir := t.TempDir()
	inv := filepath.Join(dir, "senses.db")
	store := filepath.Join(dir, "records.db")

	out, _, err := run(t, "senses", "import", "--from", tsv, "--to", inv)
	if err != nil || !strings.Contains(out, "imported 1 senses") {
		t.Fatalf("unexpected import %q %v", out, err)
	}

	for i, want := range []pipeline.Report{{Docs: 1, Annotations: 1}, {Existing: 1, Annotations: 1}} {
		out, _, err = run(t, "convert", "--no-progress", "--json", "--store", store, "--inventory", inv, root)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}

		var rep pipeline.Report
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("run %d: invalid report %q: %v", i, out, err)
		}
		if rep.Docs != want.Docs || rep.Existing != want.Existing || rep.Annotations != want.Annotations || rep.RunId == "" {
			t.Errorf("run %d: unexpected report %+v", i, rep)
		}
	}

	out, _, err = run(t, "doc", "--store", store, "--json", "br-a01")
	if err != nil || !strings.Contains(out, `"sid":"br-a01-1-1"`) {
		t.Errorf("unexpected doc %q %v", out, err)
	}
}

func TestConvertTSV(t *testing.T) {
	root, inv := setupCorpus(t)
	store := filepath.Join(t.TempDir(), "tab")

	if _, _, err := run(t, "convert", "--no-progress", "--format", "tsv", "--name", "brown", "--store", store, "--inventory", inv, root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store, "brown.tag"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "br-a01-1-1\t4\t7\t02084071-n\tdog") {
		t.Errorf("unexpected tag file %q", data)
	}
}

func TestConvertErrors(t *testing.T) {
	root, inv := setupCorpus(t)
	store := filepath.Join(t.TempDir(), "out")

	tests := []struct {
		name string
		args []string
	}{
		{"no root", []string{"convert", "--store", store, "--inventory", inv}},
		{"no store", []string{"convert", "--inventory", inv, root}},
		{"no files", []string{"convert", "--no-progress", "--store", store, "--inventory", inv, t.TempDir()}},
		{"no inventory", []string{"convert", "--no-progress", "--store", store, "--inventory", filepath.Join(root, "none.tsv"), root}},
		{"bad format", []string{"convert", "--no-progress", "--format", "xml", "--store", store, "--inventory", inv, root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SEMALIGN_STORE", "")
			if _, _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConvertLimit(t *testing.T) {
	root, inv := setupCorpus(t)
	writeFile(t, filepath.Join(root, "brown2", "tagfiles", "br-e01"), strings.ReplaceAll(tagfile, "br-a01", "br-e01"))

	out, _, err := run(t, "convert", "--no-progress", "--limit", "1", "--store", filepath.Join(t.TempDir(), "out"), "--inventory", inv, root)
	if err != nil || !strings.Contains(out, "files 1, docs 1") {
		t.Errorf("unexpected report %q %v", out, err)
	}
}

func TestFix(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "fixed")
	writeFile(t, filepath.Join(src, "brown1", "br-a01"), "<s snum=1><wf pos=DT>The<punc>.</punc></s>")

	out, _, err := run(t, "fix", "--no-progress", src, dst)
	if err != nil || !strings.Contains(out, "repaired 1 files, 0 already present") {
		t.Fatalf("unexpected output %q %v", out, err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "brown1", "br-a01"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `snum="1"`) {
		t.Errorf("attributes must be quoted: %q", data)
	}

	out, _, err = run(t, "fix", "--no-progress", src, dst)
	if err != nil || !strings.Contains(out, "repaired 0 files, 1 already present") {
		t.Errorf("unexpected output %q %v", out, err)
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semalign.yaml")
	writeFile(t, path, "log:\n  format: xml\n")

	if _, _, err := run(t, "--config", path, "version"); err == nil {
		t.Error("expected error for invalid log format")
	}

	writeFile(t, path, "log:\n  format: json\n")
	if _, _, err := run(t, "--config", path, "version"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil || out != "semalign version dev (commit: none)\n" {
		t.Errorf("unexpected version %q %v", out, err)
	}
}

func TestCopy(t *testing.T) {
	root, inv := setupCorpus(t)
	dir := t.TempDir()
	store := filepath.Join(dir, "out")
	db := filepath.Join(dir, "records.db")

	if _, _, err := run(t, "convert", "--no-progress", "--store", store, "--inventory", inv, root); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "copy", "--no-progress", "--from", store, "--to", db)
	if err != nil || !strings.Contains(out, "copied 1 docs") {
		t.Fatalf("unexpected output %q %v", out, err)
	}

	out, _, err = run(t, "copy", "--no-progress", "--from", store, "--to", db)
	if err != nil || !strings.Contains(out, "copied 0 docs") || !strings.Contains(out, "1 already present") {
		t.Errorf("unexpected output %q %v", out, err)
	}

	out, _, err = run(t, "sentence", "--store", db, "br-a01-1-1")
	if err != nil || !strings.Contains(out, "The dog, ran.") {
		t.Errorf("unexpected sentence %q %v", out, err)
	}
}

func TestBash(t *testing.T) {
	out, _, err := run(t, "bash")
	if err != nil || !strings.Contains(out, "complete -o bashdefault -o default -F _semalign_autocomplete semalign") {
		t.Errorf("unexpected script %q %v", out, err)
	}
}
