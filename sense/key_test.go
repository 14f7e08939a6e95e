package sense

import (
	"errors"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  string
		want Key
	}{
		{"dog%1:05:00::", Key{Lemma: "dog", SsType: 1, LexFilenum: 5, LexId: 0}},
		{"long%3:00:02::", Key{Lemma: "long", SsType: 3, LexFilenum: 0, LexId: 2}},
		{"ready%5:00:00:prepared:01", Key{Lemma: "ready", SsType: 5, HeadWord: "prepared", HeadId: 1}},
		{"n't%4:02:00::", Key{Lemma: "n't", SsType: 4, LexFilenum: 2}},
		{"new york%1:15:00::", Key{Lemma: "new york", SsType: 1, LexFilenum: 15}},
		{"go%2:38:08::", Key{Lemma: "go", SsType: 2, LexFilenum: 38, LexId: 8}},
	}

	for _, tt := range tests {
		got, err := ParseKey(tt.key)
		if err != nil {
			t.Errorf("ParseKey(%q): unexpected error %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %+v, want %+v", tt.key, got, tt.want)
		}
		if got.String() != tt.key {
			t.Errorf("String() = %q, want %q", got.String(), tt.key)
		}
	}
}

func TestParseKeyMalformed(t *testing.T) {
	keys := []string{
		"",
		"dog",
		"dog%1:05",
		"dog%1:05:00",
		"%1:05:00::",
		"dog%9:05:00::",
		"dog%x:05:00::",
		"dog%1:05:00:head:",
		"dog%1:05:00::01",
	}

	for _, k := range keys {
		_, err := ParseKey(k)
		if err == nil {
			t.Errorf("ParseKey(%q): expected error", k)
			continue
		}
		if !errors.Is(err, ErrMalformedKey) {
			t.Errorf("ParseKey(%q): expected ErrMalformedKey, got %v", k, err)
		}
		var me *MalformedKeyError
		if !errors.As(err, &me) || me.Key != k {
			t.Errorf("ParseKey(%q): unexpected error value %v", k, err)
		}
	}
}

func TestFirstKey(t *testing.T) {
	if got := FirstKey("long%3:00:02::;long%3:00:01::"); got != "long%3:00:02::" {
		t.Errorf("unexpected first key %q", got)
	}
	if got := FirstKey("dog%1:05:00::"); got != "dog%1:05:00::" {
		t.Errorf("unexpected first key %q", got)
	}
}

func TestSatellite(t *testing.T) {
	k, err := ParseKey("ready%5:00:00:prepared:01")
	if err != nil {
		t.Fatal(err)
	}
	if !k.Satellite() {
		t.Error("expected satellite")
	}
}
