package sense

// Corrections rewrites sense keys known to be malformed in the corpus.
type Corrections map[string]string

// DefaultCorrections returns the built-in key corrections.
func DefaultCorrections() Corrections {
	return Corrections{
		"n't%4:02:00::": "not%4:02:00::",
	}
}

func (c Corrections) Apply(key string) string {
	if fixed, ok := c[key]; ok {
		return fixed
	}
	return key
}

// Pair is a sense key together with the rdf relation of its word-form.
type Pair struct {
	Key      string `yaml:"key"`
	Relation string `yaml:"relation"`
}

// Filter recognizes annotations that carry no semantic signal: generic
// placeholder senses given to proper names and the copula.
type Filter struct {
	Pairs  map[Pair]bool
	Lemmas map[string]bool
}

// DefaultPairs are the placeholder senses given to proper names.
func DefaultPairs() []Pair {
	return []Pair{
		{"person%1:03:00::", "person"},
		{"group%1:03:00::", "group"},
		{"location%1:03:00::", "location"},
	}
}

// DefaultFilter returns the built-in nonsense block-list.
func DefaultFilter() *Filter {
	return NewFilter(DefaultPairs(), []string{"be"})
}

func NewFilter(pairs []Pair, lemmas []string) *Filter {
	f := &Filter{Pairs: map[Pair]bool{}, Lemmas: map[string]bool{}}
	for _, p := range pairs {
		f.Pairs[p] = true
	}
	for _, l := range lemmas {
		f.Lemmas[l] = true
	}
	return f
}

// Nonsense reports whether the annotation is a placeholder.
func (f *Filter) Nonsense(key, lemma, relation string) bool {
	if f == nil {
		return false
	}
	return f.Pairs[Pair{key, relation}] || f.Lemmas[lemma]
}
