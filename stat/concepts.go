package stat

import (
	"sort"

	sent "github.com/revelaction/semalign/sentence"
)

// Concept is a sense tag with the lemma it was annotated on.
type Concept struct {
	Tag   string
	Lemma string
	Count int
}

// Concepts counts the annotations of docs by concept, separating the senses
// with a canonical id (known) from the ones kept with their key (unknown).
type Concepts struct {
	known   map[Concept]int
	unknown map[Concept]int

	KnownInstances   int
	UnknownInstances int
}

func NewConcepts() *Concepts {
	return &Concepts{known: map[Concept]int{}, unknown: map[Concept]int{}}
}

func (c *Concepts) Aggregate(doc sent.Doc) {
	for _, rec := range doc.Records {
		for _, a := range rec.Annotations {
			if a.Sense.Resolved() {
				c.known[Concept{Tag: a.Sense.CanonicalId, Lemma: a.Sense.Lemma}]++
				c.KnownInstances++
				continue
			}
			c.unknown[Concept{Tag: a.Sense.LookupKey(), Lemma: a.Sense.Lemma}]++
			c.UnknownInstances++
		}
	}
}

// Known returns the known concepts, most frequent first.
func (c *Concepts) Known() []Concept {
	return sortConcepts(c.known)
}

// Unknown returns the unknown concepts, most frequent first.
func (c *Concepts) Unknown() []Concept {
	return sortConcepts(c.unknown)
}

func sortConcepts(counts map[Concept]int) []Concept {
	list := make([]Concept, 0, len(counts))
	for k, n := range counts {
		k.Count = n
		list = append(list, k)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		if list[i].Tag != list[j].Tag {
			return list[i].Tag < list[j].Tag
		}
		return list[i].Lemma < list[j].Lemma
	})
	return list
}
