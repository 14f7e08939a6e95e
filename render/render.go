package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	sent "github.com/revelaction/semalign/sentence"
)

const (
	Defaultformat = "text"
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

// RecordRenderer writes aligned records somewhere.
type RecordRenderer interface {
	Render(recs []sent.Record) error
}

func SupportedFormats() []string {
	return []string{"text", "tag", "sense", "aggr"}
}

type Renderer struct {
	HasColor bool

	HasPrefix bool

	// Format determines how a record is printed
	//
	// text: the rendered text, annotated spans highlighted
	// tag: one line per annotation, with offsets, sense and surface
	// sense: the text with the sense tag after each annotated span
	// aggr: the number of annotations per sense tag over all records
	Format string

	Out io.Writer
}

var _ RecordRenderer = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{Format: Defaultformat, Out: os.Stdout}
}

// Render prints recs in the current format.
func (r *Renderer) Render(recs []sent.Record) error {
	if r.Format == "aggr" {
		return r.aggrTags(recs)
	}

	for _, rec := range recs {
		if err := r.Record(rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Record(rec sent.Record) error {
	prefix := r.buildPrefix(rec)

	switch r.Format {
	case "tag":
		for i, a := range rec.Annotations {
			_, err := fmt.Fprintf(r.Out, "%s%d\t%d\t%s\t%s\n", prefix, a.Span.Start, a.Span.End, r.color(a.Sense.Tag(), a.Sense), rec.Surface(i))
			if err != nil {
				return err
			}
		}
		return nil
	case "sense":
		_, err := fmt.Fprintf(r.Out, "%s%s\n", prefix, r.senses(rec))
		return err
	default:
		_, err := fmt.Fprintf(r.Out, "%s%s\n", prefix, r.SentenceString(rec))
		return err
	}
}

// SentenceString returns the text of rec with its annotated spans colored.
func (r *Renderer) SentenceString(rec sent.Record) string {
	return r.markSpans(rec, func(i int, surface string) string {
		if !r.HasColor {
			return surface
		}
		return r.color(surface, rec.Annotations[i].Sense)
	})
}

func (r *Renderer) senses(rec sent.Record) string {
	return r.markSpans(rec, func(i int, surface string) string {
		return surface + "/" + r.color(rec.Annotations[i].Sense.Tag(), rec.Annotations[i].Sense)
	})
}

// markSpans rebuilds the text of rec replacing each annotated span by the
// result of mark. Spans are ordered and do not overlap.
func (r *Renderer) markSpans(rec sent.Record, mark func(i int, surface string) string) string {
	runes := []rune(rec.Text)

	var str strings.Builder
	last := 0
	for i, a := range rec.Annotations {
		sp := a.Span
		if sp.Start < last || sp.End > len(runes) || sp.Start > sp.End {
			continue
		}
		str.WriteString(string(runes[last:sp.Start]))
		str.WriteString(mark(i, string(runes[sp.Start:sp.End])))
		last = sp.End
	}
	str.WriteString(string(runes[last:]))

	return strings.ReplaceAll(str.String(), "\n", " ")
}

// color paints resolved senses green and raw key fallbacks yellow.
func (r *Renderer) color(s string, sense sent.Sense) string {
	if !r.HasColor {
		return s
	}

	if sense.Resolved() {
		return Green256 + s + Off
	}
	return Yellow256 + s + Off
}

func (r *Renderer) buildPrefix(rec sent.Record) string {
	if !r.HasPrefix {
		return ""
	}

	id := fmt.Sprintf("%-20s", rec.Id)
	if r.HasColor {
		id = Grey256 + id + Off
	}
	return fmt.Sprintf("[%s %2d] ✍  ", id, len(rec.Annotations))
}

// NextFormat sets the Renderer Format option to a different one, following
// the SupportedFormats() order.
func (r *Renderer) NextFormat() {

	supported := SupportedFormats()
	for i, format := range supported {
		if format == r.Format {
			switch i {
			case len(supported) - 1:
				r.Format = supported[0]
			default:
				r.Format = supported[i+1]
			}

			return
		}
	}

	r.Format = supported[0]
}

func (r *Renderer) NextPrefix() {

	// toggle
	r.HasPrefix = !r.HasPrefix
}

func (r *Renderer) aggrTags(recs []sent.Record) error {
	counts := map[string]int{}
	for _, rec := range recs {
		for i, a := range rec.Annotations {
			counts[a.Sense.Tag()+" "+strings.ToLower(rec.Surface(i))]++
		}
	}

	// flatten map to use sortSlice
	sl := []struct {
		Num int
		Tag string
	}{}

	for tag, n := range counts {
		sl = append(sl, struct {
			Num int
			Tag string
		}{n, tag})
	}

	sort.SliceStable(sl, func(i, j int) bool {

		// first by num annotations
		if sl[i].Num != sl[j].Num {
			return sl[i].Num > sl[j].Num
		}

		return sl[i].Tag < sl[j].Tag
	})

	var prefix string
	for _, s := range sl {
		if r.HasPrefix {
			prefix = fmt.Sprintf("[%5d] ✍  ", s.Num)
		}

		if _, err := fmt.Fprintf(r.Out, "%s%s\n", prefix, s.Tag); err != nil {
			return err
		}
	}
	return nil
}
