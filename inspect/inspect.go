package inspect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/semalign/render"
	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/storage"
)

const (
	completionThreshold = 2

	defaultUnresolved = 20
)

var commands = []prompt.Suggest{
	{Text: "ls", Description: "list docs, optionally matching a string"},
	{Text: "doc", Description: "show the records of a doc"},
	{Text: "s", Description: "show a sentence by id"},
	{Text: "unk", Description: "show the most frequent unresolved keys"},
	{Text: "quit", Description: "exit"},
}

// Handler browses a record store from an interactive prompt.
type Handler struct {
	Repo     storage.RecordReader
	Renderer *render.Renderer
	Out      io.Writer

	titles []string
}

func NewHandler(repo storage.RecordReader, r *render.Renderer) *Handler {
	return &Handler{
		Repo:     repo,
		Renderer: r,
		Out:      os.Stdout,
	}
}

func (h *Handler) Run() error {
	docs, err := h.Repo.List("")
	if err != nil {
		return err
	}
	for _, d := range docs {
		h.titles = append(h.titles, d.Title)
	}

	fmt.Fprintln(h.Out, "🔑 Ctrl+X: Toggle prefix, Ctrl+F: next Format, 🔧 quit")

	// initialize prompt history
	history := []string{}

	for {
		in := prompt.Input("      🔖 ", h.completer,
			prompt.OptionTitle("semalign inspect"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlF,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextFormat()
					fmt.Fprintln(h.Out, "Format set to: "+h.Renderer.Format)
				}}),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.NextPrefix()
					fmt.Fprintln(h.Out, "Prefix set to "+fmt.Sprintf("%t", h.Renderer.HasPrefix))
				}}),
		)

		history = append(history, in)

		quit, err := h.Exec(in)
		if quit {
			return nil
		}
		if err != nil {
			fmt.Fprintf(h.Out, "Error: %v\n", err)
		}
	}
}

// Exec runs one prompt line. A line that is not a command is looked up as a
// doc title, then as a sentence id.
func (h *Handler) Exec(in string) (quit bool, err error) {
	fields := strings.Fields(in)
	if len(fields) == 0 {
		return false, nil
	}

	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "ls":
		return false, h.list(arg)
	case "doc":
		if arg == "" {
			return false, errors.New("doc needs a title")
		}
		return false, h.doc(arg)
	case "s":
		if arg == "" {
			return false, errors.New("s needs a sentence id")
		}
		return false, h.sentence(arg)
	case "unk":
		n := defaultUnresolved
		if arg != "" {
			if n, err = strconv.Atoi(arg); err != nil {
				return false, fmt.Errorf("invalid number %q", arg)
			}
		}
		return false, h.unresolved(n)
	}

	err = h.doc(fields[0])
	if !errors.Is(err, storage.ErrNotFound) {
		return false, err
	}
	return false, h.sentence(fields[0])
}

func (h *Handler) list(match string) error {
	docs, err := h.Repo.List(match)
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Fprintf(h.Out, "%-12s %s\n", d.Corpus, d.Title)
	}
	return nil
}

func (h *Handler) doc(title string) error {
	doc, err := h.Repo.Read(title)
	if err != nil {
		return err
	}
	return h.Renderer.Render(doc.Records)
}

func (h *Handler) sentence(id string) error {
	rec, err := h.Repo.Sentence(id)
	if err != nil {
		return err
	}
	return h.Renderer.Render([]sent.Record{rec})
}

func (h *Handler) unresolved(n int) error {
	list, err := h.Repo.Unresolved()
	if err != nil {
		return err
	}
	for i, u := range list {
		if i == n {
			break
		}
		fmt.Fprintf(h.Out, "%6d %-30s %s\n", u.Count, u.Key, u.Lemma)
	}
	return nil
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	befCursor := in.TextBeforeCursor()

	// Only one character in line
	if "" == befCursor {
		return []prompt.Suggest{}
	}

	tokens := strings.Split(befCursor, " ")
	if len(tokens) == 1 {
		s := prompt.FilterHasPrefix(commands, tokens[0], false)
		if len(tokens[0]) >= completionThreshold {
			s = append(s, h.completeTitle(tokens[0])...)
		}
		return s
	}

	if len(tokens) == 2 && tokens[0] == "doc" {
		return h.completeTitle(tokens[1])
	}

	return []prompt.Suggest{}
}

func (h *Handler) completeTitle(token string) (s []prompt.Suggest) {
	for _, title := range h.titles {
		if strings.HasPrefix(title, token) {
			s = append(s, prompt.Suggest{Text: title, Description: "📄 doc"})
		}
	}

	return s
}
