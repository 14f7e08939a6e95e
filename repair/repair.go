// Package repair turns the tag soup of raw corpus files (unquoted attributes,
// bare ampersands, unclosed elements) into well-formed XML.
package repair

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

var ErrExists = errors.New("output file exists")

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func writeTag(w *bufio.Writer, tk html.Token, selfClosing bool) {
	w.WriteByte('<')
	w.WriteString(tk.Data)
	for _, a := range tk.Attr {
		fmt.Fprintf(w, ` %s="%s"`, a.Key, xmlEscaper.Replace(a.Val))
	}
	if selfClosing {
		w.WriteByte('/')
	}
	w.WriteByte('>')
}

// Repair reads markup from r and writes well-formed XML to w. End tags close
// every element opened after their start tag. End tags without a start tag
// are dropped. Elements still open at the end of input are closed.
func Repair(r io.Reader, w io.Writer) error {
	z := html.NewTokenizer(r)
	bw := bufio.NewWriter(w)

	var open []string

	closeTo := func(i int) {
		for j := len(open) - 1; j >= i; j-- {
			bw.WriteString("</" + open[j] + ">")
		}
		open = open[:i]
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return err
			}
			closeTo(0)
			return bw.Flush()

		case html.StartTagToken:
			tk := z.Token()
			writeTag(bw, tk, false)
			open = append(open, tk.Data)

		case html.SelfClosingTagToken:
			writeTag(bw, z.Token(), true)

		case html.EndTagToken:
			name := z.Token().Data
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == name {
					closeTo(i)
					break
				}
			}

		case html.TextToken:
			bw.WriteString(xmlEscaper.Replace(string(z.Text())))

		case html.CommentToken:
			data := z.Token().Data
			// the tokenizer reports processing instructions as comments
			if strings.HasPrefix(data, "?") || strings.Contains(data, "--") {
				continue
			}
			bw.WriteString("<!--" + data + "-->")
		}
	}
}

// File repairs the file src into dst, creating the directories of dst. An
// existing dst is not overwritten: ErrExists is returned.
func File(src, dst string) (err error) {
	if _, err := os.Stat(dst); err == nil {
		return ErrExists
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	return Repair(in, out)
}
