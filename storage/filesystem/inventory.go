package filesystem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/revelaction/semalign/sense"
)

// ReadInventory reads a sense map of "key<TAB>id" lines. Blank lines and
// lines starting with # are ignored.
func ReadInventory(r io.Reader) (sense.MapInventory, error) {
	inv := sense.MapInventory{}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, id, ok := strings.Cut(text, "\t")
		key, id = strings.TrimSpace(key), strings.TrimSpace(id)
		if !ok || key == "" || id == "" {
			return nil, fmt.Errorf("line %d: expected key and id separated by a tab", line)
		}
		inv[key] = id
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	return inv, nil
}

// LoadInventory reads the sense map file at path.
func LoadInventory(path string) (sense.MapInventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inv, err := ReadInventory(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}
