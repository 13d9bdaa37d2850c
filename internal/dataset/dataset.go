// Package dataset reads labelled image lists and writes prediction files.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLengthMismatch is returned when entries and labels differ in length.
var ErrLengthMismatch = errors.New("dataset: entries and labels differ in length")

// Entry is one image of a list. Path is already resolved against the list's directory.
type Entry struct {
	Path  string
	Label int
}

// LoadFileList reads whitespace-separated "filename label" pairs from path.
func LoadFileList(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file list: %w", err)
	}
	defer f.Close()

	entries, err := ParseFileList(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseFileList reads pairs from r and joins each filename onto dir.
// Pairs may span lines; a trailing filename without a label is an error.
func ParseFileList(r io.Reader, dir string) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	var entries []Entry
	for sc.Scan() {
		name := sc.Text()
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("entry %d: missing label for %q", len(entries), name)
		}
		label, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("entry %d: invalid label %q", len(entries), sc.Text())
		}
		entries = append(entries, Entry{Path: filepath.Join(dir, name), Label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// SavePredictions writes "path label" lines, one per entry.
func SavePredictions(path string, entries []Entry, labels []int) error {
	if len(entries) != len(labels) {
		return fmt.Errorf("%w: %d entries, %d labels", ErrLengthMismatch, len(entries), len(labels))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create predictions file: %w", err)
	}

	w := bufio.NewWriter(f)
	for i, e := range entries {
		fmt.Fprintf(w, "%s %d\n", e.Path, labels[i])
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Abs returns a copy of entries with every path made absolute.
func Abs(entries []Entry) ([]Entry, error) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		p, err := filepath.Abs(e.Path)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = Entry{Path: p, Label: e.Label}
	}
	return out, nil
}

// Labels returns the label of every entry in order.
func Labels(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

// Rel returns e.Path relative to root, or e.Path when it lies outside root.
func (e Entry) Rel(root string) string {
	rel, err := filepath.Rel(root, e.Path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return e.Path
	}
	return rel
}
