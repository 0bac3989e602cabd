package sessionconfig

import (
	"bufio"
	"os"
	"strings"
)

// History is an in-memory, append-only command history backed by a
// newline-delimited file (spec SPEC_FULL.md §6 "Persisted state": "one
// line per entry"). The CLI front-end owns the only writer; this module
// only formats/parses the file, matching §1's "history persistence" being
// a thin front-end collaborator.
type History struct {
	Path    string
	Entries []string
}

// LoadHistory reads path's newline-delimited entries, if it exists. A
// missing file yields an empty History rather than an error.
func LoadHistory(path string) (*History, error) {
	h := &History{Path: path}
	if path == "" {
		return h, nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.Entries = append(h.Entries, line)
	}
	return h, scanner.Err()
}

// Append records line in memory; Save persists it.
func (h *History) Append(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	h.Entries = append(h.Entries, line)
}

// Save rewrites h.Path with every recorded entry, one per line. A blank
// Path is a no-op: history persistence is optional (spec SPEC_FULL.md
// §6 "the CLI's command history file").
func (h *History) Save() error {
	if h.Path == "" {
		return nil
	}
	f, err := os.Create(h.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range h.Entries {
		if _, err := w.WriteString(e + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
