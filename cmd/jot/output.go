package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/jot/pkg/core"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeNoteList prints one line per note: id, updated time, title and tags.
func writeNoteList(w io.Writer, notes []core.Note) {
	for _, n := range notes {
		line := fmt.Sprintf("%s  %s  %s", n.ID, n.LastModified().Format("2006-01-02 15:04"), n.Title)
		if len(n.Tags) > 0 {
			line += "  [" + strings.Join(n.Tags, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}
}

// readContent returns the flag value, or stdin when the value is "-".
func readContent(value string, stdin io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
