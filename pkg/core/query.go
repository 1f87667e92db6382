package core

import (
	"sort"
	"strings"
)

// Query selects and orders notes for ListNotes.
// Empty fields disable the corresponding filter.
type Query struct {
	// Text keeps notes whose title contains it, case-insensitively.
	Text string
	// Tag keeps notes that carry it as an exact tag.
	Tag string
}

// Match reports whether n satisfies every filter of q.
func (q Query) Match(n Note) bool {
	if q.Text != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(q.Text)) {
		return false
	}
	if q.Tag != "" && !n.HasTag(q.Tag) {
		return false
	}
	return true
}

// Apply filters notes in place and sorts the survivors by SortNotes order.
func (q Query) Apply(notes []Note) []Note {
	filtered := notes[:0]
	for _, n := range notes {
		if q.Match(n) {
			filtered = append(filtered, n)
		}
	}
	SortNotes(filtered)
	return filtered
}

// SortNotes orders notes newest first by LastModified, breaking ties by
// id descending so equal timestamps still give a stable order.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		ti, tj := notes[i].LastModified(), notes[j].LastModified()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return notes[i].ID > notes[j].ID
	})
}
