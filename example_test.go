package jot_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/jot"
)

// Example_basic creates a note in a temporary directory and lists it back.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "jot-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	clock := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc, err := jot.New(tmpDir, jot.WithClock(func() time.Time { return clock }))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	note, err := svc.CreateNote(ctx, jot.NoteInput{Title: "  hello  ", Tags: []string{"demo"}})
	if err != nil {
		log.Fatal(err)
	}

	notes, err := svc.ListNotes(ctx, jot.Query{Tag: "demo"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(note.ID, note.Title, len(notes))
	// Output:
	// 20240102030405000000 hello 1
}

// Example_query shows the case-insensitive title filter.
func Example_query() {
	tmpDir, err := os.MkdirTemp("", "jot-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := jot.New(tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for _, title := range []string{"Shopping list", "Meeting notes", "shopping ideas"} {
		if _, err := svc.CreateNote(ctx, jot.NoteInput{Title: title}); err != nil {
			log.Fatal(err)
		}
	}

	notes, err := svc.ListNotes(ctx, jot.Query{Text: "SHOPPING"})
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range notes {
		fmt.Println(n.Title)
	}
	// Output:
	// shopping ideas
	// Shopping list
}
