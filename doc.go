// Package jot is the composition root of a small single-user note store.
//
// Notes live one file per note in a directory. The core domain
// (pkg/core) is isolated from persistence: the default adapter
// (pkg/adapters/fs) writes indented JSON files atomically, parses them in
// parallel behind an mtime cache, and can optionally commit every change to
// git. An optional login guard (pkg/auth) protects mutations and throttles
// repeated failures with a sliding window.
//
// Usage:
//
//	svc, err := jot.New("./data/notes",
//		jot.WithLogger(logger),
//	)
//
//	note, err := svc.CreateNote(ctx, jot.NoteInput{Title: "groceries", Tags: []string{"home"}})
//	notes, err := svc.ListNotes(ctx, jot.Query{Tag: "home"})
package jot
