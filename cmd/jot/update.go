package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot"
	"github.com/aretw0/jot/pkg/core"
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace the title, content and tags of a note",
	Long: `Replace the title, content and tags of a note. Fields that are not
given are cleared, the same as over the HTTP API.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(loadConfig())

		content, err := readContent(noteContent, os.Stdin)
		if err != nil {
			fatal("Error reading content", err)
		}

		ctx := context.Background()
		if changeReason != "" {
			ctx = jot.WithChangeReason(ctx, changeReason)
		}

		note, err := svc.UpdateNote(ctx, args[0], core.NoteInput{Title: noteTitle, Content: content, Tags: noteTags})
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Note not found: %s\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fatal("Error updating note", err)
		}
		fmt.Printf("Note updated: %s (%s)\n", note.ID, note.UpdatedAt)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	addNoteFlags(updateCmd)
}
