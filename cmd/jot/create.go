package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot"
	"github.com/aretw0/jot/pkg/core"
)

var (
	noteTitle    string
	noteContent  string
	noteTags     []string
	changeReason string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Long:  `Create a note. Pass --content - to read the content from stdin.`,
	Args:  cobra.NoArgs,
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

		note, err := svc.CreateNote(ctx, core.NoteInput{Title: noteTitle, Content: content, Tags: noteTags})
		if err != nil {
			fatal("Error creating note", err)
		}
		fmt.Println(note.ID)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	addNoteFlags(createCmd)
}

func addNoteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&noteTitle, "title", "t", "", "Note title")
	cmd.Flags().StringVar(&noteContent, "content", "", "Note content, or - for stdin")
	cmd.Flags().StringSliceVar(&noteTags, "tag", nil, "Tag (repeatable or comma separated)")
	cmd.Flags().StringVarP(&changeReason, "message", "m", "", "Commit message when versioning is enabled")
}
