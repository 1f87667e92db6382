package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot/pkg/core"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read a note",
	Long:  `Read a note by its ID. Prints the content by default, or the whole note with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(loadConfig())

		note, err := svc.GetNote(context.Background(), args[0])
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Note not found: %s\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fatal("Error reading note", err)
		}

		if readJSON {
			if err := writeJSON(os.Stdout, note); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}
		fmt.Print(note.Content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
