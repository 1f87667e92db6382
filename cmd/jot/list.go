package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot/pkg/core"
)

var (
	listJSON  bool
	listQuery string
	listTag   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(loadConfig())

		notes, err := svc.ListNotes(context.Background(), core.Query{Text: listQuery, Tag: listTag})
		if err != nil {
			fatal("Error listing notes", err)
		}

		if listJSON {
			if notes == nil {
				notes = []core.Note{}
			}
			if err := writeJSON(os.Stdout, notes); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}
		writeNoteList(os.Stdout, notes)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter by title substring (case-insensitive)")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter notes by tag")
}
