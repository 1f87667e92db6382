package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/jot/pkg/adapters/lifecycle"
	"github.com/aretw0/jot/pkg/core"
)

var (
	watchPattern string
	watchTypes   []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print note changes as they happen",
	Long: `Watch the notes directory and print one line per created, modified or
deleted note until interrupted. --pattern narrows the watched file names
with a glob such as "2024*.json"; --type keeps only the given event types.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		types, err := parseEventTypes(watchTypes)
		if err != nil {
			fatal("Invalid --type", err)
		}
		svc := openService(loadConfig())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := svc.Watch(ctx, watchPattern)
		if err != nil {
			fatal("Failed to watch notes directory", err)
		}
		source := lifecycle.NewSource(events, types...)
		if err := source.Start(ctx); err != nil {
			fatal("Failed to start event source", err)
		}

		fmt.Fprintln(os.Stderr, "Watching for changes, press Ctrl+C to stop.")
		for e := range source.Events() {
			when := time.Now()
			if ne, ok := e.(core.Event); ok {
				when = time.Unix(ne.Timestamp, 0)
			}
			fmt.Printf("%s %s\n", when.Format(time.RFC3339), e)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchPattern, "pattern", "p", "", "Glob for note file names")
	watchCmd.Flags().StringSliceVarP(&watchTypes, "type", "t", nil, "Event types to show (create, modify, delete)")
}

func parseEventTypes(names []string) ([]core.EventType, error) {
	var types []core.EventType
	for _, name := range names {
		t := core.EventType(strings.ToUpper(strings.TrimSpace(name)))
		switch t {
		case core.EventCreate, core.EventModify, core.EventDelete:
			types = append(types, t)
		default:
			return nil, fmt.Errorf("unknown event type %q", name)
		}
	}
	return types, nil
}
