package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jot/pkg/core"
)

func collect(t *testing.T, s *NoteSource) []string {
	t.Helper()
	var got []string
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-s.Events():
			if !ok {
				return got
			}
			got = append(got, e.String())
		case <-timeout:
			t.Fatal("source did not close")
		}
	}
}

func TestNoteSource_ForwardsAll(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, ID: "a"}
	in <- core.Event{Type: core.EventModify, ID: "a"}
	in <- core.Event{Type: core.EventDelete, ID: "a"}
	close(in)

	s := NewSource(in)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"CREATE a", "MODIFY a", "DELETE a"}, collect(t, s))
}

func TestNoteSource_FiltersTypes(t *testing.T) {
	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, ID: "a"}
	in <- core.Event{Type: core.EventModify, ID: "a"}
	in <- core.Event{Type: core.EventDelete, ID: "b"}
	close(in)

	s := NewSource(in, core.EventDelete)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"DELETE b"}, collect(t, s))
}

func TestNoteSource_StopsOnCancel(t *testing.T) {
	in := make(chan core.Event, 1)
	in <- core.Event{Type: core.EventCreate, ID: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSource(in)
	require.NoError(t, s.Start(ctx))
	first := <-s.Events()
	assert.Equal(t, "CREATE a", first.String())

	cancel()
	assert.Empty(t, collect(t, s))
}
