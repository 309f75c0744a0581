package command

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/w1r3catcher/internal/adapter/sink"
	"github.com/jgivc/w1r3catcher/internal/common"
	"github.com/jgivc/w1r3catcher/internal/service/registry"
	"github.com/jgivc/w1r3catcher/internal/storage/settings"
	"github.com/stretchr/testify/require"
)

func newExecutor() (*Executor, settings.Store) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	store := settings.NewMemoryStore()

	return NewExecutor("w1r3catcher", registry.New(store, log), settings.NewLoggingFlag(store, log), log), store
}

func run(t *testing.T, e *Executor, line string) ([]string, error) {
	t.Helper()

	out := sink.NewBuffer("w1r3catcher")
	err := e.Execute(context.Background(), line, out)

	return out.Lines(), err
}

func TestCommandSession(t *testing.T) {
	e, _ := newExecutor()

	steps := []struct {
		line     string
		expected []string
		err      error
	}{
		{"list", []string{"[w1r3catcher] No domains added so far"}, nil},
		{"add w1r3.net", []string{"[w1r3catcher] url w1r3.net successfully added"}, nil},
		{"add https://w1r3.net/", []string{"[w1r3catcher] url w1r3.net already present"}, nil},
		{"add 0x0.st", []string{"[w1r3catcher] url 0x0.st successfully added"}, nil},
		{"list", []string{"[w1r3catcher] 1: w1r3.net", "[w1r3catcher] 2: 0x0.st"}, nil},
		{"del 5", []string{"[w1r3catcher] Wrong index number"}, common.ErrInvalidIndex},
		{"del example.org", []string{"[w1r3catcher] Couldn't find example.org"}, common.ErrNotFound},
		{"del 1", []string{"[w1r3catcher] Successfully deleted w1r3.net"}, nil},
		{"del 0x0.st", []string{"[w1r3catcher] Successfully deleted 0x0.st"}, nil},
		{"list", []string{"[w1r3catcher] No domains added so far"}, nil},
	}

	for _, step := range steps {
		lines, err := run(t, e, step.line)
		if step.err != nil {
			require.ErrorIs(t, err, step.err, step.line)
		} else {
			require.NoError(t, err, step.line)
		}
		require.Equal(t, step.expected, lines, step.line)
	}
}

func TestCommandLogging(t *testing.T) {
	e, store := newExecutor()

	lines, err := run(t, e, "logging off")
	require.NoError(t, err)
	require.Equal(t, []string{"[w1r3catcher] logging disabled"}, lines)

	value, _ := store.Get(context.Background(), settings.KeyLogging)
	require.Equal(t, settings.LoggingOff, value)

	_, err = run(t, e, "logging on")
	require.NoError(t, err)

	value, _ = store.Get(context.Background(), settings.KeyLogging)
	require.Equal(t, settings.LoggingOn, value)
}

func TestCommandUsage(t *testing.T) {
	e, _ := newExecutor()

	for _, line := range []string{"", "add", "add a b", "del", "list all", "logging", "logging maybe"} {
		lines, err := run(t, e, line)
		require.ErrorIs(t, err, common.ErrUsage, line)
		require.Equal(t, []string{"[w1r3catcher] " + e.Usage()}, lines, line)
	}

	lines, err := run(t, e, "purge")
	require.ErrorIs(t, err, common.ErrUsage)
	require.Equal(t, []string{"[w1r3catcher] bad option while using /w1r3catcher command, try '/help w1r3catcher' for more info"}, lines)
}

func TestCommandAddEmpty(t *testing.T) {
	e, _ := newExecutor()

	lines, err := run(t, e, "add https://")
	require.ErrorIs(t, err, common.ErrEmptyDomain)
	require.Equal(t, []string{"[w1r3catcher] Cannot add https://: not a domain"}, lines)
}

func TestCommandAddDelimiter(t *testing.T) {
	e, _ := newExecutor()

	lines, err := run(t, e, "add a.net|@|a.net")
	require.ErrorIs(t, err, common.ErrBadDomain)
	require.Equal(t, []string{"[w1r3catcher] Cannot add a.net|@|a.net: not a domain"}, lines)

	lines, err = run(t, e, "list")
	require.NoError(t, err)
	require.Equal(t, []string{"[w1r3catcher] No domains added so far"}, lines)
}
