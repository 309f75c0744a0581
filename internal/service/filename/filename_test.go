package filename

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var ts = time.Date(2017, time.March, 9, 21, 4, 5, 0, time.UTC)

func none(string) bool { return false }

func TestAllocateFree(t *testing.T) {
	name := Allocate("freenode", "#w1r3", ts, "https://w1r3.net/abc.png", none)
	require.Equal(t, "irc.freenode.#w1r3.20170309-21:04:05.png", name)
}

func TestAllocateSlashesInBase(t *testing.T) {
	name := Allocate("net/work", "#a/b", ts, "w1r3.net/x.txt", none)
	require.Equal(t, "irc.net_work.#a_b.20170309-21:04:05.txt", name)
}

func TestAllocateSanitizesExtension(t *testing.T) {
	name := Allocate("net", "#c", ts, "w1r3.net/v1.2/file", none)
	require.Equal(t, "irc.net.#c.20170309-21:04:05.2_file", name)
	require.NotContains(t, name, "/")
}

func TestAllocateCollision(t *testing.T) {
	taken := map[string]bool{}
	exists := func(name string) bool { return taken[name] }

	first := Allocate("net", "#c", ts, "w1r3.net/a.jpg", exists)
	taken[first] = true
	second := Allocate("net", "#c", ts, "w1r3.net/b.jpg", exists)
	taken[second] = true
	third := Allocate("net", "#c", ts, "w1r3.net/c.jpg", exists)

	require.Equal(t, "irc.net.#c.20170309-21:04:05.jpg", first)
	require.Equal(t, "irc.net.#c.20170309-21:04:05-1.jpg", second)
	require.Equal(t, "irc.net.#c.20170309-21:04:05-2.jpg", third)
}

func TestExtension(t *testing.T) {
	testCases := []struct {
		url, ext string
	}{
		{"https://w1r3.net/abc.png", "png"},
		{"w1r3.net/archive.tar.gz", "gz"},
		{"w1r3.net/f.php?download=1", "php?download=1"},
		{"w1r3.net/f?x=1.5", "5"},
		{"w1r3.net/noext", "net_noext"},
		{"localhost/x", "localhost_x"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.ext, Extension(tc.url), tc.url)
	}
}
