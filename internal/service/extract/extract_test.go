package extract

import (
	"slices"
	"testing"

	"github.com/jgivc/w1r3catcher/internal/entity"
	"github.com/stretchr/testify/require"
)

func urls(seq func(func(entity.MatchedURL) bool)) []string {
	var out []string
	for m := range seq {
		out = append(out, m.URL)
	}

	return out
}

func TestExtract(t *testing.T) {
	testCases := []struct {
		name     string
		message  string
		domains  []string
		expected []string
	}{
		{
			name:     "single match with scheme",
			message:  "check http://w1r3.net/abc123 now",
			domains:  []string{"w1r3.net"},
			expected: []string{"http://w1r3.net/abc123"},
		},
		{
			name:     "two matches without scheme",
			message:  "grab w1r3.net/x and w1r3.net/y",
			domains:  []string{"w1r3.net"},
			expected: []string{"w1r3.net/x", "w1r3.net/y"},
		},
		{
			name:     "https",
			message:  "https://w1r3.net/img.png",
			domains:  []string{"w1r3.net"},
			expected: []string{"https://w1r3.net/img.png"},
		},
		{
			name:     "several domains in registry order",
			message:  "0x0.st/b.txt then https://w1r3.net/a.png",
			domains:  []string{"w1r3.net", "0x0.st"},
			expected: []string{"https://w1r3.net/a.png", "0x0.st/b.txt"},
		},
		{
			name:    "path is required",
			message: "visit w1r3.net or https://w1r3.net/ today",
			domains: []string{"w1r3.net"},
		},
		{
			name:    "dot is literal",
			message: "w1r3xnet/abc",
			domains: []string{"w1r3.net"},
		},
		{
			name:     "empty domain is skipped",
			message:  "anything/at all w1r3.net/q",
			domains:  []string{"", "w1r3.net"},
			expected: []string{"w1r3.net/q"},
		},
		{
			name:     "query and fragment are kept verbatim",
			message:  "w1r3.net/f.jpg?download=1#top%20x",
			domains:  []string{"w1r3.net"},
			expected: []string{"w1r3.net/f.jpg?download=1#top%20x"},
		},
		{
			name:    "no domains",
			message: "w1r3.net/x",
		},
	}

	e := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, urls(e.Extract(tc.message, tc.domains)))
		})
	}
}

func TestExtractIsRestartable(t *testing.T) {
	seq := New().Extract("w1r3.net/x w1r3.net/y", []string{"w1r3.net"})

	first := urls(seq)
	second := urls(seq)
	require.Equal(t, first, second)
	require.Len(t, first, 2)
}

func TestExtractStopsEarly(t *testing.T) {
	seq := New().Extract("w1r3.net/x w1r3.net/y w1r3.net/z", []string{"w1r3.net"})

	var got []entity.MatchedURL
	for m := range seq {
		got = append(got, m)
		if len(got) == 2 {
			break
		}
	}

	require.True(t, slices.Equal([]string{"w1r3.net/x", "w1r3.net/y"}, []string{got[0].URL, got[1].URL}))
	require.Equal(t, "w1r3.net", got[0].Domain)
}
