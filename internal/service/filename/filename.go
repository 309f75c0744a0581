package filename

import (
	"strconv"
	"strings"
	"time"
)

// TimeLayout renders as YYYYMMDD-HH:MM:SS.
const TimeLayout = "20060102-15:04:05"

// Allocate returns the first name of the form
//
//	irc.<network>.<channel>.<timestamp>[-N].<extension>
//
// for which exists reports false. The extension is sanitized by Extension:
// any "/" after the last dot of url becomes "_", so it can differ from the
// raw suffix of url.
func Allocate(network, channel string, ts time.Time, url string, exists func(string) bool) string {
	base := Base(network, channel, ts)
	ext := Extension(url)

	name := base + "." + ext
	for n := 1; exists(name); n++ {
		name = base + "-" + strconv.Itoa(n) + "." + ext
	}

	return name
}

func Base(network, channel string, ts time.Time) string {
	base := "irc." + network + "." + channel + "." + ts.Format(TimeLayout)

	return strings.ReplaceAll(base, "/", "_")
}

// Extension is everything after the last dot of url, query string included.
// Slashes are replaced so the name stays inside the save directory.
func Extension(url string) string {
	ext := url
	if i := strings.LastIndex(url, "."); i >= 0 {
		ext = url[i+1:]
	}

	return strings.ReplaceAll(ext, "/", "_")
}
