// Package sink writes user-visible status lines, each prefixed with a fixed
// tag such as "[w1r3catcher]".
package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Sink interface {
	Printf(format string, args ...any)
}

type writerSink struct {
	mu  sync.Mutex
	w   io.Writer
	tag string
}

func NewWriter(w io.Writer, tag string) *writerSink {
	return &writerSink{w: w, tag: tag}
}

func (s *writerSink) Printf(format string, args ...any) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.w, "[%s] %s\n", s.tag, singleLine(line))
}

// Buffer collects lines in memory, used to answer a single command.
type Buffer struct {
	mu    sync.Mutex
	tag   string
	lines []string
}

func NewBuffer(tag string) *Buffer {
	return &Buffer{tag: tag}
}

func (b *Buffer) Printf(format string, args ...any) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, "["+b.tag+"] "+singleLine(line))
}

func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.lines...)
}

func (b *Buffer) String() string {
	lines := b.Lines()
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

type multiSink []Sink

// Multi copies every line to all sinks.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Printf(format string, args ...any) {
	for _, s := range m {
		s.Printf(format, args...)
	}
}

func singleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
