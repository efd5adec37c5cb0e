package cli

import (
	"fmt"
	"io"
)

// streamWriter prints streamed reply chunks as they arrive.
type streamWriter struct {
	out     io.Writer
	started bool
}

// NewStreamWriter builds a streamWriter for stdout/stderr.
func NewStreamWriter(out io.Writer) *streamWriter {
	return &streamWriter{out: out}
}

func (s *streamWriter) WriteChunk(text string) {
	if text == "" {
		return
	}
	s.started = true
	fmt.Fprint(s.out, text)
}

// Done terminates the reply line if anything was written.
func (s *streamWriter) Done() {
	if s.started {
		fmt.Fprintln(s.out)
	}
	s.started = false
}
