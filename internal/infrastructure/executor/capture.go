package executor

import (
	"bytes"
	"sync"

	"github.com/doeshing/codecraft/internal/domain"
)

// capture accumulates both pipes under one byte budget and queues chunks for
// the subscriber. Writes never block on the subscriber, so the child keeps
// draining even when the consumer is slow.
type capture struct {
	mu         sync.Mutex
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	transcript bytes.Buffer
	total      int
	limit      int
	truncated  bool
	pending    []domain.OutputEvent

	notify     chan struct{}
	onOverflow func()
}

func newCapture(limit int, onOverflow func()) *capture {
	return &capture{
		limit:      limit,
		notify:     make(chan struct{}, 1),
		onOverflow: onOverflow,
	}
}

type streamWriter struct {
	c      *capture
	stream domain.OutputStream
}

func (w streamWriter) Write(p []byte) (int, error) {
	w.c.write(w.stream, p)
	// Report the full length; a short write aborts the copy with io.ErrShortWrite.
	return len(p), nil
}

func (c *capture) writer(stream domain.OutputStream) streamWriter {
	return streamWriter{c: c, stream: stream}
}

func (c *capture) write(stream domain.OutputStream, p []byte) {
	c.mu.Lock()
	if c.truncated {
		c.mu.Unlock()
		return
	}
	chunk := p
	overflow := false
	if room := c.limit - c.total; len(chunk) > room {
		chunk = chunk[:room]
		overflow = true
	}
	if len(chunk) > 0 {
		if stream == domain.StreamStderr {
			c.stderr.Write(chunk)
		} else {
			c.stdout.Write(chunk)
		}
		c.transcript.Write(chunk)
		c.total += len(chunk)
		c.pending = append(c.pending, domain.OutputEvent{Stream: stream, Text: string(chunk)})
	}
	if overflow {
		c.truncated = true
	}
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
	if overflow && c.onOverflow != nil {
		c.onOverflow()
	}
}

func (c *capture) take() []domain.OutputEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.pending
	c.pending = nil
	return batch
}

// forward delivers queued chunks in arrival order until done is closed and
// the queue is empty.
func (c *capture) forward(events chan<- domain.OutputEvent, done <-chan struct{}) {
	for {
		batch := c.take()
		for _, ev := range batch {
			events <- ev
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-c.notify:
		case <-done:
			for _, ev := range c.take() {
				events <- ev
			}
			return
		}
	}
}

type snapshot struct {
	stdout     string
	stderr     string
	transcript string
	truncated  bool
}

func (c *capture) snapshot() snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot{
		stdout:     c.stdout.String(),
		stderr:     c.stderr.String(),
		transcript: c.transcript.String(),
		truncated:  c.truncated,
	}
}
