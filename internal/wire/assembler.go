// Package wire turns chunked text streams from the forge server into decoded
// events, independent of how the transport split the bytes.
package wire

import (
	"bytes"

	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// Assembler buffers an incoming text stream and yields one decoded event per
// newline-terminated line. Chunk boundaries never affect the emitted
// sequence: feeding a stream split at arbitrary points yields the same
// events, in the same order, as feeding it whole.
type Assembler struct {
	buf []byte
	log pslog.Logger
}

// NewAssembler constructs an Assembler. A nil logger disables drop logging.
func NewAssembler(logger pslog.Logger) *Assembler {
	return &Assembler{log: logger}
}

// Feed appends chunk to the carry-over buffer and returns the events decoded
// from every complete line now available. Blank lines are skipped. A line
// that fails to decode is logged and dropped without affecting later lines.
func (a *Assembler) Feed(chunk []byte) []schema.Event {
	a.buf = append(a.buf, chunk...)
	var events []schema.Event
	for {
		idx := bytes.IndexByte(a.buf, '\n')
		if idx < 0 {
			break
		}
		line := a.buf[:idx]
		a.buf = a.buf[idx+1:]
		if event, ok := a.decodeLine(line); ok {
			events = append(events, event)
		}
	}
	if len(a.buf) == 0 {
		a.buf = nil
	}
	return events
}

// Flush decodes any trailing unterminated line left in the buffer. Call it
// once when the stream ends.
func (a *Assembler) Flush() []schema.Event {
	if len(a.buf) == 0 {
		return nil
	}
	line := a.buf
	a.buf = nil
	if event, ok := a.decodeLine(line); ok {
		return []schema.Event{event}
	}
	return nil
}

// Pending reports whether an unterminated line is buffered.
func (a *Assembler) Pending() bool {
	return len(bytes.TrimSpace(a.buf)) > 0
}

// Reset discards any buffered partial line. A new connection starts at a
// line boundary, so carry-over from a stream that died mid-line would
// corrupt the first line of the next stream.
func (a *Assembler) Reset() {
	a.buf = nil
}

func (a *Assembler) decodeLine(line []byte) (schema.Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return schema.Event{}, false
	}
	event, err := decodeEvent(line)
	if err != nil {
		if a.log != nil {
			preview := previewText(string(line), 200)
			a.log.Warn("wire decode failed", "preview", preview, "truncated", len(preview) < len(line), "err", err)
		}
		return schema.Event{}, false
	}
	return event, true
}

func previewText(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max]
}
