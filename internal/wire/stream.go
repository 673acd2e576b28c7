package wire

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/zlillymp/forgeline/schema"
)

// Scanner reads newline-delimited records from an io.Reader, skipping blank
// lines. It is the pull-based counterpart of Assembler, used where the whole
// stream is available as a reader (the HTTP bootstrap response body).
type Scanner struct {
	reader *bufio.Reader
}

// NewScanner constructs a Scanner over r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{reader: bufio.NewReader(r)}
}

// Next returns the next non-empty line without its terminator. It returns
// io.EOF when the stream ends, including a final unterminated line first.
func (s *Scanner) Next(ctx context.Context) ([]byte, error) {
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line, err := s.reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			return nil, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}
		return line, nil
	}
}

// EventStream yields decoded events from a newline-delimited reader.
type EventStream struct {
	scanner *Scanner
}

// NewEventStream constructs an EventStream over r.
func NewEventStream(r io.Reader) *EventStream {
	return &EventStream{scanner: NewScanner(r)}
}

// Next returns the next decoded event. Decode failures are returned as a
// *DecodeError carrying the offending line; the stream remains usable.
func (s *EventStream) Next(ctx context.Context) (schema.Event, error) {
	line, err := s.scanner.Next(ctx)
	if err != nil {
		return schema.Event{}, err
	}
	return decodeEvent(line)
}
