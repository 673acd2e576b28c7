package wire

import (
	"encoding/json"

	"github.com/zlillymp/forgeline/schema"
)

// DecodeError wraps a decode failure together with the offending line.
type DecodeError struct {
	line []byte
	err  error
}

func (e *DecodeError) Error() string {
	if e == nil || e.err == nil {
		return "wire decode error"
	}
	return e.err.Error()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Line returns the raw line that failed to decode.
func (e *DecodeError) Line() []byte {
	if e == nil {
		return nil
	}
	return e.line
}

func decodeEvent(line []byte) (schema.Event, error) {
	var event schema.Event
	if err := json.Unmarshal(line, &event); err != nil {
		return schema.Event{}, &DecodeError{line: append([]byte(nil), line...), err: err}
	}
	event.Raw = append([]byte(nil), line...)
	return event, nil
}
