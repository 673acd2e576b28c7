// Package jsonrepair produces a best-effort parse of a JSON document that is
// still being written. It applies a bounded set of structural repairs
// (closing an open string, closing open brackets and braces, cutting back to
// the last complete value) and never fabricates content.
package jsonrepair

import (
	"encoding/json"
	"strings"
)

// Repairer accumulates chunks of one growing document. Finalize may be
// called any number of times; each call reflects only the content fed so far.
type Repairer struct {
	buf strings.Builder
}

// NewRepairer constructs an empty Repairer.
func NewRepairer() *Repairer {
	return &Repairer{}
}

// Feed appends a chunk of the document.
func (r *Repairer) Feed(chunk string) {
	r.buf.WriteString(chunk)
}

// Len returns the number of bytes accumulated so far.
func (r *Repairer) Len() int {
	return r.buf.Len()
}

// Finalize parses the buffer as-is, repairing structurally if needed. It
// reports ok=false for empty or unrecoverable input and never panics.
func (r *Repairer) Finalize() (any, bool) {
	return Repair(r.buf.String())
}

// Repair parses text as JSON, applying structural repairs when the document
// is unterminated. The repairs are tried in a fixed order: parse as-is,
// close an open string literal plus open containers, close open containers
// only, and finally cut back to the end of the last complete value before
// closing. Unrecoverable input yields (nil, false).
func Repair(text string) (any, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}
	if value, ok := parse(trimmed); ok {
		return value, true
	}

	st := scan(trimmed)
	closers := st.closers()

	if st.inString && st.stringIsValue {
		candidate := trimmed
		if st.escapePending {
			candidate = candidate[:len(candidate)-1]
		}
		if value, ok := parse(candidate + `"` + closers); ok {
			return value, true
		}
	}
	if !st.inString {
		if value, ok := parse(trimmed + closers); ok {
			return value, true
		}
	}
	if st.lastGood >= 0 {
		if value, ok := parse(trimmed[:st.lastGood] + st.lastGoodClosers); ok {
			return value, true
		}
	}
	return nil, false
}

func parse(text string) (any, bool) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, false
	}
	return value, true
}
