package jsonrepair

import "encoding/json"

// frame tracks one open container during a scan.
type frame struct {
	closer byte // '}' or ']'
	state  byte // objects: k=key, c=colon, v=value, e=comma-or-end; arrays: v, e
}

// scanState is the structural summary of a possibly-truncated document.
type scanState struct {
	frames          []frame
	inString        bool
	stringIsValue   bool
	escapePending   bool
	lastGood        int // offset just past the last complete value, -1 if none
	lastGoodClosers string
}

// closers returns the closing brackets for every open container, innermost
// first.
func (st *scanState) closers() string {
	out := make([]byte, 0, len(st.frames))
	for i := len(st.frames) - 1; i >= 0; i-- {
		out = append(out, st.frames[i].closer)
	}
	return string(out)
}

// scan walks the document once, tracking open containers, string state, and
// the last offset at which cutting the document would leave only complete
// values behind.
func scan(s string) scanState {
	st := scanState{lastGood: -1}

	top := func() *frame {
		if len(st.frames) == 0 {
			return nil
		}
		return &st.frames[len(st.frames)-1]
	}
	markGood := func(pos int) {
		st.lastGood = pos
		st.lastGoodClosers = st.closers()
	}
	valueEnd := func(pos int) {
		if f := top(); f != nil {
			f.state = 'e'
		}
		markGood(pos)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if st.inString {
			switch {
			case st.escapePending:
				st.escapePending = false
			case c == '\\':
				st.escapePending = true
			case c == '"':
				st.inString = false
				if f := top(); f != nil && f.closer == '}' && f.state == 'k' {
					f.state = 'c'
				} else {
					valueEnd(i + 1)
				}
			}
			continue
		}
		switch c {
		case ' ', '\t', '\r', '\n':
		case '"':
			st.inString = true
			f := top()
			st.stringIsValue = f == nil || f.closer == ']' || f.state == 'v'
		case '{':
			st.frames = append(st.frames, frame{closer: '}', state: 'k'})
			markGood(i + 1)
		case '[':
			st.frames = append(st.frames, frame{closer: ']', state: 'v'})
			markGood(i + 1)
		case '}', ']':
			if len(st.frames) > 0 {
				st.frames = st.frames[:len(st.frames)-1]
			}
			valueEnd(i + 1)
		case ':':
			if f := top(); f != nil && f.state == 'c' {
				f.state = 'v'
			}
		case ',':
			if f := top(); f != nil && f.state == 'e' {
				if f.closer == '}' {
					f.state = 'k'
				} else {
					f.state = 'v'
				}
			}
		default:
			// Bare literal or number. Its end is only trustworthy when a
			// delimiter follows; a token cut off at EOF may be truncated.
			j := i
			for j < len(s) && !isDelimiter(s[j]) {
				j++
			}
			if j < len(s) && json.Valid([]byte(s[i:j])) {
				valueEnd(j)
			}
			i = j - 1
		}
	}
	return st
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', ':', '"', '{', '[', '}', ']':
		return true
	}
	return false
}
