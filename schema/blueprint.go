package schema

// PlannedPhase is one phase the blueprint intends to build.
type PlannedPhase struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Files       []string `json:"files,omitempty"`
}

// Blueprint is the design document produced at the start of a session. It
// streams progressively, so any field may be absent until the document is
// complete.
type Blueprint struct {
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	Framework    string         `json:"framework,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Phases       []PlannedPhase `json:"phases,omitempty"`
}

// Empty reports whether no part of the blueprint has arrived yet.
func (b Blueprint) Empty() bool {
	return b.Title == "" && b.Description == "" && b.Framework == "" &&
		len(b.Dependencies) == 0 && len(b.Phases) == 0
}
