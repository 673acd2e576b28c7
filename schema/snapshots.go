package schema

// FileSnapshot is a file's full projection inside a state snapshot.
type FileSnapshot struct {
	Path    string `json:"path"`
	Purpose string `json:"purpose,omitempty"`
	Content string `json:"content"`
}

// Snapshot is the server-pushed full projection of session state. It is
// consumed once per (re)connection to reconcile a reattaching client.
type Snapshot struct {
	Query              string                `json:"query,omitempty"`
	Blueprint          *Blueprint            `json:"blueprint,omitempty"`
	Files              []FileSnapshot        `json:"files,omitempty"`
	Phases             []PhaseTimelineItem   `json:"phases,omitempty"`
	Messages           []ConversationMessage `json:"messages,omitempty"`
	ShouldBeGenerating bool                  `json:"should_be_generating,omitempty"`
	IsPaused           bool                  `json:"is_paused,omitempty"`
}
