package schema

import "time"

// PhaseStatus describes the progress of a phase timeline entry.
type PhaseStatus string

const (
	// PhaseGenerating indicates files for the phase are being generated.
	PhaseGenerating PhaseStatus = "generating"
	// PhaseValidating indicates the phase output is being validated.
	PhaseValidating PhaseStatus = "validating"
	// PhaseCompleted indicates the phase finished.
	PhaseCompleted PhaseStatus = "completed"
	// PhaseError indicates the phase failed.
	PhaseError PhaseStatus = "error"
)

// FileRefStatus describes a file's progress inside a phase.
type FileRefStatus string

const (
	// FileRefGenerating indicates the file is still streaming.
	FileRefGenerating FileRefStatus = "generating"
	// FileRefCompleted indicates the file's final content arrived.
	FileRefCompleted FileRefStatus = "completed"
	// FileRefError indicates generation of the file failed.
	FileRefError FileRefStatus = "error"
)

// FileRef is one file planned or produced by a phase.
type FileRef struct {
	Path    string        `json:"path"`
	Purpose string        `json:"purpose,omitempty"`
	Status  FileRefStatus `json:"status,omitempty"`
	Content string        `json:"content,omitempty"`
}

// PhaseTimelineItem is one unit of generation work in the append-only timeline.
type PhaseTimelineItem struct {
	ID          PhaseID     `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Files       []FileRef   `json:"files,omitempty"`
	Status      PhaseStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}
