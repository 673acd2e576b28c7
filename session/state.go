// Package session holds the deterministic reducer that folds the forge
// server's event stream into client-side session state, and the thin owner
// that applies events in arrival order.
package session

import (
	"github.com/zlillymp/forgeline/schema"
)

// State is the full client-side projection of one generation session. It is
// mutated exclusively by the reducer, one event at a time.
type State struct {
	SessionID  schema.SessionID
	ConnStatus schema.ConnStatus
	Query      string
	Blueprint  schema.Blueprint
	Stages     []schema.Stage
	Phases     []schema.PhaseTimelineItem
	Messages   []schema.ConversationMessage
	Deployment schema.DeploymentState

	IsGenerating bool
	IsPaused     bool

	files     map[string]*schema.FileRecord
	fileOrder []string

	// snapshotApplied flips once per connection: the first snapshot merges,
	// later ones only signal ongoing work.
	snapshotApplied bool
}

// NewState returns the initial state for a session.
func NewState(id schema.SessionID) *State {
	return &State{
		SessionID:  id,
		ConnStatus: schema.ConnIdle,
		Stages:     schema.DefaultStages(),
		files:      make(map[string]*schema.FileRecord),
	}
}

// File returns a copy of the record for path.
func (s *State) File(path string) (schema.FileRecord, bool) {
	record, ok := s.files[path]
	if !ok {
		return schema.FileRecord{}, false
	}
	return *record, true
}

// Files returns copies of all file records in first-seen order.
func (s *State) Files() []schema.FileRecord {
	out := make([]schema.FileRecord, 0, len(s.fileOrder))
	for _, path := range s.fileOrder {
		if record, ok := s.files[path]; ok {
			out = append(out, *record)
		}
	}
	return out
}

// FileCount returns the number of tracked files.
func (s *State) FileCount() int {
	return len(s.files)
}

// ensureFile returns the record for path, creating it on first reference.
func (s *State) ensureFile(path string) *schema.FileRecord {
	if record, ok := s.files[path]; ok {
		return record
	}
	record := &schema.FileRecord{Path: path, Language: schema.DetectLanguage(path)}
	s.files[path] = record
	s.fileOrder = append(s.fileOrder, path)
	return record
}

// Stage returns the stage entry for kind.
func (s *State) Stage(kind schema.StageKind) schema.Stage {
	for _, stage := range s.Stages {
		if stage.Kind == kind {
			return stage
		}
	}
	return schema.Stage{Kind: kind, Status: schema.StagePending}
}

// CurrentPhase returns the most recent phase that has not completed,
// searched backward so completed phases are never mutated by late file
// events. The second return is the index into Phases, -1 when absent.
func (s *State) CurrentPhase() (*schema.PhaseTimelineItem, int) {
	for i := len(s.Phases) - 1; i >= 0; i-- {
		if s.Phases[i].Status != schema.PhaseCompleted {
			return &s.Phases[i], i
		}
	}
	return nil, -1
}

// resetConnection rearms per-connection bookkeeping after a (re)connect.
func (s *State) resetConnection() {
	s.snapshotApplied = false
}
