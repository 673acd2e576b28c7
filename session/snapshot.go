package session

import (
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// applySnapshot reconciles a server-pushed full projection with live state.
//
// The first snapshot after a (re)connection fills each sub-entity only if
// the client holds nothing for it yet: live events that outran a stale
// snapshot always win, so reattaching never resets in-flight progress.
// Subsequent snapshots on the same connection are liveness signals only:
// they may ask the owner to re-issue the generate command but never merge.
func applySnapshot(s *State, snapshot *schema.Snapshot, log pslog.Logger) effect {
	if snapshot == nil {
		logSkip(log, "state_snapshot", "missing payload")
		return effect{}
	}
	eff := effect{}
	if snapshot.ShouldBeGenerating && !s.IsGenerating {
		eff.resendGenerate = true
	}
	if s.snapshotApplied {
		if log != nil {
			log.Debug("snapshot ignored, already reconciled this connection", "should_be_generating", snapshot.ShouldBeGenerating)
		}
		return eff
	}
	s.snapshotApplied = true

	if s.Query == "" && snapshot.Query != "" {
		s.Query = snapshot.Query
	}
	if s.Blueprint.Empty() && snapshot.Blueprint != nil {
		s.Blueprint = *snapshot.Blueprint
	}
	if len(s.files) == 0 && len(snapshot.Files) > 0 {
		for _, file := range snapshot.Files {
			if file.Path == "" {
				continue
			}
			record := s.ensureFile(file.Path)
			record.Content = file.Content
		}
	}
	if len(s.Phases) == 0 && len(snapshot.Phases) > 0 {
		s.Phases = append([]schema.PhaseTimelineItem(nil), snapshot.Phases...)
	}
	if len(s.Messages) == 0 && len(snapshot.Messages) > 0 {
		s.Messages = append([]schema.ConversationMessage(nil), snapshot.Messages...)
	}
	s.IsPaused = snapshot.IsPaused
	if log != nil {
		log.Debug("snapshot reconciled",
			"files", len(snapshot.Files),
			"phases", len(snapshot.Phases),
			"messages", len(snapshot.Messages),
			"should_be_generating", snapshot.ShouldBeGenerating)
	}
	return eff
}
