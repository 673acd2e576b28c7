package session

import (
	"github.com/zlillymp/forgeline/internal/logx"
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

func applyFileGenerating(s *State, payload *schema.FileEvent, log pslog.Logger) {
	if payload == nil || payload.Path == "" {
		logSkip(log, "file_generating", "missing path")
		return
	}
	record := s.ensureFile(payload.Path)
	record.IsGenerating = true
	setPhaseFileStatus(s, payload.Path, payload.Purpose, schema.FileRefGenerating)
}

func applyFileChunk(s *State, payload *schema.FileEvent, log pslog.Logger) {
	if payload == nil || payload.Path == "" {
		logSkip(log, "file_chunk_generated", "missing path")
		return
	}
	record := s.ensureFile(payload.Path)
	record.Content += payload.Chunk
	record.IsGenerating = true
}

func applyFileGenerated(s *State, payload *schema.FileEvent, log pslog.Logger) {
	if payload == nil || payload.Path == "" {
		logSkip(log, "file_generated", "missing path")
		return
	}
	record := s.ensureFile(payload.Path)
	record.Content = payload.Content
	record.IsGenerating = false
	record.HasErrors = false
	setPhaseFileStatus(s, payload.Path, payload.Purpose, schema.FileRefCompleted)
	s.Deployment.IsRedeployReady = true
	if log != nil {
		logx.WithFile(log, payload.Path).Debug("file generated", "bytes", len(record.Content))
	}
}

func applyFileRegenerating(s *State, payload *schema.FileEvent, log pslog.Logger) {
	if payload == nil || payload.Path == "" {
		logSkip(log, "file_regenerating", "missing path")
		return
	}
	record := s.ensureFile(payload.Path)
	record.IsGenerating = true
	record.NeedsFixing = true
	markStageActive(s, schema.StageFix, payload.Path)
}

func applyFileRegenerated(s *State, payload *schema.FileEvent, log pslog.Logger) {
	if payload == nil || payload.Path == "" {
		logSkip(log, "file_regenerated", "missing path")
		return
	}
	record := s.ensureFile(payload.Path)
	record.Content = payload.Content
	record.IsGenerating = false
	record.NeedsFixing = false
	record.HasErrors = false
	setPhaseFileStatus(s, payload.Path, payload.Purpose, schema.FileRefCompleted)
	s.Deployment.IsRedeployReady = true
}

// setPhaseFileStatus updates (or adds) the file's entry in the current
// phase. The search runs from the most recent phase backward so a completed
// phase is never mutated by a late file event.
func setPhaseFileStatus(s *State, path, purpose string, status schema.FileRefStatus) {
	phase, _ := s.CurrentPhase()
	if phase == nil {
		return
	}
	for i := range phase.Files {
		if phase.Files[i].Path == path {
			phase.Files[i].Status = status
			if purpose != "" && phase.Files[i].Purpose == "" {
				phase.Files[i].Purpose = purpose
			}
			return
		}
	}
	phase.Files = append(phase.Files, schema.FileRef{Path: path, Purpose: purpose, Status: status})
}

func logSkip(log pslog.Logger, event, reason string) {
	if log != nil {
		log.Warn("event skipped", "type", event, "reason", reason)
	}
}
