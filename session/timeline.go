package session

import (
	"time"

	"github.com/zlillymp/forgeline/internal/logx"
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// findPhase looks a phase up by id, newest first.
func findPhase(s *State, id schema.PhaseID) *schema.PhaseTimelineItem {
	for i := len(s.Phases) - 1; i >= 0; i-- {
		if s.Phases[i].ID == id {
			return &s.Phases[i]
		}
	}
	return nil
}

func applyPhaseGenerating(s *State, payload *schema.PhaseEvent, log pslog.Logger) {
	if payload == nil || payload.ID == "" {
		logSkip(log, "phase_generating", "missing id")
		return
	}
	markStageActive(s, schema.StageCode, payload.Name)
	if phase := findPhase(s, payload.ID); phase != nil {
		phase.Status = schema.PhaseGenerating
		return
	}
	s.Phases = append(s.Phases, schema.PhaseTimelineItem{
		ID:          payload.ID,
		Name:        payload.Name,
		Description: payload.Description,
		Files:       append([]schema.FileRef(nil), payload.Files...),
		Status:      schema.PhaseGenerating,
		CreatedAt:   time.Now(),
	})
}

func applyPhaseGenerated(s *State, payload *schema.PhaseEvent, log pslog.Logger) {
	phase := phaseFor(s, payload)
	if phase == nil {
		logSkip(log, "phase_generated", "unknown phase")
		return
	}
	// File generation for the phase is done; validation has not started, so
	// the phase stays in generating until a phase_validating arrives.
	mergePhaseFiles(phase, payload.Files)
}

func applyPhaseImplementing(s *State, payload *schema.PhaseEvent) {
	if phase := phaseFor(s, payload); phase != nil && phase.Status == schema.PhaseGenerating {
		phase.Status = schema.PhaseValidating
	}
	markStageActive(s, schema.StageCode, "")
}

func applyPhaseValidating(s *State, payload *schema.PhaseEvent) {
	if phase := phaseFor(s, payload); phase != nil {
		phase.Status = schema.PhaseValidating
	}
	markStageCompleted(s, schema.StageCode)
	markStageActive(s, schema.StageValidate, "")
}

func applyPhaseValidated(s *State, payload *schema.PhaseEvent) {
	if phase := phaseFor(s, payload); phase != nil {
		phase.Status = schema.PhaseValidating
	}
	markStageCompleted(s, schema.StageValidate)
}

func applyPhaseImplemented(s *State, payload *schema.PhaseEvent, log pslog.Logger) {
	phase := phaseFor(s, payload)
	if phase == nil {
		logSkip(log, "phase_implemented", "unknown phase")
		return
	}
	// The server's completion signal accounts for every file in the phase.
	for i := range phase.Files {
		if phase.Files[i].Status != schema.FileRefError {
			phase.Files[i].Status = schema.FileRefCompleted
		}
	}
	phase.Status = schema.PhaseCompleted
	if log != nil {
		logx.WithPhase(log, phase.ID).Debug("phase implemented", "files", len(phase.Files))
	}
}

// phaseFor resolves the phase a payload refers to, falling back to the
// current phase when the server omits the id.
func phaseFor(s *State, payload *schema.PhaseEvent) *schema.PhaseTimelineItem {
	if payload != nil && payload.ID != "" {
		if phase := findPhase(s, payload.ID); phase != nil {
			return phase
		}
	}
	phase, _ := s.CurrentPhase()
	return phase
}

func mergePhaseFiles(phase *schema.PhaseTimelineItem, refs []schema.FileRef) {
	for _, ref := range refs {
		found := false
		for i := range phase.Files {
			if phase.Files[i].Path == ref.Path {
				if ref.Status != "" {
					phase.Files[i].Status = ref.Status
				}
				if ref.Purpose != "" && phase.Files[i].Purpose == "" {
					phase.Files[i].Purpose = ref.Purpose
				}
				found = true
				break
			}
		}
		if !found {
			phase.Files = append(phase.Files, ref)
		}
	}
}
