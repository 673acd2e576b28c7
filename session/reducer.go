package session

import (
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// effect captures side work the owner must perform after a reduce step. The
// reducer itself never talks to the transport.
type effect struct {
	resendGenerate bool
}

// reduce folds one event into the state. It is total: every known event kind
// has an explicit handler, unknown kinds are logged and skipped, and no
// handler panics on missing or malformed payloads.
func reduce(s *State, event schema.Event, log pslog.Logger) effect {
	switch event.Type {
	case schema.EventStateSnapshot:
		return applySnapshot(s, event.Snapshot, log)

	case schema.EventGenerationStarted:
		applyGenerationStarted(s)
	case schema.EventGenerationComplete:
		applyGenerationComplete(s)
	case schema.EventGenerationStopped:
		s.IsPaused = true
		s.IsGenerating = false
	case schema.EventGenerationResumed:
		s.IsPaused = false
		s.IsGenerating = true

	case schema.EventFileGenerating:
		applyFileGenerating(s, event.File, log)
	case schema.EventFileChunk:
		applyFileChunk(s, event.File, log)
	case schema.EventFileGenerated:
		applyFileGenerated(s, event.File, log)
	case schema.EventFileRegenerating:
		applyFileRegenerating(s, event.File, log)
	case schema.EventFileRegenerated:
		applyFileRegenerated(s, event.File, log)

	case schema.EventPhaseGenerating:
		applyPhaseGenerating(s, event.Phase, log)
	case schema.EventPhaseGenerated:
		applyPhaseGenerated(s, event.Phase, log)
	case schema.EventPhaseImplementing:
		applyPhaseImplementing(s, event.Phase)
	case schema.EventPhaseValidating:
		applyPhaseValidating(s, event.Phase)
	case schema.EventPhaseValidated:
		applyPhaseValidated(s, event.Phase)
	case schema.EventPhaseImplemented:
		applyPhaseImplemented(s, event.Phase, log)

	case schema.EventPreviewDeployStarted:
		s.Deployment.IsPreviewDeploying = true
	case schema.EventPreviewDeployCompleted:
		applyPreviewDeployCompleted(s, event.Deployment)
	case schema.EventPreviewDeployFailed:
		applyPreviewDeployFailed(s, event.Deployment)
	case schema.EventDeployStarted:
		s.Deployment.IsDeploying = true
		s.Deployment.Error = ""
	case schema.EventDeployCompleted:
		applyDeployCompleted(s, event.Deployment)
	case schema.EventDeployError:
		applyDeployError(s, event.Deployment)

	case schema.EventCodeReviewed:
		applyCodeReviewed(s, event.Review)
	case schema.EventRuntimeError:
		applyRuntimeError(s, event.Runtime)
	case schema.EventError:
		applyServerError(s, event)
	case schema.EventRateLimitError:
		applyRateLimit(s, event.RateLimit)

	case schema.EventConversation:
		applyConversation(s, event.Conversation, log)

	default:
		if log != nil {
			log.Debug("unrecognized event skipped", "type", event.Type)
		}
	}
	return effect{}
}

func applyGenerationStarted(s *State) {
	s.IsGenerating = true
	s.IsPaused = false
	markStageCompleted(s, schema.StageBootstrap)
	markStageCompleted(s, schema.StageBlueprint)
	markStageActive(s, schema.StageCode, "")
}

func applyGenerationComplete(s *State) {
	s.IsGenerating = false
	s.IsPaused = false
	for i := range s.Stages {
		if s.Stages[i].Status != schema.StageError {
			s.Stages[i].Status = schema.StageCompleted
		}
	}
}
