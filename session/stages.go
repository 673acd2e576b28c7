package session

import "github.com/zlillymp/forgeline/schema"

// cyclingStages may re-activate after completing: the pipeline loops through
// code, validate, and fix while phases iterate. Bootstrap and blueprint
// never regress.
var cyclingStages = map[schema.StageKind]bool{
	schema.StageCode:     true,
	schema.StageValidate: true,
	schema.StageFix:      true,
}

func markStageActive(s *State, kind schema.StageKind, metadata string) {
	for i := range s.Stages {
		if s.Stages[i].Kind != kind {
			continue
		}
		if s.Stages[i].Status == schema.StageCompleted && !cyclingStages[kind] {
			return
		}
		s.Stages[i].Status = schema.StageActive
		if metadata != "" {
			s.Stages[i].Metadata = metadata
		}
		return
	}
}

func markStageCompleted(s *State, kind schema.StageKind) {
	for i := range s.Stages {
		if s.Stages[i].Kind == kind {
			s.Stages[i].Status = schema.StageCompleted
			return
		}
	}
}

func markStageError(s *State, kind schema.StageKind, metadata string) {
	for i := range s.Stages {
		if s.Stages[i].Kind == kind {
			s.Stages[i].Status = schema.StageError
			if metadata != "" {
				s.Stages[i].Metadata = metadata
			}
			return
		}
	}
}
