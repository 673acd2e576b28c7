package schema

// StageKind names one of the fixed top-level pipeline steps.
type StageKind string

const (
	// StageBootstrap covers session setup on the forge server.
	StageBootstrap StageKind = "bootstrap"
	// StageBlueprint covers blueprint generation.
	StageBlueprint StageKind = "blueprint"
	// StageCode covers code generation.
	StageCode StageKind = "code"
	// StageValidate covers validation of generated code.
	StageValidate StageKind = "validate"
	// StageFix covers fixing validation findings.
	StageFix StageKind = "fix"
)

// StageOrder is the fixed pipeline order.
var StageOrder = []StageKind{StageBootstrap, StageBlueprint, StageCode, StageValidate, StageFix}

// StageStatus describes the progress of a stage.
type StageStatus string

const (
	// StagePending indicates a stage has not started.
	StagePending StageStatus = "pending"
	// StageActive indicates a stage is in progress.
	StageActive StageStatus = "active"
	// StageCompleted indicates a stage finished successfully.
	StageCompleted StageStatus = "completed"
	// StageError indicates a stage failed.
	StageError StageStatus = "error"
)

// Stage is one top-level pipeline step with its current status.
type Stage struct {
	Kind     StageKind   `json:"kind"`
	Status   StageStatus `json:"status"`
	Metadata string      `json:"metadata,omitempty"`
}

// DefaultStages returns the fixed stage set, all pending.
func DefaultStages() []Stage {
	stages := make([]Stage, 0, len(StageOrder))
	for _, kind := range StageOrder {
		stages = append(stages, Stage{Kind: kind, Status: StagePending})
	}
	return stages
}
