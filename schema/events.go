package schema

import "encoding/json"

// EventType is the top-level tag on messages streamed by the forge server.
type EventType string

const (
	// EventStateSnapshot carries the full session projection after (re)connect.
	EventStateSnapshot EventType = "state_snapshot"

	// EventGenerationStarted indicates the pipeline began producing code.
	EventGenerationStarted EventType = "generation_started"
	// EventGenerationComplete indicates the pipeline finished.
	EventGenerationComplete EventType = "generation_complete"
	// EventGenerationStopped indicates generation was paused by request.
	EventGenerationStopped EventType = "generation_stopped"
	// EventGenerationResumed indicates a paused generation continued.
	EventGenerationResumed EventType = "generation_resumed"

	// EventFileGenerating indicates a file started streaming.
	EventFileGenerating EventType = "file_generating"
	// EventFileChunk carries one content fragment for a streaming file.
	EventFileChunk EventType = "file_chunk_generated"
	// EventFileGenerated carries a file's authoritative final content.
	EventFileGenerated EventType = "file_generated"
	// EventFileRegenerating indicates a file is being rewritten to fix issues.
	EventFileRegenerating EventType = "file_regenerating"
	// EventFileRegenerated carries the rewritten file content.
	EventFileRegenerated EventType = "file_regenerated"

	// EventPhaseGenerating marks the start of a phase's file generation.
	EventPhaseGenerating EventType = "phase_generating"
	// EventPhaseGenerated marks the end of a phase's file generation.
	EventPhaseGenerated EventType = "phase_generated"
	// EventPhaseImplementing marks a phase applying its changes.
	EventPhaseImplementing EventType = "phase_implementing"
	// EventPhaseValidating marks the start of phase validation.
	EventPhaseValidating EventType = "phase_validating"
	// EventPhaseValidated marks successful phase validation.
	EventPhaseValidated EventType = "phase_validated"
	// EventPhaseImplemented marks a fully applied phase.
	EventPhaseImplemented EventType = "phase_implemented"

	// EventPreviewDeployStarted marks the start of an ephemeral preview deploy.
	EventPreviewDeployStarted EventType = "preview_deployment_started"
	// EventPreviewDeployCompleted carries the preview URL.
	EventPreviewDeployCompleted EventType = "preview_deployment_completed"
	// EventPreviewDeployFailed marks a failed preview deploy.
	EventPreviewDeployFailed EventType = "preview_deployment_failed"

	// EventDeployStarted marks the start of a permanent deployment.
	EventDeployStarted EventType = "deployment_started"
	// EventDeployCompleted carries the permanent deployment URL.
	EventDeployCompleted EventType = "deployment_completed"
	// EventDeployError marks a failed permanent deployment.
	EventDeployError EventType = "deployment_error"

	// EventCodeReviewed carries a code review summary.
	EventCodeReviewed EventType = "code_reviewed"
	// EventRuntimeError reports an error observed in the running preview.
	EventRuntimeError EventType = "runtime_error"
	// EventError reports a generic server-side error.
	EventError EventType = "error"
	// EventRateLimitError reports a rate limit with retry suggestions.
	EventRateLimitError EventType = "rate_limit_error"

	// EventConversation carries a conversational response, optionally
	// streaming and optionally wrapping a tool call update.
	EventConversation EventType = "conversation_response"
)

// Event is the normalized envelope for everything the forge server streams.
// Exactly one payload pointer is set for payload-carrying types.
type Event struct {
	Type         EventType          `json:"type"`
	SessionID    SessionID          `json:"session_id,omitempty"`
	Snapshot     *Snapshot          `json:"snapshot,omitempty"`
	File         *FileEvent         `json:"file,omitempty"`
	Phase        *PhaseEvent        `json:"phase,omitempty"`
	Deployment   *DeploymentEvent   `json:"deployment,omitempty"`
	Review       *CodeReviewEvent   `json:"review,omitempty"`
	Runtime      *RuntimeErrorEvent `json:"runtime,omitempty"`
	Error        *ErrorEvent        `json:"error,omitempty"`
	RateLimit    *RateLimitEvent    `json:"rate_limit,omitempty"`
	Conversation *ConversationEvent `json:"conversation,omitempty"`
	Message      string             `json:"message,omitempty"`
	Raw          json.RawMessage    `json:"-"`
}

// FileEvent is the payload of file_* events.
type FileEvent struct {
	Path    string `json:"path"`
	Purpose string `json:"purpose,omitempty"`
	Chunk   string `json:"chunk,omitempty"`
	Content string `json:"content,omitempty"`
}

// PhaseEvent is the payload of phase_* events.
type PhaseEvent struct {
	ID          PhaseID   `json:"id"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Files       []FileRef `json:"files,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// DeploymentEvent is the payload of deployment and preview events.
type DeploymentEvent struct {
	URL     string           `json:"url,omitempty"`
	Target  DeploymentTarget `json:"target,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// CodeReviewEvent is the payload of code_reviewed events.
type CodeReviewEvent struct {
	Summary     string   `json:"summary,omitempty"`
	IssuesFound int      `json:"issues_found,omitempty"`
	FilesToFix  []string `json:"files_to_fix,omitempty"`
}

// RuntimeErrorEvent is the payload of runtime_error events.
type RuntimeErrorEvent struct {
	Message    string `json:"message"`
	Path       string `json:"path,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// ErrorEvent is the payload of generic error events.
type ErrorEvent struct {
	Message string `json:"message,omitempty"`
}

// RateLimitEvent is the payload of rate_limit_error events.
type RateLimitEvent struct {
	Message           string   `json:"message,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
	RetryAfterSeconds int      `json:"retry_after_seconds,omitempty"`
}

// ConversationEvent is the payload of conversation_response events.
type ConversationEvent struct {
	ID          MessageID   `json:"id"`
	Role        MessageRole `json:"role,omitempty"`
	Content     string      `json:"content,omitempty"`
	IsStreaming bool        `json:"is_streaming,omitempty"`
	Tool        *ToolEvent  `json:"tool,omitempty"`
}
