package schema

// CommandType tags an outbound command sent over the session transport.
type CommandType string

const (
	// CommandGenerateAll starts or restarts full generation.
	CommandGenerateAll CommandType = "generate_all"
	// CommandStop pauses generation.
	CommandStop CommandType = "stop_generation"
	// CommandResume continues a paused generation.
	CommandResume CommandType = "resume_generation"
	// CommandPreviewDeploy requests an ephemeral preview (re)deployment.
	CommandPreviewDeploy CommandType = "deploy_preview"
	// CommandDeploy requests a permanent deployment to a target.
	CommandDeploy CommandType = "deploy"
	// CommandUserMessage sends a free-text follow-up from the user.
	CommandUserMessage CommandType = "user_message"
)

// Command is the envelope for outbound requests. It is only sent while the
// transport is open.
type Command struct {
	Type    CommandType      `json:"type"`
	ID      string           `json:"id,omitempty"`
	Target  DeploymentTarget `json:"target,omitempty"`
	Message string           `json:"message,omitempty"`
}

// GenerateAll builds the command that starts full generation.
func GenerateAll() Command {
	return Command{Type: CommandGenerateAll}
}

// StopGeneration builds the command that pauses generation.
func StopGeneration() Command {
	return Command{Type: CommandStop}
}

// ResumeGeneration builds the command that resumes a paused generation.
func ResumeGeneration() Command {
	return Command{Type: CommandResume}
}

// PreviewDeploy builds the command that requests a preview deployment.
func PreviewDeploy() Command {
	return Command{Type: CommandPreviewDeploy}
}

// Deploy builds the command that requests a permanent deployment.
func Deploy(target DeploymentTarget) Command {
	return Command{Type: CommandDeploy, Target: target}
}

// UserMessage builds a free-text follow-up command.
func UserMessage(id string, text string) Command {
	return Command{Type: CommandUserMessage, ID: id, Message: text}
}
