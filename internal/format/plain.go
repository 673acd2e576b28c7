// Package format renders session updates as plain console lines for the
// CLI.
package format

import (
	"fmt"
	"strings"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
)

// PlainRenderer formats session updates as plain text lines.
type PlainRenderer struct{}

// NewPlainRenderer returns a default plain-text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// FormatUpdate converts one session update into user-facing lines. Updates
// with no console representation yield nothing.
func (p *PlainRenderer) FormatUpdate(update session.Update) []string {
	switch update.Kind {
	case session.UpdateEvent:
		return p.formatEvent(update.Event)
	case session.UpdateConn:
		return formatConn(update.Conn)
	case session.UpdateNotice:
		if update.Notice == "" {
			return nil
		}
		return []string{"! " + update.Notice}
	default:
		return nil
	}
}

func (p *PlainRenderer) formatEvent(event schema.Event) []string {
	switch event.Type {
	case schema.EventGenerationStarted:
		return []string{"generation started"}
	case schema.EventGenerationComplete:
		return []string{"generation complete"}
	case schema.EventGenerationStopped:
		return []string{"generation paused"}
	case schema.EventGenerationResumed:
		return []string{"generation resumed"}

	case schema.EventFileGenerating:
		return fileLine("generating", event.File)
	case schema.EventFileGenerated:
		return fileLine("done", event.File)
	case schema.EventFileRegenerating:
		return fileLine("fixing", event.File)
	case schema.EventFileRegenerated:
		return fileLine("fixed", event.File)

	case schema.EventPhaseGenerating:
		return phaseLine("planning", event.Phase)
	case schema.EventPhaseImplementing:
		return phaseLine("implementing", event.Phase)
	case schema.EventPhaseValidating:
		return phaseLine("validating", event.Phase)
	case schema.EventPhaseImplemented:
		return phaseLine("completed", event.Phase)

	case schema.EventPreviewDeployCompleted:
		if event.Deployment != nil && event.Deployment.URL != "" {
			return []string{fmt.Sprintf("preview ready: %s", event.Deployment.URL)}
		}
		return []string{"preview ready"}
	case schema.EventPreviewDeployFailed:
		return []string{"preview deployment failed" + deployDetail(event.Deployment)}
	case schema.EventDeployCompleted:
		if event.Deployment != nil && event.Deployment.URL != "" {
			return []string{fmt.Sprintf("deployed: %s", event.Deployment.URL)}
		}
		return []string{"deployed"}
	case schema.EventDeployError:
		return []string{"deployment failed" + deployDetail(event.Deployment)}

	case schema.EventCodeReviewed:
		return formatReview(event.Review)
	case schema.EventRuntimeError:
		if event.Runtime != nil && event.Runtime.Message != "" {
			return []string{fmt.Sprintf("runtime error: %s", event.Runtime.Message)}
		}
		return []string{"runtime error"}
	case schema.EventError:
		if event.Error != nil && event.Error.Message != "" {
			return []string{fmt.Sprintf("error: %s", event.Error.Message)}
		}
		return []string{"error: unknown"}
	case schema.EventRateLimitError:
		return []string{"rate limited, generation slowed"}

	case schema.EventConversation:
		return formatConversation(event.Conversation)
	default:
		return nil
	}
}

func formatConn(status schema.ConnStatus) []string {
	switch status {
	case schema.ConnConnected:
		return []string{"connected"}
	case schema.ConnRetrying:
		return []string{"reconnecting..."}
	case schema.ConnFailed:
		return []string{"connection failed"}
	default:
		return nil
	}
}

func fileLine(verb string, payload *schema.FileEvent) []string {
	if payload == nil || payload.Path == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s %s", verb, payload.Path)}
}

func phaseLine(verb string, payload *schema.PhaseEvent) []string {
	if payload == nil {
		return nil
	}
	name := payload.Name
	if name == "" {
		name = string(payload.ID)
	}
	if name == "" {
		return nil
	}
	return []string{fmt.Sprintf("phase %s: %s", name, verb)}
}

func deployDetail(payload *schema.DeploymentEvent) string {
	if payload == nil {
		return ""
	}
	msg := strings.TrimSpace(payload.Error)
	if msg == "" {
		msg = strings.TrimSpace(payload.Message)
	}
	if msg == "" {
		return ""
	}
	return ": " + msg
}

func formatReview(review *schema.CodeReviewEvent) []string {
	if review == nil || len(review.FilesToFix) == 0 {
		return []string{"code review clean"}
	}
	lines := []string{"code review needs fixes:"}
	for _, path := range review.FilesToFix {
		lines = append(lines, "- "+path)
	}
	return lines
}

func formatConversation(payload *schema.ConversationEvent) []string {
	if payload == nil {
		return nil
	}
	if payload.Tool != nil {
		if payload.Tool.Status == schema.ToolStart {
			return []string{fmt.Sprintf("[tool] %s...", payload.Tool.Name)}
		}
		return []string{fmt.Sprintf("[tool] %s %s", payload.Tool.Name, payload.Tool.Status)}
	}
	// Streaming fragments are folded into state; print only whole replies.
	// The thinking placeholder is transient and rewritten in place, so its
	// intermediate content never reaches the console.
	if payload.IsStreaming || payload.Content == "" || payload.ID == schema.ThinkingMessageID {
		return nil
	}
	return splitLines(payload.Content)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
