package session

import (
	"strings"
	"time"

	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

func applyConversation(s *State, payload *schema.ConversationEvent, log pslog.Logger) {
	if payload == nil || payload.ID == "" {
		logSkip(log, "conversation_response", "missing id")
		return
	}
	message := findMessage(s, payload.ID)
	if message == nil {
		role := payload.Role
		if role == "" {
			role = schema.RoleAssistant
		}
		s.Messages = append(s.Messages, schema.ConversationMessage{
			ID:        payload.ID,
			Role:      role,
			Content:   payload.Content,
			CreatedAt: time.Now(),
		})
		message = &s.Messages[len(s.Messages)-1]
	} else if payload.IsStreaming {
		message.Content += payload.Content
	} else if payload.Content != "" {
		// The thinking placeholder and other known ids update in place.
		message.Content = payload.Content
	}
	if payload.Tool != nil {
		applyToolEvent(message, *payload.Tool)
	}
}

// applyToolEvent upgrades a started tool call in place when its terminal
// status arrives, otherwise appends.
func applyToolEvent(message *schema.ConversationMessage, tool schema.ToolEvent) {
	if tool.Status != schema.ToolStart {
		for i := len(message.Tools) - 1; i >= 0; i-- {
			if message.Tools[i].Name == tool.Name && message.Tools[i].Status == schema.ToolStart {
				message.Tools[i].Status = tool.Status
				if !tool.Timestamp.IsZero() {
					message.Tools[i].Timestamp = tool.Timestamp
				}
				return
			}
		}
	}
	message.Tools = append(message.Tools, tool)
}

func findMessage(s *State, id schema.MessageID) *schema.ConversationMessage {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}

func applyServerError(s *State, event schema.Event) {
	text := event.Message
	if event.Error != nil && event.Error.Message != "" {
		text = event.Error.Message
	}
	if text == "" {
		text = "server reported an error"
	}
	appendSystemMessage(s, text)
}

func applyRuntimeError(s *State, payload *schema.RuntimeErrorEvent) {
	if payload == nil {
		return
	}
	if payload.Path != "" {
		if record, ok := s.files[payload.Path]; ok {
			record.HasErrors = true
		}
	}
	markStageError(s, schema.StageValidate, payload.Message)
	text := "runtime error: " + payload.Message
	if payload.Path != "" {
		text += " (" + payload.Path + ")"
	}
	appendSystemMessage(s, text)
}

func applyRateLimit(s *State, payload *schema.RateLimitEvent) {
	text := "rate limited"
	if payload != nil && payload.Message != "" {
		text = payload.Message
	}
	if payload != nil && len(payload.Suggestions) > 0 {
		text += "\nsuggestions: " + strings.Join(payload.Suggestions, "; ")
	}
	appendSystemMessage(s, text)
}

func applyCodeReviewed(s *State, payload *schema.CodeReviewEvent) {
	if payload == nil {
		return
	}
	for _, path := range payload.FilesToFix {
		if record, ok := s.files[path]; ok {
			record.NeedsFixing = true
		}
	}
	if payload.Summary != "" {
		appendSystemMessage(s, "code review: "+payload.Summary)
	}
}

func appendSystemMessage(s *State, text string) {
	s.Messages = append(s.Messages, schema.ConversationMessage{
		ID:        schema.MessageID(newMessageID()),
		Role:      schema.RoleSystem,
		Content:   text,
		CreatedAt: time.Now(),
	})
}
