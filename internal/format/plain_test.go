package format

import (
	"reflect"
	"testing"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
)

func eventUpdate(event schema.Event) session.Update {
	return session.Update{Kind: session.UpdateEvent, Event: event}
}

func TestFormatFileProgress(t *testing.T) {
	r := NewPlainRenderer()
	lines := r.FormatUpdate(eventUpdate(schema.Event{
		Type: schema.EventFileGenerated,
		File: &schema.FileEvent{Path: "src/app.tsx"},
	}))
	if !reflect.DeepEqual(lines, []string{"done src/app.tsx"}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if lines := r.FormatUpdate(eventUpdate(schema.Event{Type: schema.EventFileGenerated})); lines != nil {
		t.Fatalf("missing payload must render nothing, got %v", lines)
	}
}

func TestFormatChunksAreSilent(t *testing.T) {
	r := NewPlainRenderer()
	lines := r.FormatUpdate(eventUpdate(schema.Event{
		Type: schema.EventFileChunk,
		File: &schema.FileEvent{Path: "a.ts", Chunk: "let x"},
	}))
	if lines != nil {
		t.Fatalf("chunk events must not print, got %v", lines)
	}
}

func TestFormatPhasePrefersName(t *testing.T) {
	r := NewPlainRenderer()
	lines := r.FormatUpdate(eventUpdate(schema.Event{
		Type:  schema.EventPhaseValidating,
		Phase: &schema.PhaseEvent{ID: "p1", Name: "core screens"},
	}))
	if !reflect.DeepEqual(lines, []string{"phase core screens: validating"}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestFormatDeployOutcomes(t *testing.T) {
	r := NewPlainRenderer()
	lines := r.FormatUpdate(eventUpdate(schema.Event{
		Type:       schema.EventDeployCompleted,
		Deployment: &schema.DeploymentEvent{URL: "https://app.example.com"},
	}))
	if !reflect.DeepEqual(lines, []string{"deployed: https://app.example.com"}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
	lines = r.FormatUpdate(eventUpdate(schema.Event{
		Type:       schema.EventDeployError,
		Deployment: &schema.DeploymentEvent{Error: "quota exceeded"},
	}))
	if !reflect.DeepEqual(lines, []string{"deployment failed: quota exceeded"}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestFormatReviewListsFiles(t *testing.T) {
	r := NewPlainRenderer()
	lines := r.FormatUpdate(eventUpdate(schema.Event{
		Type:   schema.EventCodeReviewed,
		Review: &schema.CodeReviewEvent{FilesToFix: []string{"a.ts", "b.ts"}},
	}))
	want := []string{"code review needs fixes:", "- a.ts", "- b.ts"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestFormatConversationSkipsStreaming(t *testing.T) {
	r := NewPlainRenderer()
	streaming := r.FormatUpdate(eventUpdate(schema.Event{
		Type:         schema.EventConversation,
		Conversation: &schema.ConversationEvent{ID: "m1", Content: "partial", IsStreaming: true},
	}))
	if streaming != nil {
		t.Fatalf("streaming fragments must not print, got %v", streaming)
	}
	whole := r.FormatUpdate(eventUpdate(schema.Event{
		Type:         schema.EventConversation,
		Conversation: &schema.ConversationEvent{ID: "m1", Content: "line one\nline two\n"},
	}))
	if !reflect.DeepEqual(whole, []string{"line one", "line two"}) {
		t.Fatalf("unexpected lines: %v", whole)
	}
	thinking := r.FormatUpdate(eventUpdate(schema.Event{
		Type:         schema.EventConversation,
		Conversation: &schema.ConversationEvent{ID: schema.ThinkingMessageID, Content: "considering layout options"},
	}))
	if thinking != nil {
		t.Fatalf("thinking placeholder must not print, got %v", thinking)
	}
}

func TestFormatNoticeAndConn(t *testing.T) {
	r := NewPlainRenderer()
	lines := r.FormatUpdate(session.Update{Kind: session.UpdateNotice, Notice: "retrying in 2s"})
	if !reflect.DeepEqual(lines, []string{"! retrying in 2s"}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
	lines = r.FormatUpdate(session.Update{Kind: session.UpdateConn, Conn: schema.ConnRetrying})
	if !reflect.DeepEqual(lines, []string{"reconnecting..."}) {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if lines := r.FormatUpdate(session.Update{Kind: session.UpdateConn, Conn: schema.ConnConnecting}); lines != nil {
		t.Fatalf("connecting status must be silent, got %v", lines)
	}
}
