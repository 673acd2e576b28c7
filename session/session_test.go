package session

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/zlillymp/forgeline/schema"
)

type recordingSink struct {
	updates []Update
}

func (r *recordingSink) OnUpdate(update Update) { r.updates = append(r.updates, update) }

type recordingCommandSender struct {
	commands []schema.Command
	err      error
}

func (r *recordingCommandSender) SendCommand(command schema.Command) error {
	r.commands = append(r.commands, command)
	return r.err
}

func TestHandleFrameAppliesEventsInArrivalOrder(t *testing.T) {
	sink := &recordingSink{}
	sess := New("sess-1", Config{Sink: sink})

	frame := []byte(`{"type":"generation_started"}` + "\n" +
		`{"type":"file_generating","file":{"path":"a.ts"}}` + "\n" +
		`{"type":"file_chunk_generated","file":{"path":"a.ts","chunk":"let x"}}` + "\n")
	// Split mid-line to prove assembly is chunk tolerant at the owner level.
	sess.HandleFrame(frame[:len(frame)-20])
	sess.HandleFrame(frame[len(frame)-20:])

	if len(sink.updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(sink.updates))
	}
	wantTypes := []schema.EventType{
		schema.EventGenerationStarted,
		schema.EventFileGenerating,
		schema.EventFileChunk,
	}
	for i, want := range wantTypes {
		if sink.updates[i].Kind != UpdateEvent || sink.updates[i].Event.Type != want {
			t.Fatalf("update %d: got %s/%s, want %s", i, sink.updates[i].Kind, sink.updates[i].Event.Type, want)
		}
	}
	view := sess.View()
	if !view.IsGenerating {
		t.Fatalf("generation_started not applied")
	}
	if len(view.Files) != 1 || view.Files[0].Content != "let x" {
		t.Fatalf("file chunk not applied: %+v", view.Files)
	}
}

func TestSnapshotLivenessReissuesGenerate(t *testing.T) {
	sender := &recordingCommandSender{}
	sess := New("sess-1", Config{Sender: sender})

	sess.Apply(schema.Event{Type: schema.EventStateSnapshot, Snapshot: &schema.Snapshot{}})
	sess.Apply(schema.Event{Type: schema.EventStateSnapshot, Snapshot: &schema.Snapshot{ShouldBeGenerating: true}})

	if len(sender.commands) != 1 {
		t.Fatalf("expected one re-issued command, got %d", len(sender.commands))
	}
	if sender.commands[0].Type != schema.CommandGenerateAll {
		t.Fatalf("got %s, want %s", sender.commands[0].Type, schema.CommandGenerateAll)
	}
}

func TestSeedCompletesSetupStages(t *testing.T) {
	sess := New("sess-1", Config{})
	sess.Seed("a todo app", schema.Blueprint{Title: "Todo"}, []schema.FileSnapshot{{Path: "src/app.tsx", Content: "x"}})

	view := sess.View()
	if view.Query != "a todo app" || view.Blueprint.Title != "Todo" {
		t.Fatalf("seed did not populate state: %+v", view)
	}
	for _, kind := range []schema.StageKind{schema.StageBootstrap, schema.StageBlueprint} {
		found := false
		for _, stage := range view.Stages {
			if stage.Kind == kind && stage.Status == schema.StageCompleted {
				found = true
			}
		}
		if !found {
			t.Fatalf("stage %s not completed after seed", kind)
		}
	}
	if len(view.Files) != 1 || view.Files[0].Content != "x" {
		t.Fatalf("seed files missing: %+v", view.Files)
	}
}

func TestHandleOpenRearmsSnapshotReconciliation(t *testing.T) {
	sess := New("sess-1", Config{})
	sess.Apply(schema.Event{Type: schema.EventStateSnapshot, Snapshot: &schema.Snapshot{Query: "first"}})
	sess.HandleOpen(true)
	sess.Apply(schema.Event{Type: schema.EventStateSnapshot, Snapshot: &schema.Snapshot{
		Blueprint: &schema.Blueprint{Title: "late"},
	}})
	if sess.View().Blueprint.Title != "late" {
		t.Fatalf("reconnect did not rearm snapshot reconciliation")
	}
}

func TestHandleOpenDiscardsPartialLineFromDeadConnection(t *testing.T) {
	sess := New("sess-1", Config{})
	// The transport died mid-line; the unterminated fragment must not glue
	// onto the first line of the next connection.
	sess.HandleFrame([]byte(`{"type":"file_gen`))
	sess.HandleOpen(true)
	sess.HandleFrame([]byte(`{"type":"state_snapshot","snapshot":{"query":"a notes app","files":[{"path":"src/app.tsx","content":"seed"}]}}` + "\n"))

	view := sess.View()
	if view.Query != "a notes app" {
		t.Fatalf("snapshot lost after reconnect: query=%q", view.Query)
	}
	if len(view.Files) != 1 || view.Files[0].Path != "src/app.tsx" {
		t.Fatalf("snapshot files lost after reconnect: %+v", view.Files)
	}
}

func TestHandleNoticeAppendsSystemMessage(t *testing.T) {
	sink := &recordingSink{}
	sess := New("sess-1", Config{Sink: sink})
	sess.HandleNotice("connection lost, retrying in 2s (4 attempts left)")

	view := sess.View()
	if len(view.Messages) != 1 || view.Messages[0].Role != schema.RoleSystem {
		t.Fatalf("notice not recorded as system message: %+v", view.Messages)
	}
	last := sink.updates[len(sink.updates)-1]
	if last.Kind != UpdateNotice || last.Notice == "" {
		t.Fatalf("sink did not receive notice update: %+v", last)
	}
}

type recordingSender struct {
	open     bool
	payloads [][]byte
}

func (r *recordingSender) IsOpen() bool { return r.open }

func (r *recordingSender) Send(_ context.Context, payload []byte) error {
	r.payloads = append(r.payloads, append([]byte(nil), payload...))
	return nil
}

func TestDispatcherRequiresOpenTransport(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, nil)
	if err := d.SendCommand(schema.StopGeneration()); err != schema.ErrNotConnected {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}

	sender.open = true
	if err := d.SendCommand(schema.UserMessage("msg-1", "hello")); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(sender.payloads) != 1 {
		t.Fatalf("expected one payload, got %d", len(sender.payloads))
	}
	payload := sender.payloads[0]
	if !bytes.HasSuffix(payload, []byte("\n")) {
		t.Fatalf("command payload must be newline terminated: %q", payload)
	}
	var command schema.Command
	if err := json.Unmarshal(payload, &command); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if command.Type != schema.CommandUserMessage || command.Message != "hello" {
		t.Fatalf("round-tripped command mismatch: %+v", command)
	}
}
