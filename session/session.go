package session

import (
	"context"
	"sync"

	"github.com/zlillymp/forgeline/internal/logx"
	"github.com/zlillymp/forgeline/internal/wire"
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// Config captures optional dependencies for a Session.
type Config struct {
	Sink   EventSink
	Sender CommandSender
	Logger pslog.Logger
}

// Session owns one session's state and applies events strictly in arrival
// order. It is the thin stateful wrapper around the pure reducer.
type Session struct {
	mu        sync.Mutex
	state     *State
	assembler *wire.Assembler
	sink      EventSink
	sender    CommandSender
	log       pslog.Logger
}

// New constructs a Session for the given id.
func New(id schema.SessionID, cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = logx.Ctx(context.Background())
	}
	log = logx.WithSession(log, id)
	return &Session{
		state:     NewState(id),
		assembler: wire.NewAssembler(log),
		sink:      cfg.Sink,
		sender:    cfg.Sender,
		log:       log,
	}
}

// SetSender installs the outbound command path. Construction order forces
// this to happen after New: the sender wraps the transport, and the
// transport's callbacks point back at this Session.
func (s *Session) SetSender(sender CommandSender) {
	s.mu.Lock()
	s.sender = sender
	s.mu.Unlock()
}

// Seed populates the state produced by the bootstrap stream before the live
// connection opens: the query, the (possibly partial) blueprint, and the
// initial file set. Bootstrap and blueprint stages complete here.
func (s *Session) Seed(query string, blueprint schema.Blueprint, files []schema.FileSnapshot) {
	s.mu.Lock()
	s.state.Query = query
	if !blueprint.Empty() {
		s.state.Blueprint = blueprint
	}
	for _, file := range files {
		if file.Path == "" {
			continue
		}
		record := s.state.ensureFile(file.Path)
		record.Content = file.Content
	}
	markStageCompleted(s.state, schema.StageBootstrap)
	markStageCompleted(s.state, schema.StageBlueprint)
	s.mu.Unlock()
}

// Apply folds one event into the state and notifies the sink. Errors in
// event payloads never propagate; the reducer is total.
func (s *Session) Apply(event schema.Event) {
	s.mu.Lock()
	eff := reduce(s.state, event, s.log)
	sender := s.sender
	s.mu.Unlock()
	s.notify(Update{Kind: UpdateEvent, Event: event})
	if eff.resendGenerate && sender != nil {
		s.log.Info("server reports active work, re-issuing generate")
		if err := sender.SendCommand(schema.GenerateAll()); err != nil {
			s.log.Warn("generate re-issue failed", "err", err)
		}
	}
}

// HandleFrame feeds one transport frame through the fragment assembler and
// applies every completed event, preserving arrival order.
func (s *Session) HandleFrame(payload []byte) {
	for _, event := range s.assembler.Feed(payload) {
		s.Apply(event)
	}
}

// HandleOpen rearms per-connection bookkeeping after a (re)connect so the
// next snapshot reconciles exactly once.
func (s *Session) HandleOpen(reconnect bool) {
	s.mu.Lock()
	s.state.ConnStatus = schema.ConnConnected
	s.state.resetConnection()
	s.assembler.Reset()
	s.mu.Unlock()
	s.log.Debug("session connection open", "reconnect", reconnect)
	s.notify(Update{Kind: UpdateConn, Conn: schema.ConnConnected})
}

// HandleStatus records a connection status change.
func (s *Session) HandleStatus(status schema.ConnStatus) {
	s.mu.Lock()
	s.state.ConnStatus = status
	s.mu.Unlock()
	s.notify(Update{Kind: UpdateConn, Conn: status})
}

// HandleNotice surfaces a connection advisory as a system message.
func (s *Session) HandleNotice(text string) {
	s.mu.Lock()
	appendSystemMessage(s.state, text)
	s.mu.Unlock()
	s.notify(Update{Kind: UpdateNotice, Notice: text})
}

func (s *Session) notify(update Update) {
	if s.sink != nil {
		s.sink.OnUpdate(update)
	}
}

// View returns a copy of the current state safe for concurrent readers.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := View{
		SessionID:    s.state.SessionID,
		ConnStatus:   s.state.ConnStatus,
		Query:        s.state.Query,
		Blueprint:    s.state.Blueprint,
		Stages:       append([]schema.Stage(nil), s.state.Stages...),
		Deployment:   s.state.Deployment,
		IsGenerating: s.state.IsGenerating,
		IsPaused:     s.state.IsPaused,
		Files:        s.state.Files(),
	}
	view.Phases = make([]schema.PhaseTimelineItem, 0, len(s.state.Phases))
	for _, phase := range s.state.Phases {
		phase.Files = append([]schema.FileRef(nil), phase.Files...)
		view.Phases = append(view.Phases, phase)
	}
	view.Messages = make([]schema.ConversationMessage, 0, len(s.state.Messages))
	for _, message := range s.state.Messages {
		message.Tools = append([]schema.ToolEvent(nil), message.Tools...)
		view.Messages = append(view.Messages, message)
	}
	return view
}

// View is a point-in-time copy of session state.
type View struct {
	SessionID    schema.SessionID
	ConnStatus   schema.ConnStatus
	Query        string
	Blueprint    schema.Blueprint
	Stages       []schema.Stage
	Phases       []schema.PhaseTimelineItem
	Messages     []schema.ConversationMessage
	Deployment   schema.DeploymentState
	Files        []schema.FileRecord
	IsGenerating bool
	IsPaused     bool
}
