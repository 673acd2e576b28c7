// Package eventbus fans session updates out to per-session subscribers over
// bounded channels. Slow subscribers drop updates instead of stalling the
// reducer path.
package eventbus

import (
	"context"
	"sync"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
	"pkt.systems/pslog"
)

// Bus fanouts session updates to per-session subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.SessionID]map[chan session.Update]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.SessionID]map[chan session.Update]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber for the session and returns a channel
// plus a cancel func that closes it.
func (b *Bus) Subscribe(id schema.SessionID) (<-chan session.Update, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan session.Update, b.depth)
	b.mu.Lock()
	sessionSubs := b.subs[id]
	if sessionSubs == nil {
		sessionSubs = make(map[chan session.Update]struct{})
		b.subs[id] = sessionSubs
	}
	sessionSubs[ch] = struct{}{}
	count := len(sessionSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("session", id).Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		if subs := b.subs[id]; subs != nil {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subs, id)
			}
		}
		b.mu.Unlock()
		close(ch)
		if b.log != nil {
			b.log.With("session", id).Debug("eventbus unsubscribe")
		}
	}
}

// Publish delivers an update to every subscriber of the session. Full
// subscriber channels drop the update.
func (b *Bus) Publish(id schema.SessionID, update session.Update) {
	if b == nil {
		return
	}
	b.mu.Lock()
	sessionSubs := b.subs[id]
	subs := make([]chan session.Update, 0, len(sessionSubs))
	for sub := range sessionSubs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- update:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.With("session", id).Debug("eventbus dropped", "count", dropped)
	}
}

// Sink returns an EventSink that publishes every update under id.
func (b *Bus) Sink(id schema.SessionID) session.EventSink {
	return sinkAdapter{bus: b, id: id}
}

type sinkAdapter struct {
	bus *Bus
	id  schema.SessionID
}

func (s sinkAdapter) OnUpdate(update session.Update) {
	s.bus.Publish(s.id, update)
}
