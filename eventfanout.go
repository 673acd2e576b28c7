package forgeline

import (
	"sync"

	"github.com/zlillymp/forgeline/session"
)

// eventFanout dispatches session updates to every registered sink. Sinks
// may be added before or after the live connection opens.
type eventFanout struct {
	mu    sync.Mutex
	sinks []session.EventSink
}

func (f *eventFanout) add(sink session.EventSink) {
	if sink == nil {
		return
	}
	f.mu.Lock()
	f.sinks = append(f.sinks, sink)
	f.mu.Unlock()
}

func (f *eventFanout) OnUpdate(update session.Update) {
	f.mu.Lock()
	sinks := append([]session.EventSink(nil), f.sinks...)
	f.mu.Unlock()
	for _, sink := range sinks {
		sink.OnUpdate(update)
	}
}
