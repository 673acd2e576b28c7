package conn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zlillymp/forgeline/internal/transport"
	"github.com/zlillymp/forgeline/schema"
)

type fakeTimer struct {
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu        sync.Mutex
	scheduled chan time.Duration
	pending   func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{scheduled: make(chan time.Duration, 16)}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	c.pending = f
	c.mu.Unlock()
	c.scheduled <- d
	return &fakeTimer{}
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	f := c.pending
	c.pending = nil
	c.mu.Unlock()
	if f != nil {
		f()
	}
}

type fakeTransport struct {
	mu     sync.Mutex
	msgs   chan []byte
	sent   [][]byte
	closed bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{msgs: make(chan []byte, 16)}
}

func (t *fakeTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-t.msgs:
		if !ok {
			return nil, errors.New("transport closed")
		}
		return msg, nil
	}
}

func (t *fakeTransport) Send(_ context.Context, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, append([]byte(nil), payload...))
	return nil
}

func (t *fakeTransport) Close(string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) fail() {
	close(t.msgs)
}

func (t *fakeTransport) wasClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func waitDelay(t *testing.T, clock *fakeClock) time.Duration {
	t.Helper()
	select {
	case d := <-clock.scheduled:
		return d
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for scheduled retry")
		return 0
	}
}

func waitNotice(t *testing.T, notices chan Notice) Notice {
	t.Helper()
	select {
	case n := <-notices:
		return n
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for notice")
		return Notice{}
	}
}

func TestBackoffScheduleAndTerminalFailure(t *testing.T) {
	clock := newFakeClock()
	dialErr := errors.New("connection refused")
	dial := func(context.Context, string) (transport.Transport, error) {
		return nil, dialErr
	}
	notices := make(chan Notice, 16)
	sup := New(Config{
		URL:         "wss://forge.test/session",
		Dial:        dial,
		BackoffBase: time.Second,
		BackoffCap:  30 * time.Second,
		MaxRetries:  5,
		Clock:       clock,
	}, Callbacks{
		OnNotice: func(n Notice) { notices <- n },
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second}
	for i, wantDelay := range want {
		delay := waitDelay(t, clock)
		if delay != wantDelay {
			t.Fatalf("retry %d: delay %s, want %s", i+1, delay, wantDelay)
		}
		notice := waitNotice(t, notices)
		if notice.Terminal {
			t.Fatalf("retry %d: unexpected terminal notice", i+1)
		}
		if notice.Delay != wantDelay {
			t.Fatalf("retry %d: notice delay %s, want %s", i+1, notice.Delay, wantDelay)
		}
		if notice.AttemptsLeft != 5-(i+1) {
			t.Fatalf("retry %d: attempts left %d, want %d", i+1, notice.AttemptsLeft, 5-(i+1))
		}
		clock.fire()
	}

	notice := waitNotice(t, notices)
	if !notice.Terminal {
		t.Fatalf("expected terminal notice, got %+v", notice)
	}
	if sup.Status() != schema.ConnFailed {
		t.Fatalf("expected failed status, got %s", sup.Status())
	}
	select {
	case d := <-clock.scheduled:
		t.Fatalf("unexpected timer after terminal failure: %s", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSuccessfulOpenResetsRetries(t *testing.T) {
	clock := newFakeClock()
	var mu sync.Mutex
	dials := 0
	var second *fakeTransport
	dial := func(context.Context, string) (transport.Transport, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		if dials == 1 {
			return nil, errors.New("refused")
		}
		tr := newFakeTransport()
		second = tr
		return tr, nil
	}
	opened := make(chan bool, 4)
	notices := make(chan Notice, 16)
	sup := New(Config{
		URL:        "wss://forge.test/session",
		Dial:       dial,
		MaxRetries: 5,
		Clock:      clock,
	}, Callbacks{
		OnOpen:   func(reconnect bool) { opened <- reconnect },
		OnNotice: func(n Notice) { notices <- n },
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if d := waitDelay(t, clock); d != 2*time.Second {
		t.Fatalf("first delay %s, want 2s", d)
	}
	waitNotice(t, notices)
	clock.fire()

	select {
	case reconnect := <-opened:
		if reconnect {
			t.Fatalf("first open should not be flagged reconnect")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for open")
	}
	if sup.Status() != schema.ConnConnected {
		t.Fatalf("expected connected, got %s", sup.Status())
	}

	// Drop the live transport: the next backoff starts over at the first
	// delay because the successful open reset the retry count.
	mu.Lock()
	tr := second
	mu.Unlock()
	tr.fail()
	if d := waitDelay(t, clock); d != 2*time.Second {
		t.Fatalf("post-open delay %s, want 2s", d)
	}
	notice := waitNotice(t, notices)
	if notice.AttemptsLeft != 4 {
		t.Fatalf("attempts left %d, want 4", notice.AttemptsLeft)
	}
}

func TestMessagesDeliveredInOrder(t *testing.T) {
	tr := newFakeTransport()
	dial := func(context.Context, string) (transport.Transport, error) {
		return tr, nil
	}
	got := make(chan []byte, 16)
	sup := New(Config{URL: "wss://forge.test/session", Dial: dial, Clock: newFakeClock()}, Callbacks{
		OnMessage: func(p []byte) { got <- p },
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	tr.msgs <- []byte("one")
	tr.msgs <- []byte("two")
	tr.msgs <- []byte("three")
	for _, want := range []string{"one", "two", "three"} {
		select {
		case p := <-got:
			if string(p) != want {
				t.Fatalf("got %q, want %q", p, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestCloseDiscardsLateDial(t *testing.T) {
	release := make(chan struct{})
	tr := newFakeTransport()
	dial := func(ctx context.Context, _ string) (transport.Transport, error) {
		<-release
		return tr, nil
	}
	opened := make(chan bool, 1)
	sup := New(Config{URL: "wss://forge.test/session", Dial: dial, Clock: newFakeClock()}, Callbacks{
		OnOpen: func(reconnect bool) { opened <- reconnect },
	})
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sup.Close("unmount")
	close(release)

	select {
	case <-opened:
		t.Fatalf("open fired for a dial completing after Close")
	case <-time.After(100 * time.Millisecond):
	}
	deadline := time.Now().Add(2 * time.Second)
	for !tr.wasClosed() {
		if time.Now().After(deadline) {
			t.Fatalf("late transport was not closed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSendRequiresOpenTransport(t *testing.T) {
	tr := newFakeTransport()
	dial := func(context.Context, string) (transport.Transport, error) {
		return tr, nil
	}
	connected := make(chan struct{})
	sup := New(Config{URL: "wss://forge.test/session", Dial: dial, Clock: newFakeClock()}, Callbacks{
		OnOpen: func(bool) { close(connected) },
	})
	if err := sup.Send(context.Background(), []byte("early")); !errors.Is(err, schema.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected before start, got %v", err)
	}
	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for open")
	}
	if err := sup.Send(context.Background(), []byte(`{"type":"generate_all"}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	tr.mu.Lock()
	sent := len(tr.sent)
	tr.mu.Unlock()
	if sent != 1 {
		t.Fatalf("expected 1 sent payload, got %d", sent)
	}
}

func TestStartAfterCloseRejected(t *testing.T) {
	sup := New(Config{URL: "wss://forge.test/session", Clock: newFakeClock(), Dial: func(context.Context, string) (transport.Transport, error) {
		return nil, errors.New("unused")
	}}, Callbacks{})
	sup.Close("bye")
	if err := sup.Start(context.Background()); !errors.Is(err, schema.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}
