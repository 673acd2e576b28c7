// Package conn supervises one logical connection to the forge server:
// connect, detect failure, retry with bounded exponential backoff, and guard
// against events from superseded attempts.
package conn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zlillymp/forgeline/internal/transport"
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// Defaults for Config fields left zero.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultBackoffBase    = time.Second
	DefaultBackoffCap     = 30 * time.Second
	DefaultMaxRetries     = 5
)

// Config parameterizes a Supervisor.
type Config struct {
	URL            string
	Dial           transport.DialFunc
	ConnectTimeout time.Duration
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	MaxRetries     int
	Clock          Clock
	Logger         pslog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.Dial == nil {
		cfg.Dial = transport.Dial
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = DefaultBackoffCap
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return cfg
}

// Notice is a user-visible connection advisory.
type Notice struct {
	Terminal     bool
	Delay        time.Duration
	AttemptsLeft int
	Err          error
}

func (n Notice) String() string {
	if n.Terminal {
		return fmt.Sprintf("connection lost permanently: %v", n.Err)
	}
	return fmt.Sprintf("connection lost, retrying in %s (%d attempts left): %v", n.Delay, n.AttemptsLeft, n.Err)
}

// Callbacks receive supervisor events. They are invoked sequentially from
// supervisor goroutines; OnMessage preserves transport arrival order.
type Callbacks struct {
	OnOpen    func(reconnect bool)
	OnMessage func(payload []byte)
	OnStatus  func(status schema.ConnStatus)
	OnNotice  func(notice Notice)
}

// Supervisor owns the lifecycle of one logical connection.
type Supervisor struct {
	cfg Config
	cb  Callbacks
	log pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	status  schema.ConnStatus
	attempt uint64
	retries int
	timer   Timer
	current transport.Transport
	opened  bool
	closed  bool
}

// New constructs a Supervisor. Start must be called to connect.
func New(cfg Config, cb Callbacks) *Supervisor {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Supervisor{cfg: cfg, cb: cb, log: log, status: schema.ConnIdle}
}

// Start begins the first connect attempt. ctx bounds the supervisor's whole
// lifetime; cancelling it stops read loops and pending dials.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return schema.ErrSessionClosed
	}
	if s.status != schema.ConnIdle {
		s.mu.Unlock()
		return fmt.Errorf("supervisor already started (status %s)", s.status)
	}
	s.ctx = ctx
	id := s.beginAttemptLocked()
	s.mu.Unlock()
	s.notifyStatus(schema.ConnConnecting)
	go s.connect(id)
	return nil
}

// Status returns the current connection status.
func (s *Supervisor) Status() schema.ConnStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsOpen reports whether the transport is connected.
func (s *Supervisor) IsOpen() bool {
	return s.Status() == schema.ConnConnected
}

// Send writes a payload if the transport is open. It performs one readiness
// check and never blocks waiting for a connection.
func (s *Supervisor) Send(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	tr := s.current
	open := s.status == schema.ConnConnected
	s.mu.Unlock()
	if !open || tr == nil {
		return schema.ErrNotConnected
	}
	return tr.Send(ctx, payload)
}

// Close tears the connection down and suppresses all further reconnects.
func (s *Supervisor) Close(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	tr := s.current
	s.current = nil
	s.mu.Unlock()
	if tr != nil {
		_ = tr.Close(reason)
	}
	s.log.Debug("supervisor closed", "reason", reason)
}

// beginAttemptLocked tags and records a new connect attempt.
func (s *Supervisor) beginAttemptLocked() uint64 {
	s.attempt++
	s.status = schema.ConnConnecting
	return s.attempt
}

func (s *Supervisor) connect(id uint64) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	log := s.log.With("attempt", id)
	log.Debug("connect start", "url", s.cfg.URL)

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	tr, err := s.cfg.Dial(dialCtx, s.cfg.URL)
	cancel()

	s.mu.Lock()
	if s.closed || id != s.attempt {
		s.mu.Unlock()
		if tr != nil {
			_ = tr.Close("superseded")
		}
		log.Debug("connect result discarded", "stale", true)
		return
	}
	if err != nil {
		s.mu.Unlock()
		log.Warn("connect failed", "err", err)
		s.handleFailure(id, err)
		return
	}
	s.current = tr
	s.status = schema.ConnConnected
	s.retries = 0
	s.stopTimerLocked()
	reconnect := s.opened
	s.opened = true
	s.mu.Unlock()

	log.Info("connected", "reconnect", reconnect)
	s.notifyStatus(schema.ConnConnected)
	if s.cb.OnOpen != nil {
		s.cb.OnOpen(reconnect)
	}
	s.readLoop(ctx, id, tr)
}

func (s *Supervisor) readLoop(ctx context.Context, id uint64, tr transport.Transport) {
	for {
		payload, err := tr.Read(ctx)
		s.mu.Lock()
		stale := s.closed || id != s.attempt
		s.mu.Unlock()
		if stale {
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("transport read failed", "attempt", id, "err", err)
			s.handleFailure(id, err)
			return
		}
		if s.cb.OnMessage != nil {
			s.cb.OnMessage(payload)
		}
	}
}

// handleFailure applies the retry policy to a connect or transport error
// belonging to attempt id. Failures from superseded attempts are ignored.
func (s *Supervisor) handleFailure(id uint64, err error) {
	s.mu.Lock()
	if s.closed || id != s.attempt {
		s.mu.Unlock()
		return
	}
	s.current = nil
	if s.retries >= s.cfg.MaxRetries {
		s.status = schema.ConnFailed
		s.stopTimerLocked()
		s.mu.Unlock()
		s.log.Error("retries exhausted", "attempts", s.cfg.MaxRetries, "err", err)
		s.notifyStatus(schema.ConnFailed)
		s.notify(Notice{Terminal: true, Err: err})
		return
	}
	s.retries++
	retry := s.retries
	delay := backoffDelay(s.cfg.BackoffBase, s.cfg.BackoffCap, retry)
	attemptsLeft := s.cfg.MaxRetries - retry
	s.status = schema.ConnRetrying
	s.stopTimerLocked()
	expect := s.attempt
	s.timer = s.cfg.Clock.AfterFunc(delay, func() { s.retryFire(expect) })
	s.mu.Unlock()

	s.log.Info("retry scheduled", "retry", retry, "delay", delay, "attempts_left", attemptsLeft)
	s.notifyStatus(schema.ConnRetrying)
	s.notify(Notice{Delay: delay, AttemptsLeft: attemptsLeft, Err: err})
}

func (s *Supervisor) retryFire(expect uint64) {
	s.mu.Lock()
	if s.closed || s.attempt != expect || s.status != schema.ConnRetrying {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	id := s.beginAttemptLocked()
	s.mu.Unlock()
	s.notifyStatus(schema.ConnConnecting)
	go s.connect(id)
}

func (s *Supervisor) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Supervisor) notifyStatus(status schema.ConnStatus) {
	if s.cb.OnStatus != nil {
		s.cb.OnStatus(status)
	}
}

func (s *Supervisor) notify(notice Notice) {
	if s.cb.OnNotice != nil {
		s.cb.OnNotice(notice)
	}
}

// backoffDelay computes min(base*2^retry, limit) for the 1-based retry
// number.
func backoffDelay(base, limit time.Duration, retry int) time.Duration {
	delay := base
	for i := 0; i < retry; i++ {
		delay *= 2
		if delay >= limit {
			return limit
		}
	}
	return delay
}
