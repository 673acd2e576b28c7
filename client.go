// Package forgeline is a client for forge servers that generate complete
// applications from a natural-language query. It starts or resumes a
// generation session over HTTP, follows the live event stream over a
// supervised websocket connection, and folds every event into an observable
// session state.
package forgeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zlillymp/forgeline/bootstrap"
	"github.com/zlillymp/forgeline/internal/conn"
	"github.com/zlillymp/forgeline/internal/eventbus"
	"github.com/zlillymp/forgeline/internal/logx"
	"github.com/zlillymp/forgeline/internal/transport"
	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
	"pkt.systems/pslog"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// ServerURL is the forge server root, e.g. https://forge.example.com.
	ServerURL string

	ConnectTimeout time.Duration
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	MaxRetries     int

	// HTTPClient overrides the bootstrap HTTP client.
	HTTPClient *http.Client
	// Dial overrides the websocket dialer.
	Dial transport.DialFunc
	// Clock overrides retry timing.
	Clock conn.Clock

	Logger pslog.Logger
}

// Client composes the session lifecycle: start or resume over HTTP, then
// observe and drive the session over the supervised live connection. A
// Client owns at most one session at a time.
type Client struct {
	cfg    ClientConfig
	api    *bootstrap.Client
	fanout *eventFanout
	bus    *eventbus.Bus
	log    pslog.Logger

	mu         sync.Mutex
	sess       *session.Session
	supervisor *conn.Supervisor
	dispatcher *session.Dispatcher
	started    bool
}

// NewClient constructs a Client for the given server.
func NewClient(cfg ClientConfig) (*Client, error) {
	log := cfg.Logger
	if log == nil {
		log = logx.Ctx(context.Background())
	}
	api, err := bootstrap.New(bootstrap.Config{
		BaseURL:    cfg.ServerURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		api:    api,
		fanout: &eventFanout{},
		bus:    eventbus.New(log),
		log:    log,
	}, nil
}

// Subscribe registers a sink for session updates. Safe to call at any time.
func (c *Client) Subscribe(sink session.EventSink) {
	c.fanout.add(sink)
}

// Updates returns a buffered channel of updates for the attached session
// plus a cancel func that closes it. Requires a session; subscribers that
// fall behind drop updates rather than stalling the event path.
func (c *Client) Updates() (<-chan session.Update, func(), error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return nil, nil, schema.ErrSessionNotFound
	}
	ch, cancel := c.bus.Subscribe(sess.View().SessionID)
	return ch, cancel, nil
}

// Start begins a new generation session for query, seeds local state from
// the start stream, and opens the live connection. onBlueprint, when
// non-nil, observes progressive blueprint parses during bootstrap.
func (c *Client) Start(ctx context.Context, query string, onBlueprint bootstrap.BlueprintFunc) (schema.SessionID, error) {
	result, err := c.api.Start(ctx, query, onBlueprint)
	if err != nil {
		return "", err
	}
	if err := c.open(ctx, result); err != nil {
		return "", err
	}
	return result.SessionID, nil
}

// Attach resumes an existing session and opens the live connection.
func (c *Client) Attach(ctx context.Context, id schema.SessionID) error {
	result, err := c.api.Resume(ctx, id)
	if err != nil {
		return err
	}
	return c.open(ctx, result)
}

// open wires session, dispatcher, and supervisor together and starts the
// first connect attempt.
func (c *Client) open(ctx context.Context, result bootstrap.StartResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("client already attached to a session")
	}

	liveURL, err := c.api.WebSocketURLFor(result.WebSocketURL)
	if err != nil {
		return err
	}

	c.fanout.add(c.bus.Sink(result.SessionID))
	sess := session.New(result.SessionID, session.Config{
		Sink:   c.fanout,
		Logger: c.log,
	})
	sess.Seed(result.Query, result.Blueprint, result.Files)

	supervisor := conn.New(conn.Config{
		URL:            liveURL,
		Dial:           c.cfg.Dial,
		ConnectTimeout: c.cfg.ConnectTimeout,
		BackoffBase:    c.cfg.BackoffBase,
		BackoffCap:     c.cfg.BackoffCap,
		MaxRetries:     c.cfg.MaxRetries,
		Clock:          c.cfg.Clock,
		Logger:         c.log,
	}, conn.Callbacks{
		OnOpen:    sess.HandleOpen,
		OnMessage: sess.HandleFrame,
		OnStatus:  sess.HandleStatus,
		OnNotice: func(notice conn.Notice) {
			sess.HandleNotice(notice.String())
		},
	})

	dispatcher := session.NewDispatcher(supervisor, c.log)
	sess.SetSender(dispatcher)

	if err := supervisor.Start(ctx); err != nil {
		return fmt.Errorf("open live connection: %w", err)
	}
	c.sess = sess
	c.supervisor = supervisor
	c.dispatcher = dispatcher
	c.started = true
	return nil
}

// Stop closes the live connection without asking the server to stop
// generating. The session keeps running server side and can be reattached.
func (c *Client) Stop(reason string) {
	c.mu.Lock()
	supervisor := c.supervisor
	c.mu.Unlock()
	if supervisor != nil {
		supervisor.Close(reason)
	}
}

// SessionID returns the attached session's id, empty before Start/Attach.
func (c *Client) SessionID() schema.SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.View().SessionID
}

// View returns a point-in-time copy of the attached session's state.
func (c *Client) View() (session.View, error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return session.View{}, schema.ErrSessionNotFound
	}
	return sess.View(), nil
}

// ConnStatus reports the live connection's current status.
func (c *Client) ConnStatus() schema.ConnStatus {
	c.mu.Lock()
	supervisor := c.supervisor
	c.mu.Unlock()
	if supervisor == nil {
		return schema.ConnIdle
	}
	return supervisor.Status()
}

func (c *Client) send(command schema.Command) error {
	c.mu.Lock()
	dispatcher := c.dispatcher
	c.mu.Unlock()
	if dispatcher == nil {
		return schema.ErrNotConnected
	}
	return dispatcher.SendCommand(command)
}

// Generate asks the server to start or restart full generation.
func (c *Client) Generate() error {
	return c.send(schema.GenerateAll())
}

// StopGeneration pauses generation server side.
func (c *Client) StopGeneration() error {
	return c.send(schema.StopGeneration())
}

// ResumeGeneration continues a paused generation.
func (c *Client) ResumeGeneration() error {
	return c.send(schema.ResumeGeneration())
}

// DeployPreview requests an ephemeral preview deployment.
func (c *Client) DeployPreview() error {
	return c.send(schema.PreviewDeploy())
}

// Deploy requests a permanent deployment to target.
func (c *Client) Deploy(target schema.DeploymentTarget) error {
	return c.send(schema.Deploy(target))
}

// SendMessage sends a free-text follow-up from the user.
func (c *Client) SendMessage(id string, text string) error {
	return c.send(schema.UserMessage(id, text))
}
