package session

import (
	"context"
	"encoding/json"

	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// Sender is the transport-side surface the dispatcher needs: a readiness
// check and a write. The connection supervisor satisfies it.
type Sender interface {
	IsOpen() bool
	Send(ctx context.Context, payload []byte) error
}

// Dispatcher is the outbound gateway: it sends a command only while the
// transport is open and never blocks waiting for one.
type Dispatcher struct {
	sender Sender
	log    pslog.Logger
}

// NewDispatcher constructs a Dispatcher over the given sender.
func NewDispatcher(sender Sender, log pslog.Logger) *Dispatcher {
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Dispatcher{sender: sender, log: log}
}

// SendCommand marshals and sends one command. It returns ErrNotConnected
// when the transport is not open.
func (d *Dispatcher) SendCommand(command schema.Command) error {
	if d.sender == nil || !d.sender.IsOpen() {
		d.log.Debug("command dropped, transport not open", "type", command.Type)
		return schema.ErrNotConnected
	}
	payload, err := json.Marshal(command)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	return d.sender.Send(context.Background(), payload)
}
