package session

import "github.com/zlillymp/forgeline/schema"

// UpdateKind tags a session update delivered to sinks.
type UpdateKind string

const (
	// UpdateEvent marks a reduced server event.
	UpdateEvent UpdateKind = "event"
	// UpdateConn marks a connection status change.
	UpdateConn UpdateKind = "conn"
	// UpdateNotice marks a user-visible advisory.
	UpdateNotice UpdateKind = "notice"
)

// Update describes one change applied to session state.
type Update struct {
	Kind   UpdateKind
	Event  schema.Event
	Conn   schema.ConnStatus
	Notice string
}

// EventSink receives session updates after each state change.
type EventSink interface {
	OnUpdate(update Update)
}

// CommandSender forwards outbound commands to the transport. Implemented by
// Dispatcher; faked in tests.
type CommandSender interface {
	SendCommand(command schema.Command) error
}
