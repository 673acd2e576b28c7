package schema

// SessionID identifies a generation session on the forge server.
type SessionID string

// PhaseID identifies a phase timeline entry.
type PhaseID string

// MessageID identifies a conversational message.
type MessageID string

// DeploymentTarget identifies the destination of a permanent deployment.
type DeploymentTarget string

// ConnStatus describes the state of the logical session connection.
type ConnStatus string

const (
	// ConnIdle indicates no connection has been attempted yet.
	ConnIdle ConnStatus = "idle"
	// ConnConnecting indicates a connect attempt is in flight.
	ConnConnecting ConnStatus = "connecting"
	// ConnConnected indicates the transport is open.
	ConnConnected ConnStatus = "connected"
	// ConnRetrying indicates a reconnect is scheduled after a failure.
	ConnRetrying ConnStatus = "retrying"
	// ConnFailed indicates the retry budget is exhausted.
	ConnFailed ConnStatus = "failed"
)
