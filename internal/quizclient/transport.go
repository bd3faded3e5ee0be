// Package quizclient is the Go client for the realtime match surface. It
// hides the two delivery mechanisms (persistent websocket, polling emulation)
// behind one transport contract so game code never cares which one carried
// an event.
package quizclient

import (
	"errors"

	"flashfrenzy/backend/internal/models"
)

// Transport kinds, for display and tests.
const (
	TransportWebSocket = "websocket"
	TransportPolling   = "polling"
	TransportNone      = "none"
)

// ErrNotConnected is returned by Emit when the transport is down. Callers
// treat it as a dropped event, not a failure: nothing is queued or retried.
var ErrNotConnected = errors.New("quizclient: transport not connected")

// Transport is one delivery mechanism for the event surface.
type Transport interface {
	// Connect establishes the transport. An error means this mechanism is
	// unusable and the caller should try the next one.
	Connect() error
	// Emit sends one event. Events emitted while disconnected are dropped.
	Emit(ev models.Event) error
	// Events is the stream of inbound events. Closed when the transport dies.
	Events() <-chan models.Event
	// Connected reports current connectivity. False is a steady state the
	// caller must tolerate indefinitely.
	Connected() bool
	Close()
}
