package gamehub

import "flashfrenzy/backend/internal/models"

// Client is the interface for one live connection to the relay, whatever the
// transport underneath. The hub addresses connections, not users: one user may
// hold several connections at once (tab duplication), each its own Client.
type Client interface {
	// ConnID returns the unique identifier of this connection.
	ConnID() string

	// UserID returns the identity that owns the connection, or "" before the
	// join-user-room handshake has happened.
	UserID() string
	// SetUserID binds the connection to an identity. Called by the hub when it
	// processes the connection's join-user-room event.
	SetUserID(string)

	// SendChannel returns the channel the hub writes outbound events to.
	// It is a send-only channel.
	SendChannel() chan<- models.Event

	// Run starts the connection's read and write pumps.
	Run()
	// Close shuts down the connection and its channels.
	Close()
}
