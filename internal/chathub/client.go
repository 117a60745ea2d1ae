package chathub

import "chatroom/backend/internal/models"

// Client is one live bidirectional connection as the hub sees it.
// It abstracts the underlying transport so the hub can be driven by WebSocket
// connections in production and by in-memory doubles in tests.
type Client interface {
	// GetConnID returns the opaque identifier assigned when the connection was opened.
	GetConnID() string
	// GetUserID returns the identity the transport authenticated, or "" if it is unknown
	// until the client sends storeUserId.
	GetUserID() string

	// Deliver queues an event for the connection without blocking. It returns false if the
	// connection is closed or its queue is full; the event is then dropped.
	Deliver(evt models.ServerEvent) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close stops delivery and lets the write pump close the connection. Close is idempotent.
	Close()
}

// Hub is what a transport needs from the hub to feed it a connection's traffic.
type Hub interface {
	Register(c Client) bool
	Unregister(c Client)
	Dispatch(c Client, evt models.ClientEvent) bool
}
