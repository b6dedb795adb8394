package transport

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Send after the transport has been closed.
var ErrClosed = errors.New("transport closed")

// EventType identifies what a transport is reporting.
type EventType string

const (
	EventQR           EventType = "qr"
	EventReady        EventType = "ready"
	EventDisconnected EventType = "disconnected"
	EventMessage      EventType = "message"
)

// Event is one notification from the messaging transport.
type Event struct {
	Type EventType

	// Code is the pairing code for EventQR.
	Code string
	// Reason explains EventDisconnected.
	Reason string
	// Message is set for EventMessage.
	Message *Message
}

// Message is an inbound chat message.
type Message struct {
	ID        string
	ChatID    string
	From      string
	Body      string
	Timestamp time.Time
}

// Outgoing is a reply: text, optionally with one image attachment.
type Outgoing struct {
	ChatID  string
	ReplyTo string
	Text    string
	// Attachment is a local file path, empty for text-only replies.
	Attachment string
}

// Transport connects the bot to a chat network.
type Transport interface {
	// Start begins delivering events. The Events channel is closed when the
	// transport stops.
	Start(ctx context.Context) error
	Events() <-chan Event
	Send(ctx context.Context, msg Outgoing) error
	Close() error
}
