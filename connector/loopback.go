package connector

import (
	"context"
	"sync"

	"github.com/hupe1980/slackmachine/core"
)

// Reaction records one emoji reaction posted through the loopback.
type Reaction struct {
	Channel   string
	MessageTS string
	Emoji     string
}

// Loopback is an in-process core.Connector for examples and local
// development. Outbound messages are recorded and, when a sink channel was
// requested via Outbox, also delivered there. Safe for concurrent use.
type Loopback struct {
	mu        sync.Mutex
	sent      []core.OutgoingMessage
	dms       map[string][]core.OutgoingMessage
	reactions []Reaction
	outbox    chan core.OutgoingMessage
}

// NewLoopback constructs an empty loopback connector.
func NewLoopback() *Loopback {
	return &Loopback{dms: make(map[string][]core.OutgoingMessage)}
}

// Outbox returns a buffered channel receiving every outbound message.
// Delivery to a full outbox is dropped rather than blocking a handler.
func (l *Loopback) Outbox(size int) <-chan core.OutgoingMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.outbox == nil {
		l.outbox = make(chan core.OutgoingMessage, size)
	}
	return l.outbox
}

// Send records an outbound channel message.
func (l *Loopback) Send(_ context.Context, msg core.OutgoingMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, msg)
	if l.outbox != nil {
		select {
		case l.outbox <- msg:
		default:
		}
	}
	return nil
}

// SendDM records an outbound direct message.
func (l *Loopback) SendDM(_ context.Context, userID string, msg core.OutgoingMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dms[userID] = append(l.dms[userID], msg)
	if l.outbox != nil {
		select {
		case l.outbox <- msg:
		default:
		}
	}
	return nil
}

// React records a reaction.
func (l *Loopback) React(_ context.Context, channel, messageTS, emoji string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reactions = append(l.reactions, Reaction{Channel: channel, MessageTS: messageTS, Emoji: emoji})
	return nil
}

// Sent returns a copy of all recorded channel messages.
func (l *Loopback) Sent() []core.OutgoingMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.OutgoingMessage, len(l.sent))
	copy(out, l.sent)
	return out
}

// DMs returns a copy of the direct messages recorded for a user.
func (l *Loopback) DMs(userID string) []core.OutgoingMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.OutgoingMessage, len(l.dms[userID]))
	copy(out, l.dms[userID])
	return out
}

// Reactions returns a copy of all recorded reactions.
func (l *Loopback) Reactions() []Reaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Reaction, len(l.reactions))
	copy(out, l.reactions)
	return out
}
