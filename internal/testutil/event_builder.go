package testutil

import (
	"github.com/hupe1980/slackmachine/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Example:
//
//	ev := NewEventBuilder().From("U1", "alice").In("C1").Text("ping").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EventBuilder struct {
	kind        core.EventKind
	sender      core.User
	channel     string
	channelType core.ChannelType
	text        string
	subtype     string
	threadTS    string
	messageTS   string
	reaction    string
	itemTS      string
	jobID       string
	payload     map[string]any
}

// NewEventBuilder creates a builder producing a plain channel message from
// user U1 in channel C1 by default.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		kind:        core.KindMessage,
		sender:      core.User{ID: "U1", Name: "alice"},
		channel:     "C1",
		channelType: core.ChannelPublic,
	}
}

// From sets the sender (chainable).
func (b *EventBuilder) From(id, name string) *EventBuilder {
	b.sender = core.User{ID: id, Name: name}
	return b
}

// In sets the channel (chainable).
func (b *EventBuilder) In(channel string) *EventBuilder { b.channel = channel; return b }

// Text sets the message text (chainable).
func (b *EventBuilder) Text(t string) *EventBuilder { b.text = t; return b }

// Subtype sets the platform message subtype, e.g. "message_changed"
// (chainable).
func (b *EventBuilder) Subtype(s string) *EventBuilder { b.subtype = s; return b }

// InThread sets the parent thread timestamp (chainable).
func (b *EventBuilder) InThread(ts string) *EventBuilder { b.threadTS = ts; return b }

// TS sets the message's own platform timestamp (chainable).
func (b *EventBuilder) TS(ts string) *EventBuilder { b.messageTS = ts; return b }

// DM marks the event as a direct message conversation (chainable).
func (b *EventBuilder) DM() *EventBuilder {
	b.channelType = core.ChannelIM
	b.channel = "D1"
	return b
}

// Mention turns the event into a Mention-kind event (chainable).
func (b *EventBuilder) Mention() *EventBuilder { b.kind = core.KindMention; return b }

// Reaction turns the event into a Reaction event targeting itemTS
// (chainable).
func (b *EventBuilder) Reaction(emoji, itemTS string) *EventBuilder {
	b.kind = core.KindReaction
	b.reaction = emoji
	b.itemTS = itemTS
	return b
}

// Tick turns the event into a scheduler tick for jobID (chainable).
func (b *EventBuilder) Tick(jobID string, payload map[string]any) *EventBuilder {
	b.kind = core.KindTick
	b.jobID = jobID
	b.payload = payload
	return b
}

// Build constructs the core.Event value.
func (b *EventBuilder) Build() core.Event {
	var ev core.Event
	switch b.kind {
	case core.KindMention:
		ev = core.NewMentionEvent(b.sender, b.channel, b.channelType, b.text)
	case core.KindReaction:
		ev = core.NewReactionEvent(b.sender, b.channel, b.reaction, b.itemTS)
	case core.KindTick:
		ev = core.NewTickEvent(b.jobID, b.payload)
	default:
		ev = core.NewMessageEvent(b.sender, b.channel, b.channelType, b.text)
	}
	ev.Subtype = b.subtype
	ev.ThreadTS = b.threadTS
	ev.MessageTS = b.messageTS
	return ev
}
