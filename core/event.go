package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind discriminates the variants of the Event union.
type EventKind string

const (
	// KindMessage is an ordinary channel or DM message.
	KindMessage EventKind = "message"
	// KindMention is a message that explicitly mentions the bot
	// (platform "app_mention" style events).
	KindMention EventKind = "mention"
	// KindReaction is an emoji reaction added to a message.
	KindReaction EventKind = "reaction"
	// KindTick is a synthetic event fired by the scheduler bridge.
	KindTick EventKind = "tick"
)

// ChannelType classifies the conversation an event originated in.
type ChannelType string

const (
	// ChannelPublic is a regular public channel.
	ChannelPublic ChannelType = "channel"
	// ChannelGroup is a private channel / group conversation.
	ChannelGroup ChannelType = "group"
	// ChannelIM is a direct message conversation with the bot.
	ChannelIM ChannelType = "im"
)

// User identifies the sender of an event.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Mention renders the user as a platform mention token, e.g. "<@U123>".
func (u User) Mention() string { return "<@" + u.ID + ">" }

// Event is a normalized inbound occurrence offered to the dispatch engine.
// It is a tagged union: Kind selects which of the kind-specific fields are
// meaningful. Events are immutable once constructed; handlers receive them
// by value and never mutate shared state. They are created by the platform
// connector (messages, mentions, reactions) or by the scheduler bridge
// (ticks), never by plugins.
type Event struct {
	ID          string      `json:"id"`
	Kind        EventKind   `json:"kind"`
	Timestamp   time.Time   `json:"timestamp"`
	Sender      User        `json:"sender,omitempty"`
	Channel     string      `json:"channel,omitempty"`
	ChannelType ChannelType `json:"channel_type,omitempty"`

	// Text is the raw message text for Message and Mention events. The
	// dispatch engine may hand handlers a copy with the addressing prefix
	// stripped; the original event is never rewritten in place.
	Text string `json:"text,omitempty"`

	// ThreadTS is the platform timestamp of the parent thread, if the
	// message was posted inside one.
	ThreadTS string `json:"thread_ts,omitempty"`

	// MessageTS is the platform timestamp identifying the message itself
	// (used to react to it or reply in-thread).
	MessageTS string `json:"message_ts,omitempty"`

	// Subtype carries the platform message subtype, e.g. "message_changed"
	// for edits. Empty for plain messages.
	Subtype string `json:"subtype,omitempty"`

	// Reaction is the emoji name for Reaction events ("thumbsup").
	Reaction string `json:"reaction,omitempty"`

	// ItemTS is the timestamp of the message a Reaction event targets.
	ItemTS string `json:"item_ts,omitempty"`

	// JobID identifies the scheduled job that produced a Tick event.
	JobID string `json:"job_id,omitempty"`

	// Payload is the opaque payload supplied at Schedule time for Tick
	// events.
	Payload map[string]any `json:"payload,omitempty"`
}

// NewMessageEvent constructs a Message event.
func NewMessageEvent(sender User, channel string, channelType ChannelType, text string) Event {
	return Event{
		ID:          NewID(),
		Kind:        KindMessage,
		Timestamp:   time.Now().UTC(),
		Sender:      sender,
		Channel:     channel,
		ChannelType: channelType,
		Text:        text,
	}
}

// NewMentionEvent constructs a Mention event. Text still carries the raw
// message including the mention token; the dispatch engine strips it.
func NewMentionEvent(sender User, channel string, channelType ChannelType, text string) Event {
	e := NewMessageEvent(sender, channel, channelType, text)
	e.Kind = KindMention
	return e
}

// NewReactionEvent constructs a Reaction event targeting the message
// identified by itemTS.
func NewReactionEvent(sender User, channel, reaction, itemTS string) Event {
	return Event{
		ID:        NewID(),
		Kind:      KindReaction,
		Timestamp: time.Now().UTC(),
		Sender:    sender,
		Channel:   channel,
		Reaction:  reaction,
		ItemTS:    itemTS,
	}
}

// NewTickEvent constructs a ScheduledTick event carrying the payload given
// at Schedule time. Ticks have no sender or channel.
func NewTickEvent(jobID string, payload map[string]any) Event {
	return Event{
		ID:        NewID(),
		Kind:      KindTick,
		Timestamp: time.Now().UTC(),
		JobID:     jobID,
		Payload:   payload,
	}
}

// NewID generates a unique identifier for event correlation.
func NewID() string { return uuid.NewString() }

// IsTextual reports whether the event carries message text that text
// matchers apply to.
func (e Event) IsTextual() bool { return e.Kind == KindMessage || e.Kind == KindMention }

// IsDM reports whether the event originated in a direct message
// conversation.
func (e Event) IsDM() bool { return e.ChannelType == ChannelIM }
