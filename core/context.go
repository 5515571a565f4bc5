package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/slackmachine/logging"
)

// Context carries everything a handler invocation may touch: the immutable
// triggering Event, named capture groups from the text matcher, a logger
// pre-bound with sender and handler identity, the plugin's storage handle,
// and reply/send capabilities scoped to the originating channel.
//
// A Context is constructed fresh for every matched handler call and
// discarded afterwards; it is never shared across invocations, so handlers
// may use it without synchronization. It embeds a context.Context (already
// detached from the inbound delivery, see dispatch), so it can be passed
// directly to storage and connector calls.
type Context struct {
	context.Context

	// Event is the triggering event. For respond-to handlers Text has the
	// addressing prefix already stripped.
	Event Event

	// Matches holds the named capture groups of the handler's pattern.
	// Empty for non-text handlers.
	Matches map[string]string

	// Logger is bound with user_id, user_name and the handler's
	// fully-qualified name. A no-op logger when the handler did not ask
	// for one.
	Logger logging.Logger

	// Storage is the plugin's namespaced storage handle, nil when the
	// handler did not ask for one.
	Storage Storage

	connector Connector
	handler   string
}

// NewContext assembles a per-invocation Context. Called by the dispatch
// engine; exported for tests and for embedding the core in other runtimes.
func NewContext(
	ctx context.Context,
	event Event,
	matches map[string]string,
	logger logging.Logger,
	store Storage,
	conn Connector,
	handler string,
) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{
		Context:   ctx,
		Event:     event,
		Matches:   matches,
		Logger:    logger,
		Storage:   store,
		connector: conn,
		handler:   handler,
	}
}

// Handler returns the fully-qualified name of the invoked handler.
func (c *Context) Handler() string { return c.handler }

// AtSender renders the event sender as a mention token for use in message
// text.
func (c *Context) AtSender() string { return c.Event.Sender.Mention() }

// Say sends a message to the channel the event originated in.
func (c *Context) Say(text string, attachments ...Attachment) error {
	return c.SayTo(c.Event.Channel, text, attachments...)
}

// SayTo sends a message to an arbitrary channel.
func (c *Context) SayTo(channel, text string, attachments ...Attachment) error {
	if c.connector == nil {
		return fmt.Errorf("no connector configured")
	}
	return c.connector.Send(c.Context, OutgoingMessage{
		Channel:     channel,
		Text:        text,
		Attachments: attachments,
	})
}

// SayInThread sends a message into the thread of the triggering message,
// starting one if needed.
func (c *Context) SayInThread(text string) error {
	if c.connector == nil {
		return fmt.Errorf("no connector configured")
	}
	ts := c.Event.ThreadTS
	if ts == "" {
		ts = c.Event.MessageTS
	}
	return c.connector.Send(c.Context, OutgoingMessage{
		Channel:  c.Event.Channel,
		Text:     text,
		ThreadTS: ts,
	})
}

// Reply answers the sender in the originating channel, prefixing the text
// with a mention of the sender. In DM conversations the prefix is omitted.
func (c *Context) Reply(text string, attachments ...Attachment) error {
	if !c.Event.IsDM() {
		text = c.AtSender() + ": " + text
	}
	return c.Say(text, attachments...)
}

// ReplyEphemeral answers the sender with a message only they can see.
func (c *Context) ReplyEphemeral(text string) error {
	if c.connector == nil {
		return fmt.Errorf("no connector configured")
	}
	return c.connector.Send(c.Context, OutgoingMessage{
		Channel:       c.Event.Channel,
		Text:          text,
		EphemeralUser: c.Event.Sender.ID,
	})
}

// ReplyDM answers the sender in a direct message conversation.
func (c *Context) ReplyDM(text string, attachments ...Attachment) error {
	if c.connector == nil {
		return fmt.Errorf("no connector configured")
	}
	return c.connector.SendDM(c.Context, c.Event.Sender.ID, OutgoingMessage{
		Text:        text,
		Attachments: attachments,
	})
}

// React adds an emoji reaction to the triggering message.
func (c *Context) React(emoji string) error {
	if c.connector == nil {
		return fmt.Errorf("no connector configured")
	}
	return c.connector.React(c.Context, c.Event.Channel, c.Event.MessageTS, emoji)
}
