package core

import "context"

// Attachment is an optional structured block attached to an outgoing
// message. The connector translates it to the platform's rich-message
// format.
type Attachment struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
}

// OutgoingMessage is the payload handed to the platform connector for
// delivery. Channel addresses a conversation; EphemeralUser, when set,
// makes the message visible to that user only.
type OutgoingMessage struct {
	Channel       string       `json:"channel"`
	Text          string       `json:"text"`
	ThreadTS      string       `json:"thread_ts,omitempty"`
	EphemeralUser string       `json:"ephemeral_user,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// Connector is the send side of the platform boundary. The live connection,
// authentication and reconnect/backoff are owned by the implementation; the
// dispatch core only ever calls these primitives and treats delivery as
// fire-and-forget: transport failures are logged, never surfaced through a
// handler's return value.
type Connector interface {
	// Send posts a message to the channel named in msg.
	Send(ctx context.Context, msg OutgoingMessage) error

	// SendDM opens (or reuses) a direct message conversation with the user
	// and posts msg there. msg.Channel is ignored.
	SendDM(ctx context.Context, userID string, msg OutgoingMessage) error

	// React adds an emoji reaction to the message identified by channel
	// and timestamp.
	React(ctx context.Context, channel, messageTS, emoji string) error
}
