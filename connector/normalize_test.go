package connector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/slackmachine/core"
)

// Interface compliance (compile-time assertion)
var _ core.Connector = (*Loopback)(nil)

func TestNormalize_Message(t *testing.T) {
	frame := []byte(`{
		"event": {
			"type": "message",
			"user": "U1",
			"username": "alice",
			"channel": "C1",
			"channel_type": "channel",
			"text": "hello world",
			"ts": "1712345678.000200"
		}
	}`)

	ev, ok := Normalize(frame)
	require.True(t, ok)
	assert.Equal(t, core.KindMessage, ev.Kind)
	assert.Equal(t, core.User{ID: "U1", Name: "alice"}, ev.Sender)
	assert.Equal(t, "C1", ev.Channel)
	assert.Equal(t, core.ChannelPublic, ev.ChannelType)
	assert.Equal(t, "hello world", ev.Text)
	assert.Equal(t, "1712345678.000200", ev.MessageTS)
	assert.Equal(t, time.Unix(1712345678, 200000).UTC(), ev.Timestamp)
}

func TestNormalize_DirectMessage(t *testing.T) {
	frame := []byte(`{
		"event": {
			"type": "message",
			"user": "U1",
			"channel": "D1",
			"channel_type": "im",
			"text": "hi",
			"ts": "1712345678.000200"
		}
	}`)

	ev, ok := Normalize(frame)
	require.True(t, ok)
	assert.Equal(t, core.ChannelIM, ev.ChannelType)
	assert.True(t, ev.IsDM())
}

func TestNormalize_EditedMessage(t *testing.T) {
	frame := []byte(`{
		"event": {
			"type": "message",
			"subtype": "message_changed",
			"channel": "C1",
			"channel_type": "channel",
			"message": {
				"user": "U1",
				"text": "now edited",
				"ts": "1712345678.000200"
			}
		}
	}`)

	ev, ok := Normalize(frame)
	require.True(t, ok)
	assert.Equal(t, "message_changed", ev.Subtype)
	assert.Equal(t, "now edited", ev.Text)
	assert.Equal(t, "C1", ev.Channel)
	assert.Equal(t, "U1", ev.Sender.ID)
}

func TestNormalize_ThreadedMessage(t *testing.T) {
	frame := []byte(`{
		"event": {
			"type": "message",
			"user": "U1",
			"channel": "C1",
			"text": "in thread",
			"ts": "1712345700.000001",
			"thread_ts": "1712345678.000200"
		}
	}`)

	ev, ok := Normalize(frame)
	require.True(t, ok)
	assert.Equal(t, "1712345678.000200", ev.ThreadTS)
}

func TestNormalize_Mention(t *testing.T) {
	frame := []byte(`{
		"event": {
			"type": "app_mention",
			"user": "U1",
			"channel": "C1",
			"text": "<@UBOT> ping",
			"ts": "1712345678.000200"
		}
	}`)

	ev, ok := Normalize(frame)
	require.True(t, ok)
	assert.Equal(t, core.KindMention, ev.Kind)
	assert.Equal(t, "<@UBOT> ping", ev.Text)
}

func TestNormalize_Reaction(t *testing.T) {
	frame := []byte(`{
		"event": {
			"type": "reaction_added",
			"user": "U1",
			"reaction": "tada",
			"item": {"type": "message", "channel": "C1", "ts": "1712345678.000200"}
		}
	}`)

	ev, ok := Normalize(frame)
	require.True(t, ok)
	assert.Equal(t, core.KindReaction, ev.Kind)
	assert.Equal(t, "tada", ev.Reaction)
	assert.Equal(t, "C1", ev.Channel)
	assert.Equal(t, "1712345678.000200", ev.ItemTS)
}

func TestNormalize_Drops(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"no event", `{"type": "hello"}`},
		{"unknown type", `{"event": {"type": "team_join"}}`},
		{"bot message", `{"event": {"type": "message", "subtype": "bot_message", "text": "beep"}}`},
		{"no user", `{"event": {"type": "message", "channel": "C1", "text": "x"}}`},
		{"mention without user", `{"event": {"type": "app_mention", "text": "x"}}`},
		{"file reaction", `{"event": {"type": "reaction_added", "user": "U1", "reaction": "tada", "item": {"type": "file"}}}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := Normalize([]byte(c.frame))
			assert.False(t, ok)
		})
	}
}

func TestParseTS(t *testing.T) {
	assert.Equal(t, time.Unix(1712345678, 200000).UTC(), parseTS("1712345678.000200"))
	assert.Equal(t, time.Unix(1712345678, 0).UTC(), parseTS("1712345678"))
	assert.True(t, parseTS("garbage").IsZero())
	assert.True(t, parseTS("").IsZero())
}

func TestLoopback_Outbox(t *testing.T) {
	l := NewLoopback()
	out := l.Outbox(2)

	require.NoError(t, l.Send(context.Background(), core.OutgoingMessage{Channel: "C1", Text: "one"}))
	msg := <-out
	assert.Equal(t, "one", msg.Text)
}
