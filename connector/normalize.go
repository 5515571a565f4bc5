package connector

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/slackmachine/core"
)

// Normalize decodes one raw Events API frame into a core.Event. The second
// result is false for frame types the dispatch core does not consume
// (acknowledgements, bot messages, unknown event types); dropping them here
// keeps the engine's input strictly to the Event union.
func Normalize(frame []byte) (core.Event, bool) {
	event := gjson.GetBytes(frame, "event")
	if !event.Exists() {
		return core.Event{}, false
	}

	switch event.Get("type").String() {
	case "message":
		return normalizeMessage(event)
	case "app_mention":
		return normalizeMention(event)
	case "reaction_added":
		return normalizeReaction(event)
	default:
		return core.Event{}, false
	}
}

func normalizeMessage(event gjson.Result) (core.Event, bool) {
	// Edits nest the current message one level down; lift it and keep the
	// channel fields plus the subtype so handlers can opt in to edits.
	subtype := event.Get("subtype").String()
	payload := event
	if subtype == "message_changed" {
		payload = event.Get("message")
	}
	if payload.Get("subtype").String() == "bot_message" {
		return core.Event{}, false
	}
	userID := payload.Get("user").String()
	if userID == "" {
		return core.Event{}, false
	}

	ev := core.NewMessageEvent(
		sender(payload),
		event.Get("channel").String(),
		channelType(event),
		payload.Get("text").String(),
	)
	ev.Subtype = subtype
	ev.MessageTS = payload.Get("ts").String()
	ev.ThreadTS = payload.Get("thread_ts").String()
	if ts := parseTS(payload.Get("ts").String()); !ts.IsZero() {
		ev.Timestamp = ts
	}
	return ev, true
}

func normalizeMention(event gjson.Result) (core.Event, bool) {
	userID := event.Get("user").String()
	if userID == "" {
		return core.Event{}, false
	}
	ev := core.NewMentionEvent(
		sender(event),
		event.Get("channel").String(),
		channelType(event),
		event.Get("text").String(),
	)
	ev.MessageTS = event.Get("ts").String()
	ev.ThreadTS = event.Get("thread_ts").String()
	if ts := parseTS(event.Get("ts").String()); !ts.IsZero() {
		ev.Timestamp = ts
	}
	return ev, true
}

func normalizeReaction(event gjson.Result) (core.Event, bool) {
	if event.Get("item.type").String() != "message" {
		return core.Event{}, false
	}
	ev := core.NewReactionEvent(
		sender(event),
		event.Get("item.channel").String(),
		event.Get("reaction").String(),
		event.Get("item.ts").String(),
	)
	return ev, true
}

func sender(event gjson.Result) core.User {
	return core.User{
		ID:   event.Get("user").String(),
		Name: event.Get("username").String(),
	}
}

func channelType(event gjson.Result) core.ChannelType {
	switch event.Get("channel_type").String() {
	case "im":
		return core.ChannelIM
	case "group", "mpim":
		return core.ChannelGroup
	default:
		return core.ChannelPublic
	}
}

// parseTS converts a platform timestamp ("1712345678.000200") to time.Time.
func parseTS(ts string) time.Time {
	secs, frac, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}
	}
	var nsec int64
	if frac != "" {
		if micros, err := strconv.ParseInt(frac, 10, 64); err == nil && len(frac) == 6 {
			nsec = micros * int64(time.Microsecond)
		}
	}
	return time.Unix(sec, nsec).UTC()
}
