package core

import (
	"context"
	"testing"
)

// recorderConnector captures outbound traffic for assertions.
type recorderConnector struct {
	sent      []OutgoingMessage
	dms       map[string][]OutgoingMessage
	reactions []string
}

func newRecorderConnector() *recorderConnector {
	return &recorderConnector{dms: make(map[string][]OutgoingMessage)}
}

func (r *recorderConnector) Send(_ context.Context, msg OutgoingMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recorderConnector) SendDM(_ context.Context, userID string, msg OutgoingMessage) error {
	r.dms[userID] = append(r.dms[userID], msg)
	return nil
}

func (r *recorderConnector) React(_ context.Context, channel, messageTS, emoji string) error {
	r.reactions = append(r.reactions, channel+"/"+messageTS+"/"+emoji)
	return nil
}

func newTestContext(event Event, conn Connector) *Context {
	return NewContext(context.Background(), event, nil, nil, nil, conn, "test.handler")
}

func TestContext_Say(t *testing.T) {
	conn := newRecorderConnector()
	ev := NewMessageEvent(User{ID: "U1", Name: "alice"}, "C1", ChannelPublic, "hi")
	ctx := newTestContext(ev, conn)

	if err := ctx.Say("hello"); err != nil {
		t.Fatalf("say failed: %v", err)
	}
	if len(conn.sent) != 1 || conn.sent[0].Channel != "C1" || conn.sent[0].Text != "hello" {
		t.Fatalf("unexpected outbound message: %#v", conn.sent)
	}

	if err := ctx.SayTo("C2", "elsewhere"); err != nil {
		t.Fatalf("sayto failed: %v", err)
	}
	if conn.sent[1].Channel != "C2" {
		t.Fatalf("SayTo targeted wrong channel: %#v", conn.sent[1])
	}
}

func TestContext_ReplyMentionsSender(t *testing.T) {
	conn := newRecorderConnector()
	ev := NewMessageEvent(User{ID: "U1", Name: "alice"}, "C1", ChannelPublic, "hi")
	ctx := newTestContext(ev, conn)

	if err := ctx.Reply("pong"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if got := conn.sent[0].Text; got != "<@U1>: pong" {
		t.Fatalf("reply must prefix the sender mention, got %q", got)
	}
}

func TestContext_ReplyInDMOmitsMention(t *testing.T) {
	conn := newRecorderConnector()
	ev := NewMessageEvent(User{ID: "U1", Name: "alice"}, "D1", ChannelIM, "hi")
	ctx := newTestContext(ev, conn)

	if err := ctx.Reply("pong"); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if got := conn.sent[0].Text; got != "pong" {
		t.Fatalf("DM reply must not carry a mention prefix, got %q", got)
	}
}

func TestContext_SayInThread(t *testing.T) {
	conn := newRecorderConnector()
	ev := NewMessageEvent(User{ID: "U1"}, "C1", ChannelPublic, "hi")
	ev.MessageTS = "111.222"
	ctx := newTestContext(ev, conn)

	if err := ctx.SayInThread("threaded"); err != nil {
		t.Fatalf("sayinthread failed: %v", err)
	}
	if conn.sent[0].ThreadTS != "111.222" {
		t.Fatalf("expected thread rooted at the message ts: %#v", conn.sent[0])
	}

	// an existing thread wins over the message's own ts
	ev.ThreadTS = "000.111"
	ctx = newTestContext(ev, conn)
	if err := ctx.SayInThread("again"); err != nil {
		t.Fatalf("sayinthread failed: %v", err)
	}
	if conn.sent[1].ThreadTS != "000.111" {
		t.Fatalf("expected existing thread ts: %#v", conn.sent[1])
	}
}

func TestContext_ReplyDMAndEphemeral(t *testing.T) {
	conn := newRecorderConnector()
	ev := NewMessageEvent(User{ID: "U1", Name: "alice"}, "C1", ChannelPublic, "hi")
	ctx := newTestContext(ev, conn)

	if err := ctx.ReplyDM("psst"); err != nil {
		t.Fatalf("replydm failed: %v", err)
	}
	if msgs := conn.dms["U1"]; len(msgs) != 1 || msgs[0].Text != "psst" {
		t.Fatalf("unexpected dm traffic: %#v", conn.dms)
	}

	if err := ctx.ReplyEphemeral("only you"); err != nil {
		t.Fatalf("replyephemeral failed: %v", err)
	}
	if conn.sent[0].EphemeralUser != "U1" {
		t.Fatalf("ephemeral reply must target the sender: %#v", conn.sent[0])
	}
}

func TestContext_React(t *testing.T) {
	conn := newRecorderConnector()
	ev := NewMessageEvent(User{ID: "U1"}, "C1", ChannelPublic, "hi")
	ev.MessageTS = "111.222"
	ctx := newTestContext(ev, conn)

	if err := ctx.React("tada"); err != nil {
		t.Fatalf("react failed: %v", err)
	}
	if len(conn.reactions) != 1 || conn.reactions[0] != "C1/111.222/tada" {
		t.Fatalf("unexpected reaction: %#v", conn.reactions)
	}
}

func TestContext_NoConnector(t *testing.T) {
	ev := NewMessageEvent(User{ID: "U1"}, "C1", ChannelPublic, "hi")
	ctx := newTestContext(ev, nil)

	if err := ctx.Say("x"); err == nil {
		t.Error("Say without a connector must fail")
	}
	if err := ctx.ReplyDM("x"); err == nil {
		t.Error("ReplyDM without a connector must fail")
	}
	if err := ctx.React("x"); err == nil {
		t.Error("React without a connector must fail")
	}
}

func TestContext_HandlerAndAtSender(t *testing.T) {
	ev := NewMessageEvent(User{ID: "U1", Name: "alice"}, "C1", ChannelPublic, "hi")
	ctx := newTestContext(ev, nil)
	if ctx.Handler() != "test.handler" {
		t.Fatalf("unexpected handler name: %q", ctx.Handler())
	}
	if ctx.AtSender() != "<@U1>" {
		t.Fatalf("unexpected sender mention: %q", ctx.AtSender())
	}
	// nil logger is replaced with a no-op, never left nil
	if ctx.Logger == nil {
		t.Fatal("logger must never be nil")
	}
}
