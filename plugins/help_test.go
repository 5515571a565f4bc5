package plugins_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/slackmachine/connector"
	"github.com/hupe1980/slackmachine/core"
	"github.com/hupe1980/slackmachine/plugins"
)

// fakeCatalog returns a canned ByGroup projection.
type fakeCatalog struct {
	groups map[string][]core.HandlerSpec
}

func (f *fakeCatalog) ByGroup() map[string][]core.HandlerSpec { return f.groups }

func nop(*core.Context) error { return nil }

func spec(plugin, name, pattern, help string) core.HandlerSpec {
	s := core.Respond(name, pattern, help, nop)
	s.PluginID = plugin
	return s
}

func TestHelp_RenderAllSortsGroups(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{
		"zeta": {spec("z", "h1", "^one$", "one: first")},
		"alfa": {spec("a", "h2", "^two$", "two: second")},
	}})

	out := h.Render("")
	assert.Less(t, assertIndex(t, out, "alfa:"), assertIndex(t, out, "zeta:"),
		"groups must render in sorted order")
}

// assertIndex fails the test when sub is absent and returns its offset.
func assertIndex(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	if idx < 0 {
		t.Fatalf("%q not found in %q", sub, s)
	}
	return idx
}

func TestHelp_RenderKeepsRegistrationOrderWithinGroup(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{
		"general": {
			spec("p", "a", "^a$", "a: first"),
			spec("p", "b", "^b$", "b: second"),
			spec("p", "c", "^c$", "c: third"),
		},
	}})

	out := h.Render("general")
	assert.Less(t, assertIndex(t, out, "a: first"), assertIndex(t, out, "b: second"))
	assert.Less(t, assertIndex(t, out, "b: second"), assertIndex(t, out, "c: third"))
}

func TestHelp_RenderSingleGroup(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{
		"general": {spec("p", "a", "^a$", "a: help")},
		"fun":     {spec("p", "b", "^b$", "b: help")},
	}})

	out := h.Render("fun")
	assertIndex(t, out, "fun:")
	assert.NotContains(t, out, "general:")
}

func TestHelp_RenderUnknownGroup(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{}})
	assert.Equal(t, "No such group: nope", h.Render("nope"))
}

func TestHelp_RenderEmptyCatalog(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{}})
	assert.Equal(t, "No plugins loaded.", h.Render(""))
}

func TestHelp_BlankHelpTolerated(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{
		"general": {spec("p", "quiet", "^quiet$", "")},
	}})

	out := h.Render("")
	assertIndex(t, out, "^quiet$")
}

func TestHelp_SignatureRendering(t *testing.T) {
	listen := core.Listen("ears", "deploy", "", nop)
	reaction := core.OnReaction("cheer", "tada", "", nop)
	schedule := core.OnSchedule("tick", core.Trigger{Every: time.Minute}, "", nop)

	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{
		"g": {listen, reaction, schedule},
	}})

	out := h.Render("g")
	assertIndex(t, out, "hears deploy")
	assertIndex(t, out, ":tada:")
	assertIndex(t, out, "every 1m0s")
}

func TestHelp_Handlers(t *testing.T) {
	h := plugins.NewHelp(&fakeCatalog{groups: map[string][]core.HandlerSpec{
		"general": {spec("p", "a", "^a$", "a: does a")},
	}})

	handlers := h.Handlers()
	require.Len(t, handlers, 2)

	conn := connector.NewLoopback()
	ev := core.NewMessageEvent(core.User{ID: "U1"}, "C1", core.ChannelPublic, "help")
	ctx := core.NewContext(context.Background(), ev, nil, nil, nil, conn, "builtin.Help.all")
	require.NoError(t, handlers[0].Func(ctx))

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "a: does a")

	// the group variant reads its capture group
	ctx = core.NewContext(context.Background(), ev, map[string]string{"group": "general"}, nil, nil, conn, "builtin.Help.group")
	require.NoError(t, handlers[1].Func(ctx))
	assert.Contains(t, conn.Sent()[1].Text, "general:")
}
