package plugins

import "github.com/hupe1980/slackmachine/core"

// Ping is the canonical liveness plugin: it answers "pong" when the bot is
// addressed with "ping".
type Ping struct{}

// NewPing constructs the ping plugin.
func NewPing() *Ping { return &Ping{} }

// Name implements core.Plugin.
func (p *Ping) Name() string { return "builtin.Ping" }

// Group implements core.Plugin.
func (p *Ping) Group() string { return "general" }

// Description implements core.Plugin.
func (p *Ping) Description() string { return "Check whether the bot is alive" }

// Handlers implements core.Plugin.
func (p *Ping) Handlers() []core.HandlerSpec {
	return []core.HandlerSpec{
		core.Respond("pong", core.ExactPattern("ping"), "ping: answers pong", func(ctx *core.Context) error {
			return ctx.Say("pong")
		}).WantLogger(),
	}
}
