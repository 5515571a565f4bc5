package plugins

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/slackmachine/core"
)

// Catalog is the read-only registry projection the help plugin renders.
// Satisfied by *registry.Registry.
type Catalog interface {
	ByGroup() map[string][]core.HandlerSpec
}

// Help renders the command catalog as a reply. Groups are rendered in
// sorted order for stable output; within a group, handlers keep their
// registration order. Handlers without help text get a blank entry rather
// than being dropped.
type Help struct {
	catalog Catalog
}

// NewHelp constructs the help plugin over a catalog.
func NewHelp(catalog Catalog) *Help { return &Help{catalog: catalog} }

// Name implements core.Plugin.
func (h *Help) Name() string { return "builtin.Help" }

// Group implements core.Plugin.
func (h *Help) Group() string { return "help" }

// Description implements core.Plugin.
func (h *Help) Description() string { return "Getting help about the loaded plugins" }

// Handlers implements core.Plugin.
func (h *Help) Handlers() []core.HandlerSpec {
	return []core.HandlerSpec{
		core.Respond("all", `^help$`, "help: lists all available commands", func(ctx *core.Context) error {
			return ctx.Say(h.Render(""))
		}),
		core.Respond("group", `^help (?P<group>\S+)$`, "help <group>: lists the commands of one group", func(ctx *core.Context) error {
			return ctx.Say(h.Render(ctx.Matches["group"]))
		}),
	}
}

// Render builds the catalog text. An empty group renders everything; an
// unknown group renders a short notice instead of an error.
func (h *Help) Render(group string) string {
	byGroup := h.catalog.ByGroup()

	if group != "" {
		specs, ok := byGroup[group]
		if !ok {
			return fmt.Sprintf("No such group: %s", group)
		}
		return renderGroup(group, specs)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	sections := make([]string, 0, len(groups))
	for _, g := range groups {
		sections = append(sections, renderGroup(g, byGroup[g]))
	}
	if len(sections) == 0 {
		return "No plugins loaded."
	}
	return strings.Join(sections, "\n")
}

func renderGroup(group string, specs []core.HandlerSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", group)
	for _, spec := range specs {
		fmt.Fprintf(&b, "\t%s: %s\n", signature(spec), spec.HelpLine())
	}
	return strings.TrimRight(b.String(), "\n")
}

// signature renders the match condition of one handler for catalog output.
func signature(spec core.HandlerSpec) string {
	switch spec.Kind {
	case core.MatchReaction:
		return ":" + spec.Reaction + ":"
	case core.MatchSchedule:
		return spec.Trigger.String()
	case core.MatchListen:
		return "hears " + spec.Pattern
	default:
		return spec.Pattern
	}
}
