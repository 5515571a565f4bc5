package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hupe1980/slackmachine/logging"
)

// MatchKind tags the routing rule variant of a HandlerSpec.
type MatchKind string

const (
	// MatchRespond matches message text only when the bot is directly
	// addressed (mention token, alias or DM). The addressing prefix is
	// stripped before the pattern runs.
	MatchRespond MatchKind = "respond"
	// MatchListen matches message text regardless of addressing.
	MatchListen MatchKind = "listen"
	// MatchReaction matches emoji reactions by name.
	MatchReaction MatchKind = "reaction"
	// MatchSchedule matches scheduler ticks for the handler's own job.
	MatchSchedule MatchKind = "schedule"
)

// Trigger describes when a scheduled handler or job fires. Exactly one
// field must be set: a cron expression, a fixed interval, or a one-shot
// point in time.
type Trigger struct {
	Cron  string        `json:"cron,omitempty" yaml:"cron,omitempty"`
	Every time.Duration `json:"every,omitempty" yaml:"every,omitempty"`
	At    time.Time     `json:"at,omitempty" yaml:"at,omitempty"`
}

// String renders the trigger for help output and logs.
func (t Trigger) String() string {
	switch {
	case t.Cron != "":
		return "cron " + t.Cron
	case t.Every > 0:
		return "every " + t.Every.String()
	case !t.At.IsZero():
		return "at " + t.At.Format(time.RFC3339)
	default:
		return "unset"
	}
}

// HandlerFunc is the callback invoked for a matched event. The passed
// Context is exclusive to this invocation and must not be retained after
// the call returns. Returned errors are logged by the dispatch engine and
// never propagate further.
type HandlerFunc func(ctx *Context) error

// HandlerSpec is one registered routing rule: a match condition paired with
// a callback and help metadata. Specs are declared by plugins at load time,
// validated and compiled by the registry, and immutable afterwards.
type HandlerSpec struct {
	// PluginID is the owning plugin's name. Filled in by the registry at
	// registration time; plugins may leave it empty.
	PluginID string

	// Name identifies the handler within its plugin.
	Name string

	// Kind selects the match variant and which of the fields below apply.
	Kind MatchKind

	// Pattern is the regular expression source for text kinds. Use
	// ExactPattern to match a literal.
	Pattern string

	// Regex is the compiled form of Pattern, populated by the registry.
	Regex *regexp.Regexp

	// Reaction is the emoji name for MatchReaction specs.
	Reaction string

	// Trigger describes the firing schedule for MatchSchedule specs.
	Trigger Trigger

	// Help is the descriptive text shown in the help catalog. Only the
	// first line is rendered.
	Help string

	// HandleChanged opts the handler in to edited messages
	// (subtype "message_changed"). Off by default.
	HandleChanged bool

	// WantsLogger and WantsStorage declare which context fields the
	// handler needs. The engine only constructs what was asked for.
	WantsLogger  bool
	WantsStorage bool

	Func HandlerFunc
}

// Respond declares a handler that runs when the bot is directly addressed
// and the remaining text matches pattern.
func Respond(name, pattern, help string, fn HandlerFunc) HandlerSpec {
	return HandlerSpec{Kind: MatchRespond, Name: name, Pattern: pattern, Help: help, Func: fn}
}

// Listen declares a handler that runs on all message traffic matching
// pattern, addressed or not.
func Listen(name, pattern, help string, fn HandlerFunc) HandlerSpec {
	return HandlerSpec{Kind: MatchListen, Name: name, Pattern: pattern, Help: help, Func: fn}
}

// OnReaction declares a handler that runs when the named emoji reaction is
// added.
func OnReaction(name, reaction, help string, fn HandlerFunc) HandlerSpec {
	return HandlerSpec{Kind: MatchReaction, Name: name, Reaction: reaction, Help: help, Func: fn}
}

// OnSchedule declares a handler fired by the scheduler bridge according to
// trigger. The handler's fully-qualified name doubles as the job id.
func OnSchedule(name string, trigger Trigger, help string, fn HandlerFunc) HandlerSpec {
	return HandlerSpec{Kind: MatchSchedule, Name: name, Trigger: trigger, Help: help, Func: fn}
}

// WantLogger marks the handler as needing a bound logger in its Context.
func (h HandlerSpec) WantLogger() HandlerSpec { h.WantsLogger = true; return h }

// WantStorage marks the handler as needing a storage handle in its Context.
func (h HandlerSpec) WantStorage() HandlerSpec { h.WantsStorage = true; return h }

// WithChanged opts the handler in to edited messages.
func (h HandlerSpec) WithChanged() HandlerSpec { h.HandleChanged = true; return h }

// ExactPattern builds a pattern matching text literally and entirely.
func ExactPattern(literal string) string { return "^" + regexp.QuoteMeta(literal) + "$" }

// FQName is the fully-qualified handler name, "<plugin>.<handler>". It is
// used for logging, duplicate detection and as the job id of scheduled
// handlers.
func (h HandlerSpec) FQName() string {
	if h.PluginID == "" {
		return h.Name
	}
	return h.PluginID + "." + h.Name
}

// Signature is the identity of the match condition. Two handlers in the
// same plugin with equal signatures are rejected as duplicates.
func (h HandlerSpec) Signature() string {
	switch h.Kind {
	case MatchReaction:
		return fmt.Sprintf("%s/%s/%s", h.PluginID, h.Kind, h.Reaction)
	case MatchSchedule:
		return fmt.Sprintf("%s/%s/%s", h.PluginID, h.Kind, h.Trigger)
	default:
		return fmt.Sprintf("%s/%s/%s", h.PluginID, h.Kind, h.Pattern)
	}
}

// HelpLine returns the first line of the help text, blank if none was
// given.
func (h HandlerSpec) HelpLine() string {
	line, _, _ := strings.Cut(h.Help, "\n")
	return strings.TrimSpace(line)
}

// Plugin is the unit of registration. A plugin supplies its identity, a
// group label used to cluster help output, descriptive text, and its
// handler specs. Plugins interact with the system exclusively through the
// per-invocation Context; they never see the registry or the dispatch
// engine.
type Plugin interface {
	// Name is the fully-qualified plugin identifier, e.g. "builtin.Ping".
	Name() string

	// Group labels the plugin's section in the help catalog.
	Group() string

	// Description is the plugin's help header. May be empty.
	Description() string

	// Handlers returns the routing rules this plugin declares. Called once
	// at registration.
	Handlers() []HandlerSpec
}

// Initializer is implemented by plugins that need a one-shot init at load
// time. Init runs before the connector is serving events, so it may touch
// storage but cannot send messages.
type Initializer interface {
	Init(ctx *InitContext) error
}

// InitContext is handed to Initializer plugins at load time.
type InitContext struct {
	// Storage is the plugin's namespaced storage handle.
	Storage Storage

	// Logger is bound with the plugin identity.
	Logger logging.Logger
}
