package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/hupe1980/slackmachine/core"
	"github.com/hupe1980/slackmachine/logging"
	"github.com/hupe1980/slackmachine/storage"
)

// HandlerSource is the read-only view of the plugin registry the engine
// consumes. Satisfied by *registry.Registry.
type HandlerSource interface {
	AllHandlers() []core.HandlerSpec
	Sealed() bool
}

// Options configures an Engine.
type Options struct {
	// Logger receives dispatch diagnostics and handler failure reports.
	// Bound per invocation when it is a *logging.MachineLogger. Defaults
	// to NoOp.
	Logger logging.Logger

	// Policy decides what counts as directly addressed.
	Policy AddressingPolicy

	// LogHandledMessages emits an info line per handled message (text plus
	// sender identity). On by default; disable for chatty channels.
	LogHandledMessages bool

	// ErrorReply, when non-empty, is sent to the originating channel as a
	// best-effort notice after a handler failure. Diagnostic detail never
	// leaks into it.
	ErrorReply string
}

// Engine matches inbound events against the sealed registry and invokes
// matched handlers concurrently with failure isolation. Handle never
// returns an error to its caller; all faults are converted into structured
// log entries.
type Engine struct {
	source    HandlerSource
	connector core.Connector
	store     core.Storage
	logger    logging.Logger

	matcher       *addressMatcher
	logHandled    bool
	errorReply    string
	warnNotSealed sync.Once

	wg sync.WaitGroup
}

// mentionPrefix strips the leading mention token of Mention-kind events,
// which arrive pre-addressed by the platform ("<@U123> ping", "@bot ping").
var mentionPrefix = regexp.MustCompile(`^(?:<@\w+>|@\w+)[:,]?\s+`)

// New constructs an Engine reading handlers from source. The source must be
// sealed before the first Handle call; events arriving earlier are dropped
// with a warning.
func New(source HandlerSource, connector core.Connector, store core.Storage, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Logger:             logging.NoOpLogger{},
		LogHandledMessages: true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	matcher, err := compilePolicy(opts.Policy)
	if err != nil {
		return nil, err
	}

	return &Engine{
		source:     source,
		connector:  connector,
		store:      store,
		logger:     opts.Logger,
		matcher:    matcher,
		logHandled: opts.LogHandledMessages,
		errorReply: opts.ErrorReply,
	}, nil
}

// candidate pairs a matched handler with the invocation inputs computed
// during the matching pass.
type candidate struct {
	spec    core.HandlerSpec
	event   core.Event
	matches map[string]string
}

// Handle routes one event through the dispatch pass: compute the full
// candidate set over the sealed registry (a pure read, so late-arriving
// events never interleave with it), then start every candidate on its own
// goroutine in registration order. Completion order is unspecified.
func (e *Engine) Handle(ctx context.Context, event core.Event) {
	if !e.source.Sealed() {
		e.warnNotSealed.Do(func() {
			e.logger.Warn("event dropped: registry not sealed yet", "event_id", event.ID)
		})
		return
	}

	// The bot's own messages never dispatch.
	if event.IsTextual() && e.matcher.policy.BotID != "" && event.Sender.ID == e.matcher.policy.BotID {
		return
	}

	candidates := e.collect(event)
	if len(candidates) == 0 {
		return
	}

	e.logger.Debug("dispatching event",
		"event_id", event.ID,
		"kind", string(event.Kind),
		"candidates", len(candidates),
	)

	// Invocations outlive Handle's caller context: there is no mid-flight
	// cancellation, only the Drain grace period at shutdown.
	invCtx := context.WithoutCancel(ctx)

	for _, c := range candidates {
		e.wg.Add(1)
		go e.invoke(invCtx, c)
	}
}

// collect computes the candidate set for one event. Matching is a pure read
// over the frozen handler sequence; registration order is preserved.
func (e *Engine) collect(event core.Event) []candidate {
	var (
		addressed bool
		stripped  string
	)
	if event.IsTextual() {
		addressed, stripped = e.address(event)
	}

	var out []candidate
	for _, spec := range e.source.AllHandlers() {
		switch spec.Kind {
		case core.MatchRespond, core.MatchListen:
			if !event.IsTextual() {
				continue
			}
			if event.Subtype == "message_changed" && !spec.HandleChanged {
				continue
			}
			if spec.Kind == core.MatchRespond && !addressed {
				continue
			}
			// When the bot was addressed, listeners see the stripped text
			// too; the addressing prefix is not part of the message body.
			text := event.Text
			if addressed {
				text = stripped
			}
			m := spec.Regex.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			ev := event
			ev.Text = text
			out = append(out, candidate{spec: spec, event: ev, matches: namedGroups(spec.Regex, m)})

		case core.MatchReaction:
			if event.Kind != core.KindReaction || event.Reaction != spec.Reaction {
				continue
			}
			out = append(out, candidate{spec: spec, event: event})

		case core.MatchSchedule:
			if event.Kind != core.KindTick || event.JobID != spec.FQName() {
				continue
			}
			out = append(out, candidate{spec: spec, event: event})
		}
	}
	return out
}

// address applies the addressing policy. Mention-kind events are addressed
// by definition; DMs count as addressed even without a mention token.
func (e *Engine) address(event core.Event) (bool, string) {
	if event.Kind == core.KindMention {
		if ok, rest := e.matcher.strip(event.Text); ok {
			return true, rest
		}
		return true, mentionPrefix.ReplaceAllString(event.Text, "")
	}

	ok, rest := e.matcher.strip(event.Text)
	if event.IsDM() {
		if ok {
			return true, rest
		}
		return true, event.Text
	}
	return ok, rest
}

// invoke runs one handler with full isolation: a returned error or a panic
// is converted into a HandlerInvocationError, logged, and optionally
// surfaced as a best-effort in-channel notice. Nothing escapes.
func (e *Engine) invoke(ctx context.Context, c candidate) {
	defer e.wg.Done()

	fqName := c.spec.FQName()
	bound := e.boundLogger(c)

	if e.logHandled && c.event.IsTextual() {
		bound.Info("Handling message", "message", c.event.Text)
	}

	var store core.Storage
	if c.spec.WantsStorage && e.store != nil {
		store = storage.Named(e.store, c.spec.PluginID)
	}

	var handlerLogger logging.Logger = logging.NoOpLogger{}
	if c.spec.WantsLogger {
		handlerLogger = bound
	}

	hctx := core.NewContext(ctx, c.event, c.matches, handlerLogger, store, e.connector, fqName)

	start := time.Now()
	err := e.runProtected(hctx, c.spec.Func)
	if err == nil {
		bound.Debug("handler completed", "duration", time.Since(start).String())
		return
	}

	invErr := &core.HandlerInvocationError{Handler: fqName, Err: err}
	bound.Error("handler failed",
		"plugin", c.spec.PluginID,
		"handler", fqName,
		"error", invErr.Error(),
	)
	e.sendErrorNotice(ctx, c.event)
}

// runProtected executes the handler body, converting panics into errors at
// the invocation boundary so sibling handlers are unaffected.
func (e *Engine) runProtected(hctx *core.Context, fn core.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(hctx)
}

// sendErrorNotice posts the configured error reply to the originating
// channel. Best-effort: failures are logged at debug and dropped, and
// no diagnostic detail is ever included.
func (e *Engine) sendErrorNotice(ctx context.Context, event core.Event) {
	if e.errorReply == "" || e.connector == nil || event.Channel == "" {
		return
	}
	msg := core.OutgoingMessage{Channel: event.Channel, Text: e.errorReply}
	if err := e.connector.Send(ctx, msg); err != nil {
		e.logger.Debug("error notice not delivered", "channel", event.Channel, "error", err.Error())
	}
}

// boundLogger constructs the per-invocation logger with user and handler
// identity. The shared logger is never mutated; binding clones.
func (e *Engine) boundLogger(c candidate) logging.Logger {
	if ml, ok := e.logger.(*logging.MachineLogger); ok {
		return ml.WithHandler(c.spec.FQName()).WithUser(c.event.Sender.ID, c.event.Sender.Name)
	}
	return e.logger
}

// Drain waits for in-flight handler invocations to complete, up to the
// context's deadline. After the deadline the remaining invocations are
// abandoned and the error reports how the grace period ended.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining handler invocations: %w", ctx.Err())
	}
}

// namedGroups extracts named capture groups from a regex match.
func namedGroups(re *regexp.Regexp, match []string) map[string]string {
	names := re.SubexpNames()
	if len(names) <= 1 {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range names {
		if name == "" || i >= len(match) {
			continue
		}
		groups[name] = match[i]
	}
	if len(groups) == 0 {
		return nil
	}
	return groups
}
