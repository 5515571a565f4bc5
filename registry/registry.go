package registry

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/hupe1980/slackmachine/core"
	"github.com/hupe1980/slackmachine/logging"
	"github.com/hupe1980/slackmachine/scheduler"
	"github.com/hupe1980/slackmachine/storage"
)

var (
	// ErrDuplicateHandler is returned when two handlers in the same plugin
	// declare an identical match signature.
	ErrDuplicateHandler = errors.New("duplicate handler")

	// ErrInvalidPattern is returned when a declared regex or schedule
	// trigger fails to compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrRegistryClosed is returned on registration attempts after Seal.
	ErrRegistryClosed = errors.New("registry closed")
)

// Record groups everything the registry holds for one plugin: the plugin
// itself, its group label, its validated handler specs, and whether its
// one-shot Init has completed.
type Record struct {
	Plugin      core.Plugin
	Group       string
	Handlers    []core.HandlerSpec
	Initialized bool
}

// Options configures a Registry.
type Options struct {
	// Logger receives registration diagnostics. Defaults to NoOp.
	Logger logging.Logger

	// Storage backs the namespaced handles given to Initializer plugins.
	// Init-time storage access is disabled when nil.
	Storage core.Storage
}

// Registry holds, per loaded plugin, its declared handlers and help
// metadata. It is the sole owner of handler specs; the dispatch engine gets
// read access only. Registration happens once at startup; after Seal the
// registry never changes, making concurrent reads safe without locking.
type Registry struct {
	logger  logging.Logger
	storage core.Storage

	sealed   bool
	records  []*Record
	byPlugin map[string]*Record
	handlers []core.HandlerSpec
}

// New constructs an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Registry{
		logger:   opts.Logger,
		storage:  opts.Storage,
		byPlugin: make(map[string]*Record),
	}
}

// Register validates and stores a plugin's handlers, then runs its one-shot
// Init if it declares one. Any failure leaves the registry unchanged and is
// fatal to startup by contract: the process must not start serving with a
// broken registry.
func (r *Registry) Register(p core.Plugin) error {
	if r.sealed {
		return fmt.Errorf("registering plugin %s: %w", p.Name(), ErrRegistryClosed)
	}
	if _, ok := r.byPlugin[p.Name()]; ok {
		return fmt.Errorf("registering plugin %s: %w: plugin already registered", p.Name(), ErrDuplicateHandler)
	}

	declared := p.Handlers()
	compiled := make([]core.HandlerSpec, 0, len(declared))
	seen := make(map[string]struct{}, len(declared))

	for _, h := range declared {
		h.PluginID = p.Name()

		if h.Func == nil {
			return fmt.Errorf("handler %s: %w: nil handler func", h.FQName(), ErrInvalidPattern)
		}

		switch h.Kind {
		case core.MatchRespond, core.MatchListen:
			if h.Regex == nil {
				re, err := regexp.Compile(h.Pattern)
				if err != nil {
					return fmt.Errorf("handler %s: %w: %v", h.FQName(), ErrInvalidPattern, err)
				}
				h.Regex = re
			}
		case core.MatchReaction:
			if h.Reaction == "" {
				return fmt.Errorf("handler %s: %w: empty reaction", h.FQName(), ErrInvalidPattern)
			}
		case core.MatchSchedule:
			if err := scheduler.ValidateTrigger(h.Trigger); err != nil {
				return fmt.Errorf("handler %s: %w: %v", h.FQName(), ErrInvalidPattern, err)
			}
		default:
			return fmt.Errorf("handler %s: %w: unknown match kind %q", h.FQName(), ErrInvalidPattern, h.Kind)
		}

		sig := h.Signature()
		if _, dup := seen[sig]; dup {
			return fmt.Errorf("handler %s: %w: signature %q declared twice", h.FQName(), ErrDuplicateHandler, sig)
		}
		seen[sig] = struct{}{}

		compiled = append(compiled, h)
	}

	rec := &Record{Plugin: p, Group: p.Group(), Handlers: compiled}

	if init, ok := p.(core.Initializer); ok {
		ictx := &core.InitContext{Logger: r.logger}
		if r.storage != nil {
			ictx.Storage = storage.Named(r.storage, p.Name())
		}
		if err := init.Init(ictx); err != nil {
			return fmt.Errorf("initializing plugin %s: %w", p.Name(), err)
		}
	}
	rec.Initialized = true

	r.records = append(r.records, rec)
	r.byPlugin[p.Name()] = rec
	r.handlers = append(r.handlers, compiled...)

	r.logger.Debug("plugin registered", "plugin", p.Name(), "handlers", len(compiled))

	return nil
}

// Seal freezes the registry. Late registration attempts fail with
// ErrRegistryClosed, making the read-only steady state explicit.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether the registry has been frozen.
func (r *Registry) Sealed() bool { return r.sealed }

// AllHandlers returns every handler spec in registration order. The
// returned slice is a copy; the registry's own view never changes after
// sealing.
func (r *Registry) AllHandlers() []core.HandlerSpec {
	out := make([]core.HandlerSpec, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// ByGroup returns the handler specs clustered by their plugin's group
// label, preserving registration order within each group.
func (r *Registry) ByGroup() map[string][]core.HandlerSpec {
	out := make(map[string][]core.HandlerSpec)
	for _, rec := range r.records {
		out[rec.Group] = append(out[rec.Group], rec.Handlers...)
	}
	return out
}

// Records returns the per-plugin records in registration order.
func (r *Registry) Records() []*Record {
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return len(r.handlers) }
