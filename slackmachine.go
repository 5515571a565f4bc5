// Package slackmachine provides a high-level façade over the dispatch
// core: the sealed plugin registry, the dispatch engine, the scheduler
// bridge and the pluggable storage backends. Most applications interact
// with this package by:
//  1. Creating a Machine via New() with a platform connector
//  2. Registering one or more plugins
//  3. Feeding normalized events into HandleEvent (usually from the
//     connector's receive loop) and calling Run to serve until shutdown
//
// All defaults are safe for local development: in-memory storage, a no-op
// logger and the built-in help plugin. Production deployments supply a
// durable storage backend and a structured logger.
package slackmachine

import (
	"context"
	"fmt"

	"github.com/hupe1980/slackmachine/config"
	"github.com/hupe1980/slackmachine/core"
	"github.com/hupe1980/slackmachine/dispatch"
	"github.com/hupe1980/slackmachine/logging"
	"github.com/hupe1980/slackmachine/plugins"
	"github.com/hupe1980/slackmachine/registry"
	"github.com/hupe1980/slackmachine/scheduler"
	"github.com/hupe1980/slackmachine/storage"
)

// Options configures a Machine instance.
type Options struct {
	// Settings hold bot identity, addressing and backend selection.
	// Defaults to config.Default().
	Settings config.Settings

	// Storage overrides the backend built from Settings.Storage.
	Storage core.Storage

	// Logger receives all structured output. Defaults to NoOp.
	Logger logging.Logger
}

// Machine aggregates the dispatch core. Register plugins before Run; the
// registry seals when serving starts and rejects late registration.
type Machine struct {
	settings config.Settings
	logger   logging.Logger

	store    core.Storage
	ownStore bool

	registry *registry.Registry
	engine   *dispatch.Engine
	bridge   *scheduler.Bridge
}

// New assembles a Machine around a platform connector.
func New(conn core.Connector, optFns ...func(o *Options)) (*Machine, error) {
	opts := Options{
		Settings: config.Default(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	store := opts.Storage
	ownStore := false
	if store == nil {
		built, err := buildStorage(opts.Settings.Storage)
		if err != nil {
			return nil, err
		}
		store = built
		ownStore = true
	}

	reg := registry.New(func(o *registry.Options) {
		o.Logger = opts.Logger
		o.Storage = store
	})

	engine, err := dispatch.New(reg, conn, store, func(o *dispatch.Options) {
		o.Logger = opts.Logger
		o.LogHandledMessages = opts.Settings.LogHandledMessages
		o.ErrorReply = opts.Settings.ErrorReply
		o.Policy = dispatch.AddressingPolicy{
			BotID:   opts.Settings.BotID,
			BotName: opts.Settings.BotName,
			Aliases: opts.Settings.Aliases,
		}
	})
	if err != nil {
		return nil, err
	}

	bridge := scheduler.New(engine, func(o *scheduler.Options) {
		o.Logger = opts.Logger
	})

	return &Machine{
		settings: opts.Settings,
		logger:   opts.Logger,
		store:    store,
		ownStore: ownStore,
		registry: reg,
		engine:   engine,
		bridge:   bridge,
	}, nil
}

// buildStorage constructs the backend selected in settings. Selection
// happens once at startup; backends are not switchable at runtime.
func buildStorage(s config.StorageSettings) (core.Storage, error) {
	switch s.Backend {
	case config.BackendMemory:
		return storage.NewInMemory(), nil
	case config.BackendRedis:
		return storage.NewRedis(func(o *storage.RedisOptions) {
			o.Addr = s.Redis.Addr
			o.Password = s.Redis.Password
			o.DB = s.Redis.DB
			if s.Redis.KeyPrefix != "" {
				o.KeyPrefix = s.Redis.KeyPrefix
			}
		}), nil
	case config.BackendDynamoDB:
		return storage.NewDynamo(context.Background(), func(o *storage.DynamoOptions) {
			o.TableName = s.DynamoDB.TableName
			o.Region = s.DynamoDB.Region
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

// Register adds a plugin. Must happen before Run; afterwards the sealed
// registry rejects registration.
func (m *Machine) Register(p core.Plugin) error {
	return m.registry.Register(p)
}

// Registry exposes the read-only catalog view, e.g. for a custom help
// rendering.
func (m *Machine) Registry() *registry.Registry { return m.registry }

// Storage returns the configured backend, e.g. for namespacing by hand.
func (m *Machine) Storage() core.Storage { return m.store }

// HandleEvent feeds one normalized event into the dispatch engine. Safe to
// call from any goroutine once Run has sealed the registry; earlier events
// are dropped with a warning.
func (m *Machine) HandleEvent(ctx context.Context, event core.Event) {
	m.engine.Handle(ctx, event)
}

// Schedule registers an ad-hoc job outside any plugin; its ticks dispatch
// to schedule handlers whose fully-qualified name equals jobID.
func (m *Machine) Schedule(jobID string, trigger core.Trigger, payload map[string]any) error {
	return m.bridge.Schedule(jobID, trigger, payload)
}

// Unschedule removes an ad-hoc job.
func (m *Machine) Unschedule(jobID string) { m.bridge.Unschedule(jobID) }

// Run seals the registry, wires scheduled handlers into the bridge and
// serves until ctx is cancelled. Shutdown stops the timers first, then
// waits for in-flight handler invocations up to the configured drain
// grace period.
func (m *Machine) Run(ctx context.Context) error {
	if !m.settings.DisableHelp {
		if err := m.registry.Register(plugins.NewHelp(m.registry)); err != nil {
			return fmt.Errorf("registering help plugin: %w", err)
		}
	}

	m.registry.Seal()

	for _, spec := range m.registry.AllHandlers() {
		if spec.Kind != core.MatchSchedule {
			continue
		}
		if err := m.bridge.Schedule(spec.FQName(), spec.Trigger, nil); err != nil {
			return fmt.Errorf("wiring scheduled handler: %w", err)
		}
	}

	m.bridge.Start()
	m.logger.Info("machine running",
		"handlers", m.registry.Len(),
		"storage", m.settings.Storage.Backend,
	)

	<-ctx.Done()

	m.bridge.Stop()

	drainCtx, cancel := context.WithTimeout(context.Background(), m.settings.DrainTimeout)
	defer cancel()
	if err := m.engine.Drain(drainCtx); err != nil {
		m.logger.Warn("shutdown grace period elapsed with handlers in flight", "error", err.Error())
	}

	if m.ownStore {
		if err := m.store.Close(); err != nil {
			m.logger.Warn("closing storage backend", "error", err.Error())
		}
	}

	m.logger.Info("machine stopped")

	return ctx.Err()
}
