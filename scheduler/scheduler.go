package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hupe1980/slackmachine/core"
	"github.com/hupe1980/slackmachine/logging"
)

// cronParser accepts standard five-field cron expressions plus the
// @descriptors (@hourly, @every 5m, ...).
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateTrigger checks that exactly one trigger variant is set and that a
// cron expression parses. Used by the registry to reject broken schedule
// handlers at startup.
func ValidateTrigger(t core.Trigger) error {
	set := 0
	if t.Cron != "" {
		set++
	}
	if t.Every != 0 {
		set++
	}
	if !t.At.IsZero() {
		set++
	}
	if set != 1 {
		return fmt.Errorf("trigger must set exactly one of cron, every, at (got %d)", set)
	}
	if t.Cron != "" {
		if _, err := cronParser.Parse(t.Cron); err != nil {
			return fmt.Errorf("cron expression %q: %w", t.Cron, err)
		}
	}
	if t.Every < 0 {
		return fmt.Errorf("interval must be positive, got %s", t.Every)
	}
	return nil
}

// Dispatcher is the receiving end of fired jobs; satisfied by the dispatch
// engine.
type Dispatcher interface {
	Handle(ctx context.Context, event core.Event)
}

// Options configures a Bridge.
type Options struct {
	// Logger receives scheduling diagnostics. Defaults to NoOp.
	Logger logging.Logger

	// Location sets the timezone cron expressions are evaluated in.
	// Defaults to time.Local.
	Location *time.Location
}

// Bridge wraps the cron runner and per-job timers, converting fired jobs
// into ScheduledTick events. Safe for concurrent use.
type Bridge struct {
	dispatcher Dispatcher
	logger     logging.Logger
	cron       *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	started   chan struct{}
	startOnce sync.Once

	mu   sync.Mutex
	jobs map[string]scheduledJob
}

// scheduledJob tracks how to stop one scheduled job: a cron entry or a
// timer/ticker stop func.
type scheduledJob struct {
	entryID cron.EntryID
	isCron  bool
	stop    func()
}

// New constructs a Bridge dispatching into d. Call Start to begin firing.
func New(d Dispatcher, optFns ...func(o *Options)) *Bridge {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		Location: time.Local,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Bridge{
		dispatcher: d,
		logger:     opts.Logger,
		cron:       cron.New(cron.WithParser(cronParser), cron.WithLocation(opts.Location)),
		ctx:        ctx,
		cancel:     cancel,
		started:    make(chan struct{}),
		jobs:       make(map[string]scheduledJob),
	}
}

// Schedule registers a job under jobID. Each fire pushes a ScheduledTick
// carrying payload into the dispatcher. Jobs stay dormant until Start is
// called. Scheduling an already-known jobID is an error; Unschedule first
// to replace.
func (b *Bridge) Schedule(jobID string, trigger core.Trigger, payload map[string]any) error {
	if jobID == "" {
		return fmt.Errorf("job id must not be empty")
	}
	if err := ValidateTrigger(trigger); err != nil {
		return fmt.Errorf("scheduling %s: %w", jobID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.jobs[jobID]; exists {
		return fmt.Errorf("scheduling %s: job already scheduled", jobID)
	}

	switch {
	case trigger.Cron != "":
		entryID, err := b.cron.AddFunc(trigger.Cron, func() { b.fire(jobID, payload) })
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", jobID, err)
		}
		b.jobs[jobID] = scheduledJob{entryID: entryID, isCron: true}

	case trigger.Every > 0:
		stopCh := make(chan struct{})
		go func() {
			// the interval counts from Start, not from Schedule
			select {
			case <-b.started:
			case <-stopCh:
				return
			case <-b.ctx.Done():
				return
			}
			ticker := time.NewTicker(trigger.Every)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					b.fire(jobID, payload)
				case <-stopCh:
					return
				case <-b.ctx.Done():
					return
				}
			}
		}()
		b.jobs[jobID] = scheduledJob{stop: func() { close(stopCh) }}

	default: // one-shot
		delay := time.Until(trigger.At)
		if delay < 0 {
			delay = 0
		}
		stopCh := make(chan struct{})
		timer := time.AfterFunc(delay, func() {
			select {
			case <-b.started:
			case <-stopCh:
				return
			case <-b.ctx.Done():
				return
			}
			b.fire(jobID, payload)
			b.forget(jobID)
		})
		b.jobs[jobID] = scheduledJob{stop: func() { timer.Stop(); close(stopCh) }}
	}

	b.logger.Debug("job scheduled", "job_id", jobID, "trigger", trigger.String())

	return nil
}

// Unschedule removes a job. Unknown job ids are ignored.
func (b *Bridge) Unschedule(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[jobID]
	if !ok {
		return
	}
	if job.isCron {
		b.cron.Remove(job.entryID)
	} else if job.stop != nil {
		job.stop()
	}
	delete(b.jobs, jobID)
	b.logger.Debug("job unscheduled", "job_id", jobID)
}

func (b *Bridge) forget(jobID string) {
	b.mu.Lock()
	delete(b.jobs, jobID)
	b.mu.Unlock()
}

// fire converts one job firing into a tick event. The dispatcher's Handle
// returns promptly (handlers run on their own goroutines), so the timer is
// never blocked by a slow handler.
func (b *Bridge) fire(jobID string, payload map[string]any) {
	if b.ctx.Err() != nil {
		return
	}
	event := core.NewTickEvent(jobID, payload)
	b.logger.Debug("job fired", "job_id", jobID, "event_id", event.ID)
	b.dispatcher.Handle(b.ctx, event)
}

// Start begins firing scheduled jobs. Jobs scheduled after Start arm
// immediately.
func (b *Bridge) Start() {
	b.startOnce.Do(func() { close(b.started) })
	b.cron.Start()
}

// Stop halts all timers. Jobs already handed to the dispatcher are
// unaffected; draining them is the dispatcher's concern.
func (b *Bridge) Stop() {
	b.cancel()
	b.cron.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, job := range b.jobs {
		if !job.isCron && job.stop != nil {
			job.stop()
		}
		delete(b.jobs, id)
	}
}
