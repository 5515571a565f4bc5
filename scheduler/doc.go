// Package scheduler bridges a time-based job runner into the dispatch
// path. Every fired job becomes a synthetic ScheduledTick event pushed
// through the same Handle entry point as platform events, so scheduled
// handlers get identical context injection, logging and failure isolation.
//
// Triggers are cron expressions (robfig/cron, standard five-field syntax
// plus @descriptors), fixed intervals, or one-shot points in time. The
// bridge runs its own timers independent of the platform connection's
// liveness, and dispatch is fire-and-forget: a long-running handler never
// delays the next firing.
package scheduler
