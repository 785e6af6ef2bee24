// Package refresh re-fetches records on a cron schedule.
//
// The schedule is a standard five-field cron expression or a descriptor
// such as "@every 15m", read from source.refresh.schedule. An empty schedule
// disables the scheduler. A scheduled run that finds a fetch already in
// flight is skipped rather than queued.
package refresh
