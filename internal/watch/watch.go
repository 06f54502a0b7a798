// Package watch re-runs locale audits on a cron schedule
package watch

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"github.com/k0ns0l/localedrift/internal/alerting"
	"github.com/k0ns0l/localedrift/internal/audit"
	"github.com/k0ns0l/localedrift/internal/logging"
	"github.com/k0ns0l/localedrift/internal/recovery"
	"github.com/k0ns0l/localedrift/internal/report"
)

// stopTimeout bounds how long Stop waits for an in-flight audit
const stopTimeout = 30 * time.Second

// Options configures a Watcher
type Options struct {
	Schedule  string
	Directory string
	Reference string
	Format    report.Format
	// Output receives a report for every run that finds drift. Nil
	// disables rendering.
	Output io.Writer
	// RunOnStart audits once inside Start instead of waiting for the
	// first tick.
	RunOnStart bool
	// Retry covers files caught mid-write; the zero value means one attempt.
	Retry recovery.Config
	// Notifier is told about drift once per distinct set of differences.
	Notifier Notifier
	Project  string
	MaxPaths int
}

// Notifier delivers drift notifications
type Notifier interface {
	Notify(ctx context.Context, message *alerting.Message) error
}

// Status is a snapshot of the watcher
type Status struct {
	Schedule       string    `json:"schedule"`
	Running        bool      `json:"running"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	LastRunAt      time.Time `json:"last_run_at,omitempty"`
	RunCount       int64     `json:"run_count"`
	DriftedRuns    int64     `json:"drifted_runs"`
	ErrorCount     int64     `json:"error_count"`
	LastError      string    `json:"last_error,omitempty"`
	DriftedLocales []string  `json:"drifted_locales,omitempty"`
	AlertsSent     int64     `json:"alerts_sent"`
	AlertErrors    int64     `json:"alert_errors"`
}

// LastRunAge describes the last run relative to now
func (s Status) LastRunAge() string {
	if s.LastRunAt.IsZero() {
		return "never"
	}
	return humanize.Time(s.LastRunAt)
}

// Watcher schedules audits of one locale directory
type Watcher struct {
	auditor *audit.Auditor
	opts    Options
	logger  *logging.Logger
	cron    *cron.Cron
	retrier *recovery.Retrier

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.RWMutex
	running        bool
	startedAt      time.Time
	lastRunAt      time.Time
	runCount       int64
	driftedRuns    int64
	errorCount     int64
	lastError      string
	driftedLocales []string
	alertsSent     int64
	alertErrors    int64
	lastAlerted    uint64
}

// New creates a watcher. The schedule is validated here so that a bad
// expression fails before anything starts.
func New(auditor *audit.Auditor, opts Options, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", opts.Schedule, err)
	}
	if opts.Format == "" {
		opts.Format = report.FormatText
	}

	logger = logger.WithComponent("watch")
	cronLog := cronLogger{logger: logger}

	w := &Watcher{
		auditor: auditor,
		opts:    opts,
		logger:  logger,
		retrier: recovery.New(opts.Retry, logger),
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}

	// one entry for the watcher's lifetime; Start and Stop only toggle the scheduler
	if _, err := w.cron.AddFunc(opts.Schedule, w.scheduledRun); err != nil {
		return nil, fmt.Errorf("failed to schedule audit: %w", err)
	}
	return w, nil
}

// Start schedules audits until ctx is cancelled or Stop is called. With
// RunOnStart set, the first audit runs before Start returns.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher is already running")
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.running = true
	w.startedAt = time.Now()
	runCtx := w.ctx
	w.mu.Unlock()

	if w.opts.RunOnStart {
		if _, err := w.RunOnce(runCtx); err != nil {
			w.logger.LogError(runCtx, err, "Initial locale audit failed", "directory", w.opts.Directory)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		// stopped during the initial audit
		return nil
	}
	w.cron.Start()

	w.logger.Info("Locale watcher started",
		"schedule", w.opts.Schedule,
		"directory", w.opts.Directory,
		"reference", w.opts.Reference)

	return nil
}

func (w *Watcher) scheduledRun() {
	w.mu.RLock()
	ctx := w.ctx
	w.mu.RUnlock()
	if ctx == nil {
		return
	}

	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.LogError(ctx, err, "Scheduled locale audit failed", "directory", w.opts.Directory)
	}
}

// Stop halts scheduling and waits for an in-flight audit to finish
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	cancel()
	cronCtx := w.cron.Stop()

	select {
	case <-cronCtx.Done():
	case <-time.After(stopTimeout):
		w.logger.Warn("Timed out waiting for audit to finish")
	}

	w.logger.Info("Locale watcher stopped")
}

// RunOnce performs a single audit, records it in the status and renders
// a report when drift is found.
func (w *Watcher) RunOnce(ctx context.Context) (*audit.Result, error) {
	var result *audit.Result
	err := w.retrier.Retry(ctx, func(ctx context.Context, attempt int) error {
		var runErr error
		result, runErr = w.auditor.Run(ctx, w.opts.Directory, w.opts.Reference)
		return runErr
	}, "locale audit")
	w.record(result, err)
	if err != nil {
		return nil, err
	}

	if !result.Drifted() {
		w.logger.Info("Locales in sync", "reference", result.Reference, "locales", len(result.Pairs))
		return result, nil
	}

	w.logger.Warn("Locale drift detected",
		"reference", result.Reference,
		"drifted", result.DriftedLocales(),
		"differences", result.Summary().Total)

	if w.opts.Notifier != nil {
		w.notify(ctx, result)
	}

	if w.opts.Output != nil {
		if err := report.RenderAudit(w.opts.Output, result.Reference, result.Pairs, w.opts.Format); err != nil {
			return result, err
		}
	}

	return result, nil
}

// notify sends an alert unless the same differences were already reported.
// Alert failures are logged and counted but never fail the run.
func (w *Watcher) notify(ctx context.Context, result *audit.Result) {
	fp := fingerprint(result)

	w.mu.RLock()
	seen := fp == w.lastAlerted
	w.mu.RUnlock()
	if seen {
		w.logger.Debug("Drift unchanged since last alert", "differences", result.Summary().Total)
		return
	}

	err := w.opts.Notifier.Notify(ctx, alerting.NewMessage(w.opts.Project, result, w.opts.MaxPaths))

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.alertErrors++
		w.logger.LogError(ctx, err, "Failed to deliver drift alert")
		return
	}
	w.alertsSent++
	w.lastAlerted = fp
}

// fingerprint identifies the exact set of differences in a result
func fingerprint(result *audit.Result) uint64 {
	h := fnv.New64a()
	for _, pair := range result.Pairs {
		for _, record := range pair.Records {
			fmt.Fprintf(h, "%s\x00%s\x00%s\n", pair.Locale, record.Path, record.Side)
		}
	}
	return h.Sum64()
}

// Status returns a snapshot of the watcher's state
func (w *Watcher) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	drifted := make([]string, len(w.driftedLocales))
	copy(drifted, w.driftedLocales)

	return Status{
		Schedule:       w.opts.Schedule,
		Running:        w.running,
		StartedAt:      w.startedAt,
		LastRunAt:      w.lastRunAt,
		RunCount:       w.runCount,
		DriftedRuns:    w.driftedRuns,
		ErrorCount:     w.errorCount,
		LastError:      w.lastError,
		DriftedLocales: drifted,
		AlertsSent:     w.alertsSent,
		AlertErrors:    w.alertErrors,
	}
}

func (w *Watcher) record(result *audit.Result, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.runCount++
	w.lastRunAt = time.Now()

	if err != nil {
		w.errorCount++
		w.lastError = err.Error()
		return
	}

	w.lastError = ""
	w.driftedLocales = result.DriftedLocales()
	if result.Drifted() {
		w.driftedRuns++
	} else {
		// drift that comes back after a clean run is alerted again
		w.lastAlerted = 0
	}
}

// cronLogger routes cron's own messages into the structured logger
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
