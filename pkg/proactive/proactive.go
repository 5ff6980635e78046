// Package proactive implements Fortitude's background "proactive
// research" loop: a filesystem watcher detects changes under a set of
// watch paths, a cron-driven scheduler periodically sweeps the whole
// tree for staleness, and an executor turns both signals into
// notifications a caller (the HTTP/MCP surface, or a human) can act
// on. Adapted from the teacher's pkg/policy/manager.FileWatcher
// (fsnotify usage, debouncing) and pkg/policy/git's poll-driven
// watcher (the scheduled-rescan half), generalized from "reload a
// policy bundle" to "flag a knowledge gap."
package proactive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fortitude-run/fortitude/pkg/config"
)

// GapKind classifies a detected knowledge gap.
type GapKind string

const (
	// GapStale reports a watched file whose content has changed more
	// recently than the cache entries associated with it.
	GapStale GapKind = "stale"
	// GapMissing reports a watched file with no corresponding cache
	// entry at all.
	GapMissing GapKind = "missing"
)

// Notification is a single gap-detection result, queued for a
// consumer to read via Supervisor.Notifications or the MCP
// proactive_get_notifications tool.
type Notification struct {
	Kind       GapKind   `json:"kind"`
	Path       string    `json:"path"`
	Detail     string    `json:"detail"`
	DetectedAt time.Time `json:"detected_at"`
}

// TaskStatus reports one scheduled or ad hoc scan's outcome, for the
// proactive_list_tasks tool.
type TaskStatus struct {
	Name      string    `json:"name"`
	LastRun   time.Time `json:"last_run"`
	NextRun   time.Time `json:"next_run"`
	GapsFound int       `json:"gaps_found"`
}

// Status summarizes the supervisor's current state for
// proactive_status.
type Status struct {
	Running             bool          `json:"running"`
	WatchPaths          []string      `json:"watch_paths"`
	StalenessThreshold  time.Duration `json:"staleness_threshold"`
	NotificationsQueued int           `json:"notifications_queued"`
	LastScan            time.Time     `json:"last_scan"`
}

// Executor performs one gap-detection pass over path and reports
// whatever it finds. It is the seam between the generic
// watcher/scheduler plumbing here and Fortitude's actual cache/store
// knowledge of what "stale" means.
type Executor interface {
	Scan(ctx context.Context, path string, staleness time.Duration) ([]Notification, error)
}

// Supervisor owns a filesystem watcher, a cron scheduler, and an
// executor, and fans their output into a single notification queue.
// Grounded on the teacher's FileWatcher's running/stopCh/doneCh
// lifecycle, extended with a second, scheduler-driven trigger source.
type Supervisor struct {
	cfg      config.ProactiveConfig
	executor Executor
	logger   *slog.Logger

	cron      *cron.Cron
	watcher   *watcher
	entryID   cron.EntryID

	mu            sync.Mutex
	running       bool
	lastScan      time.Time
	tasks         map[string]*TaskStatus
	notifications chan Notification
	stopCh        chan struct{}
}

// NewSupervisor builds a Supervisor. It does not start watching or
// scheduling until Start is called.
func NewSupervisor(cfg config.ProactiveConfig, executor Executor, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	bufferSize := cfg.NotificationBuffer
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Supervisor{
		cfg:           cfg,
		executor:      executor,
		logger:        logger,
		cron:          cron.New(),
		tasks:         make(map[string]*TaskStatus),
		notifications: make(chan Notification, bufferSize),
	}
}

// Start launches the filesystem watcher and the cron scheduler. It
// returns once both are running; cancel ctx or call Stop to shut them
// down.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("proactive supervisor already running")
	}
	if !s.cfg.Enabled {
		s.mu.Unlock()
		return fmt.Errorf("proactive loop is disabled in configuration")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	w, err := newWatcher(s.cfg.WatchPaths, s.onWatchEvent)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to start filesystem watcher: %w", err)
	}
	s.watcher = w

	entryID, err := s.cron.AddFunc(s.cfg.ScanSchedule, func() { s.runScan(context.Background(), "scheduled") })
	if err != nil {
		w.stop()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("invalid scan schedule %q: %w", s.cfg.ScanSchedule, err)
	}
	s.entryID = entryID
	s.cron.Start()

	go w.run(ctx, s.stopCh)

	s.logger.Info("proactive supervisor started",
		"watch_paths", s.cfg.WatchPaths,
		"schedule", s.cfg.ScanSchedule,
	)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.stopCh:
		}
	}()

	return nil
}

// Stop halts the watcher and scheduler. Safe to call more than once.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh := s.stopCh
	s.mu.Unlock()

	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.cron.Remove(s.entryID)

	if s.watcher != nil {
		s.watcher.stop()
	}
	close(stopCh)

	s.logger.Info("proactive supervisor stopped")
}

// Status reports the supervisor's current state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:             s.running,
		WatchPaths:          s.cfg.WatchPaths,
		StalenessThreshold:  s.cfg.StalenessThreshold,
		NotificationsQueued: len(s.notifications),
		LastScan:            s.lastScan,
	}
}

// Configure updates the watch paths, schedule and staleness threshold,
// leaving any zero-valued field in cfg untouched. The supervisor must
// be restarted for a new schedule to take effect. Scans use the new
// watch paths and threshold at once; the filesystem watcher picks up
// new watch paths on the next Start.
func (s *Supervisor) Configure(cfg config.ProactiveConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(cfg.WatchPaths) > 0 {
		s.cfg.WatchPaths = cfg.WatchPaths
	}
	if cfg.ScanSchedule != "" {
		s.cfg.ScanSchedule = cfg.ScanSchedule
	}
	if cfg.StalenessThreshold > 0 {
		s.cfg.StalenessThreshold = cfg.StalenessThreshold
	}
}

// ListTasks reports the status of every scan task run so far.
func (s *Supervisor) ListTasks() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskStatus, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	return out
}

// Notifications drains up to max queued notifications without
// blocking.
func (s *Supervisor) Notifications(max int) []Notification {
	out := make([]Notification, 0, max)
	for i := 0; i < max; i++ {
		select {
		case n := <-s.notifications:
			out = append(out, n)
		default:
			return out
		}
	}
	return out
}

func (s *Supervisor) onWatchEvent(path string) {
	s.runScan(context.Background(), "watch:"+path)
}

func (s *Supervisor) runScan(ctx context.Context, taskName string) {
	s.mu.Lock()
	paths := append([]string(nil), s.cfg.WatchPaths...)
	staleness := s.cfg.StalenessThreshold
	s.mu.Unlock()

	found := 0
	for _, path := range paths {
		notes, err := s.executor.Scan(ctx, path, staleness)
		if err != nil {
			s.logger.Error("proactive scan failed", "path", path, "error", err)
			continue
		}
		for _, n := range notes {
			select {
			case s.notifications <- n:
			default:
				s.logger.Warn("proactive notification queue full, dropping", "path", n.Path)
			}
		}
		found += len(notes)
	}

	s.mu.Lock()
	s.lastScan = time.Now()
	s.tasks[taskName] = &TaskStatus{Name: taskName, LastRun: s.lastScan, GapsFound: found}
	s.mu.Unlock()
}
