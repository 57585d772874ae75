// Package monitoring runs the recurring sweeps over the procedure collection:
// a daily expiry scan, an hourly critical-expiry scan and a weekly digest.
package monitoring

import (
	"context"
	"sync"
	"time"

	cron "github.com/robfig/cron/v3"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/server/notifications"
	"github.com/MinaWilson92/prochub/server/procedures"
	"github.com/MinaWilson92/prochub/share/logger"
)

type ScannerName string

const (
	ScannerDaily  ScannerName = "daily-expiry"
	ScannerHourly ScannerName = "critical-expiry"
	ScannerWeekly ScannerName = "weekly-digest"
)

type Config struct {
	DailySchedule  string `mapstructure:"daily_schedule"`
	HourlySchedule string `mapstructure:"hourly_schedule"`
	WeeklySchedule string `mapstructure:"weekly_schedule"`

	// RunOnStart sweeps each cadence once shortly after Start, so expiry
	// conditions are checked when the service comes up rather than an
	// interval later.
	RunOnStart bool `mapstructure:"run_on_start"`
}

func (c *Config) applyDefaults() {
	if c.DailySchedule == "" {
		c.DailySchedule = "0 8 * * *"
	}
	if c.HourlySchedule == "" {
		c.HourlySchedule = "0 * * * *"
	}
	if c.WeeklySchedule == "" {
		c.WeeklySchedule = "0 9 * * 1"
	}
}

// Status is the externally visible monitoring state.
type Status struct {
	IsRunning      bool                      `json:"is_running"`
	ActiveScanners []ScannerName             `json:"active_scanners"`
	LastRun        map[ScannerName]time.Time `json:"last_run"`
	SkippedTicks   int                       `json:"skipped_ticks"`
}

// StartResult mirrors the result-object convention of the notification
// hooks.
type StartResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProcedureSource interface {
	List(ctx context.Context) ([]procedures.Procedure, error)
}

type ActivitySource interface {
	EmailEntriesSince(ctx context.Context, since time.Time) ([]activitylog.EmailEntry, error)
}

type EmailAudit interface {
	RecordEmail(ctx context.Context, e *activitylog.EmailEntry)
}

// Service owns the three scanner cadences. Start and Stop are expected to be
// called from a single administrative control point; idempotency checks are
// the only guard.
type Service struct {
	cfg        Config
	procs      ProcedureSource
	resolver   notifications.RecipientSource
	dispatcher notifications.Sender
	audit      EmailAudit
	activity   ActivitySource
	l          *logger.Logger

	mtx     sync.Mutex
	cron    *cron.Cron
	running bool
	lastRun map[ScannerName]time.Time
	skipped int

	// busyFlags implement the per-scanner re-entrancy guard: a tick that
	// begins while the previous tick of the same scanner is still running
	// is skipped, not queued.
	busyFlags map[ScannerName]bool
}

func NewService(cfg Config, procs ProcedureSource, resolver notifications.RecipientSource, dispatcher notifications.Sender, audit EmailAudit, activity ActivitySource, l *logger.Logger) *Service {
	cfg.applyDefaults()
	return &Service{
		cfg:        cfg,
		procs:      procs,
		resolver:   resolver,
		dispatcher: dispatcher,
		audit:      audit,
		activity:   activity,
		l:          l,
		lastRun:    map[ScannerName]time.Time{},
		busyFlags:  map[ScannerName]bool{},
	}
}

// Start schedules the three cadences. Calling Start while running is a
// successful no-op with an "already running" message; exactly one timer per
// cadence exists at any time.
func (s *Service) Start() StartResult {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.running {
		return StartResult{Success: true, Message: "monitoring already running"}
	}

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	specs := []struct {
		name     ScannerName
		schedule string
		run      func(ctx context.Context)
	}{
		{ScannerDaily, s.cfg.DailySchedule, s.runDailyScan},
		{ScannerHourly, s.cfg.HourlySchedule, s.runHourlyScan},
		{ScannerWeekly, s.cfg.WeeklySchedule, func(ctx context.Context) { s.RunWeeklyDigest(ctx) }},
	}

	for _, spec := range specs {
		spec := spec
		if _, err := c.AddFunc(spec.schedule, s.guarded(spec.name, spec.run)); err != nil {
			return StartResult{Success: false, Message: "invalid schedule for " + string(spec.name) + ": " + err.Error()}
		}
	}

	c.Start()
	s.cron = c
	s.running = true
	s.l.Infof("monitoring started: daily %q, hourly %q, weekly %q",
		s.cfg.DailySchedule, s.cfg.HourlySchedule, s.cfg.WeeklySchedule)

	if s.cfg.RunOnStart {
		for _, spec := range specs {
			go s.guarded(spec.name, spec.run)()
		}
	}

	return StartResult{Success: true, Message: "monitoring started"}
}

// Stop cancels future ticks. An in-flight tick is allowed to complete or
// fail on its own.
func (s *Service) Stop() StartResult {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !s.running {
		return StartResult{Success: true, Message: "monitoring not running"}
	}

	s.cron.Stop()
	s.cron = nil
	s.running = false
	s.l.Infof("monitoring stopped")
	return StartResult{Success: true, Message: "monitoring stopped"}
}

func (s *Service) Status() Status {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	status := Status{
		IsRunning:    s.running,
		LastRun:      map[ScannerName]time.Time{},
		SkippedTicks: s.skipped,
	}
	if s.running {
		status.ActiveScanners = []ScannerName{ScannerDaily, ScannerHourly, ScannerWeekly}
	}
	for name, t := range s.lastRun {
		status.LastRun[name] = t
	}
	return status
}

func (s *Service) guarded(name ScannerName, run func(ctx context.Context)) func() {
	return func() {
		s.mtx.Lock()
		if s.busyFlags[name] {
			s.skipped++
			s.mtx.Unlock()
			s.l.Infof("skipping %s tick, previous tick still running", name)
			return
		}
		s.busyFlags[name] = true
		s.mtx.Unlock()

		defer func() {
			s.mtx.Lock()
			s.busyFlags[name] = false
			s.lastRun[name] = time.Now().UTC()
			s.mtx.Unlock()
		}()

		run(context.Background())
	}
}
