package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Config controls the daily series update job.
type Config struct {
	Enabled    bool          `yaml:"enabled" default:"true"`
	DailyCron  string        `yaml:"daily_cron" default:"0 5 0 * * *"`
	RunOnStart bool          `yaml:"run_on_start"`
	JobTimeout time.Duration `yaml:"job_timeout" default:"2m"`
}

// Updater appends today's price to the series.
type Updater interface {
	UpdateToday(ctx context.Context) (model.PricePoint, bool, error)
}

// Summarizer is optionally implemented by an Updater to extend the report.
type Summarizer interface {
	Summary(ctx context.Context) (calculator.Summary, error)
}

// Reporter delivers the outcome of a run. Errors are logged only.
type Reporter interface {
	Report(ctx context.Context, text string) error
}

// Scheduler runs the daily update on a cron schedule in UTC.
type Scheduler struct {
	Cron     *cron.Cron
	Updater  Updater
	Reporter Reporter
	Ctx      context.Context

	cfg Config
	log *logger.Logger
	mu  sync.Mutex
}

// NewScheduler creates a Scheduler. reporter may be nil.
func NewScheduler(ctx context.Context, cfg Config, updater Updater, reporter Reporter, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		Updater:  updater,
		Reporter: reporter,
		Ctx:      ctx,
		cfg:      cfg,
		log:      log.With("scheduler"),
	}
}

// RegisterAll registers the daily update task.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.cfg.DailyCron, s.dailyUpdate); err != nil {
		return fmt.Errorf("register daily update: %w", err)
	}
	return nil
}

// Start starts the cron scheduler, running the update once first when
// RunOnStart is set.
func (s *Scheduler) Start() {
	if s.cfg.RunOnStart {
		go s.RunNow()
	}
	s.Cron.Start()
	s.log.Info("scheduler started", logger.String("daily_cron", s.cfg.DailyCron))
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow executes the daily update immediately.
func (s *Scheduler) RunNow() {
	s.dailyUpdate()
}

func (s *Scheduler) dailyUpdate() {
	// Overlapping runs would only race on the same date key.
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.Ctx, s.cfg.JobTimeout)
	defer cancel()

	s.log.Info("running daily update")
	p, appended, err := s.Updater.UpdateToday(ctx)
	if err != nil {
		s.log.Error("daily update failed", logger.Error(err))
	}
	text := notifier.FormatDailyUpdate(p, appended, err)
	if sm, ok := s.Updater.(Summarizer); ok && err == nil {
		if sum, serr := sm.Summary(ctx); serr != nil {
			s.log.Warn("series summary unavailable", logger.Error(serr))
		} else {
			text += "\n\n" + notifier.FormatSeriesSummary(sum)
		}
	}
	s.tryReport(ctx, text)
}

func (s *Scheduler) tryReport(ctx context.Context, text string) {
	if s.Reporter == nil {
		return
	}
	if err := s.Reporter.Report(ctx, text); err != nil {
		s.log.Error("send report", logger.Error(err))
	}
}
