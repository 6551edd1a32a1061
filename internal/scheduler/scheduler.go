package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdboard/internal/config"
	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// CachePurger drops expired cache entries.
type CachePurger interface {
	Purge(ctx context.Context) int
}

// ReportWarmer builds (and thereby caches) the daily report.
type ReportWarmer interface {
	GetDailyReport(ctx context.Context, date time.Time) (models.ReportData, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cache    CachePurger
	reports  ReportWarmer
	location *time.Location
	cfg      config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone.
func NewScheduler(cfg config.Config, cache CachePurger, reports ReportWarmer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Reporting.Timezone, err)
	}

	// Standard 5-field cron specs plus descriptors such as "@every 1m".
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		cache:    cache,
		reports:  reports,
		location: loc,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("purge_schedule", s.cfg.Cache.PurgeSchedule),
		zap.String("warm_schedule", s.cfg.Reporting.WarmSchedule),
		zap.String("timezone", s.location.String()),
	)

	if _, err := s.cron.AddFunc(s.cfg.Cache.PurgeSchedule, s.purgeCache); err != nil {
		return fmt.Errorf("schedule cache purge: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Reporting.WarmSchedule, s.warmDailyReport); err != nil {
		return fmt.Errorf("schedule report warm-up: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) purgeCache() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if removed := s.cache.Purge(ctx); removed > 0 {
		s.logger.Info("expired cache entries purged", zap.Int("removed", removed))
	}
}

func (s *Scheduler) warmDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	date := reporting.LocalDay(s.now(), s.location)

	report, err := s.reports.GetDailyReport(ctx, date)
	if err != nil {
		s.logger.Error("failed to warm daily report", zap.Error(err))
		return
	}
	s.logger.Info("daily report warmed",
		zap.String("date", report.StartDate),
		zap.Int("animals", len(report.Animals)),
	)
}
