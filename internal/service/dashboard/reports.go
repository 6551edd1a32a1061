package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/service/cache"
	"github.com/mamadbah2/herdboard/internal/service/reporting"
)

// GetDailyReport covers the animals checked up on date.
func (s *Service) GetDailyReport(ctx context.Context, date time.Time) (models.ReportData, error) {
	r := reporting.DayRange(date)
	return s.report(ctx, "report_daily_"+r.StartISO(), models.PeriodDaily, r)
}

// GetWeeklyReport covers start through start+7 days.
func (s *Service) GetWeeklyReport(ctx context.Context, start time.Time) (models.ReportData, error) {
	r := reporting.WeekRange(start)
	return s.report(ctx, "report_weekly_"+r.StartISO(), models.PeriodWeekly, r)
}

// GetMonthlyReport covers a calendar month (1-12).
func (s *Service) GetMonthlyReport(ctx context.Context, year, month int) (models.ReportData, error) {
	r, err := reporting.MonthRange(year, month)
	if err != nil {
		return models.ReportData{}, err
	}
	return s.report(ctx, fmt.Sprintf("report_monthly_%d_%d", year, month), models.PeriodMonthly, r)
}

// GetQuarterlyReport covers a calendar quarter (1-4).
func (s *Service) GetQuarterlyReport(ctx context.Context, year, quarter int) (models.ReportData, error) {
	r, err := reporting.QuarterRange(year, quarter)
	if err != nil {
		return models.ReportData{}, err
	}
	return s.report(ctx, fmt.Sprintf("report_quarterly_%d_%d", year, quarter), models.PeriodQuarterly, r)
}

// GetYearlyReport covers a calendar year.
func (s *Service) GetYearlyReport(ctx context.Context, year int) (models.ReportData, error) {
	return s.report(ctx, fmt.Sprintf("report_yearly_%d", year), models.PeriodYearly, reporting.YearRange(year))
}

// GetCustomReport covers an arbitrary inclusive range.
func (s *Service) GetCustomReport(ctx context.Context, start, end time.Time) (models.ReportData, error) {
	r, err := reporting.CustomRange(start, end)
	if err != nil {
		return models.ReportData{}, err
	}
	return s.report(ctx, fmt.Sprintf("report_custom_%s_%s", r.StartISO(), r.EndISO()), models.PeriodCustom, r)
}

// report serves a report from cache or builds it. Report entries are not
// invalidated by mutations; they only expire.
func (s *Service) report(ctx context.Context, key string, period models.ReportPeriod, r reporting.Range) (models.ReportData, error) {
	s.loading.Publish(true)
	defer s.loading.Publish(false)

	if v, ok := s.cache.Get(key); ok {
		if report, ok := v.AsReport(); ok {
			return cloneReport(report), nil
		}
	}

	res, err := s.share(ctx, key, func(ctx context.Context) (any, error) {
		animals, err := s.fetchAnimals(ctx)
		if err != nil {
			return nil, err
		}
		report := reporting.BuildReport(period, r, animals, s.now())
		s.cache.Set(ctx, key, cache.ReportValue(cloneReport(report)))
		s.reports.Publish(cloneReport(report))
		return report, nil
	})
	if err != nil {
		s.fail(MsgReportFailed, err)
		return models.ReportData{}, fmt.Errorf("generate %s report: %w", period, err)
	}
	return cloneReport(res.(models.ReportData)), nil
}

func cloneReport(in models.ReportData) models.ReportData {
	out := in
	out.Animals = cloneAnimals(in.Animals)
	return out
}
