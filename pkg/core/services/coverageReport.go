package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mgiorello/turnero/pkg/core/coverage"
	"github.com/mgiorello/turnero/pkg/core/schedule"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// CoverageReportResult summarizes one day's coverage for display.
type CoverageReportResult struct {
	Date         string
	ShiftCount   int
	StaffVisible int
	// WarningCount counts each requirement short at any point of the day
	// once.
	WarningCount int
	// PeakCount and PeakTime locate the best-staffed bucket of the day.
	PeakCount int
	PeakTime  string
	// InstantWarnings and ActiveStaff are filled when an instant was asked
	// for.
	Instant         string
	InstantWarnings []coverage.Warning
	ActiveStaff     []string
}

// CoverageReport computes the coverage diagnostic for a date over the store's
// currently visible staff. at is an optional "HH:MM" instant to drill into.
func CoverageReport(store *schedule.Store, date string, at string, logger *zap.Logger) (*CoverageReportResult, error) {
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, err
	}

	logger.Debug("Computing coverage", zap.String("date", date))

	buckets := store.DailyCoverage(date)
	result := &CoverageReportResult{
		Date:         date,
		ShiftCount:   len(store.ShiftsForDate(date, schedule.StatusAll)),
		StaffVisible: len(store.FilteredStaff()),
		WarningCount: store.DailyWarningCount(date),
	}

	for _, bucket := range buckets {
		if bucket.Count > result.PeakCount {
			result.PeakCount = bucket.Count
			result.PeakTime = timeutil.MinutesToTime(bucket.Minute)
		}
	}

	if at != "" {
		minute, err := timeutil.TimeToMinutes(at)
		if err != nil {
			return nil, fmt.Errorf("invalid instant: %w", err)
		}
		result.Instant = at
		result.InstantWarnings = store.WarningsAt(date, minute)
		for _, member := range store.ActiveStaffAt(date, minute) {
			result.ActiveStaff = append(result.ActiveStaff, member.FullName)
		}
	}

	logger.Info("Coverage computed",
		zap.String("date", date),
		zap.Int("shifts", result.ShiftCount),
		zap.Int("warnings", result.WarningCount))

	return result, nil
}
