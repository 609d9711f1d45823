package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/schedule"
	"github.com/mgiorello/turnero/pkg/core/solver"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// AutoAssignResult reports one auto-distribution run.
type AutoAssignResult struct {
	WeekStart string
	Assigned  int
	OpenGaps  []solver.Gap
	Shifts    []string // "date staff start-end" summaries, creation order
	DryRun    bool
}

// AutoAssign runs the greedy solver for the week containing weekOf. With
// dryRun the store is left untouched and the result only previews what a
// real run would assign.
func AutoAssign(store *schedule.Store, weekOf time.Time, dryRun bool, logger *zap.Logger) (*AutoAssignResult, error) {
	monday := timeutil.StartOfWeek(weekOf)
	logger.Info("Running auto-assignment",
		zap.String("week_start", timeutil.FormatDate(monday)),
		zap.Bool("dry_run", dryRun))

	var result *solver.Result
	var err error
	if dryRun {
		result, err = solver.AutoDistribute(solver.Input{
			WeekStart:     weekOf,
			Staff:         store.Staff(),
			Shifts:        store.Shifts(),
			DailyMinimums: store.DailyRoleMinimums(),
			Requirements:  store.Requirements(),
			IDs:           model.UUIDGenerator{},
		})
	} else {
		result, err = store.AutoDistribute(weekOf)
	}
	if err != nil {
		return nil, fmt.Errorf("auto-assignment failed: %w", err)
	}

	logger.Info("Auto-assignment completed",
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("open_gaps", len(result.OpenGaps)))
	for _, gap := range result.OpenGaps {
		logger.Warn("Coverage gap left open",
			zap.String("date", gap.Date),
			zap.String("role", gap.Role),
			zap.String("requirement", gap.RequirementID),
			zap.Int("requested", gap.Requested),
			zap.Int("assigned", gap.Assigned))
	}

	out := &AutoAssignResult{
		WeekStart: timeutil.FormatDate(monday),
		Assigned:  len(result.Assigned),
		OpenGaps:  result.OpenGaps,
		DryRun:    dryRun,
	}
	for _, shift := range result.Assigned {
		out.Shifts = append(out.Shifts, fmt.Sprintf("%s  %s  %s-%s", shift.Date, shift.StaffID, shift.Start, shift.End))
	}
	return out, nil
}
