package services

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mgiorello/turnero/pkg/core/schedule"
)

// SaveSchedule writes the store's shift collection to the schedule file.
// This is the publish half of the caller's load/publish contract with the
// in-memory engine.
func SaveSchedule(store *schedule.Store, path string, logger *zap.Logger) error {
	shifts := store.Shifts()

	file := scheduleFile{Shifts: make([]shiftEntry, len(shifts))}
	for i, shift := range shifts {
		file.Shifts[i] = shiftEntry{
			ID:                shift.ID,
			StaffID:           shift.StaffID,
			Date:              shift.Date,
			Start:             shift.Start,
			End:               shift.End,
			Type:              string(shift.Type),
			Status:            string(shift.Status),
			Source:            string(shift.Source),
			ShiftGroupID:      shift.ShiftGroupID,
			RecurrenceGroupID: shift.RecurrenceGroupID,
		}
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}

	logger.Info("Schedule saved", zap.String("file", path), zap.Int("shifts", len(shifts)))
	return nil
}
