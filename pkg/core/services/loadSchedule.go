package services

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mgiorello/turnero/internal/config"
	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/schedule"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

var validate = validator.New()

// rosterFile is the YAML shape of the staff roster the caller maintains.
type rosterFile struct {
	Staff []rosterEntry `yaml:"staff" validate:"required,dive"`
}

type rosterEntry struct {
	ID                 string `yaml:"id" validate:"required"`
	FullName           string `yaml:"fullName" validate:"required"`
	Role               string `yaml:"role" validate:"required"`
	HomeOffice         bool   `yaml:"homeOffice"`
	Phone              string `yaml:"phone,omitempty"`
	MonthlyHours       int    `yaml:"monthlyHours,omitempty"`
	StandardShiftStart string `yaml:"standardShiftStart" validate:"required"`
	StandardShiftEnd   string `yaml:"standardShiftEnd" validate:"required"`
}

// scheduleFile is the YAML shape of the persisted shift collection. It is
// the load/publish surface between the in-memory engine and its caller.
type scheduleFile struct {
	Shifts []shiftEntry `yaml:"shifts" validate:"dive"`
}

type shiftEntry struct {
	ID                string `yaml:"id" validate:"required"`
	StaffID           string `yaml:"staffId" validate:"required"`
	Date              string `yaml:"date" validate:"required"`
	Start             string `yaml:"start" validate:"required"`
	End               string `yaml:"end" validate:"required"`
	Type              string `yaml:"type,omitempty"`
	Status            string `yaml:"status,omitempty"`
	Source            string `yaml:"source,omitempty"`
	ShiftGroupID      string `yaml:"shiftGroupId,omitempty"`
	RecurrenceGroupID string `yaml:"recurrenceGroupId,omitempty"`
}

// LoadSchedule builds a fully populated store from the configuration: roster
// and coverage settings always, persisted shifts when a schedule file is
// configured and exists.
func LoadSchedule(cfg *config.Config, ids model.IDGenerator, logger *zap.Logger) (*schedule.Store, error) {
	store := schedule.New(ids)

	logger.Debug("Loading roster", zap.String("file", cfg.RosterFile))
	staff, err := loadRoster(cfg.RosterFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	logger.Debug("Loaded roster", zap.Int("staff", len(staff)))

	store.SetStaff(staff)
	store.SetRequirements(cfg.Requirements())
	store.SetDailyRoleMinimums(cfg.Minimums())
	store.SetHolidays(cfg.HolidayList())

	if cfg.ScheduleFile != "" {
		shifts, err := loadShifts(cfg.ScheduleFile)
		if os.IsNotExist(err) {
			logger.Info("No schedule file yet, starting empty", zap.String("file", cfg.ScheduleFile))
		} else if err != nil {
			return nil, fmt.Errorf("failed to load schedule: %w", err)
		} else {
			logger.Debug("Loaded shifts", zap.Int("count", len(shifts)))
			store.SetShifts(shifts)
		}
	}

	return store, nil
}

func loadRoster(path string) ([]model.StaffMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("roster validation failed: %w", err)
	}

	staff := make([]model.StaffMember, len(file.Staff))
	for i, entry := range file.Staff {
		if _, err := timeutil.TimeToMinutes(entry.StandardShiftStart); err != nil {
			return nil, fmt.Errorf("staff %s: %w", entry.ID, err)
		}
		if _, err := timeutil.TimeToMinutes(entry.StandardShiftEnd); err != nil {
			return nil, fmt.Errorf("staff %s: %w", entry.ID, err)
		}
		staff[i] = model.StaffMember{
			ID:                 entry.ID,
			FullName:           entry.FullName,
			Role:               entry.Role,
			HomeOffice:         entry.HomeOffice,
			Phone:              entry.Phone,
			MonthlyHours:       entry.MonthlyHours,
			StandardShiftStart: entry.StandardShiftStart,
			StandardShiftEnd:   entry.StandardShiftEnd,
		}
	}
	return staff, nil
}

func loadShifts(path string) ([]model.Shift, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("schedule validation failed: %w", err)
	}

	shifts := make([]model.Shift, len(file.Shifts))
	for i, entry := range file.Shifts {
		shift := model.Shift{
			ID:                entry.ID,
			StaffID:           entry.StaffID,
			Date:              entry.Date,
			Start:             entry.Start,
			End:               entry.End,
			Type:              model.ShiftType(entry.Type),
			Status:            model.ShiftStatus(entry.Status),
			Source:            model.ShiftSource(entry.Source),
			ShiftGroupID:      entry.ShiftGroupID,
			RecurrenceGroupID: entry.RecurrenceGroupID,
		}
		if shift.Type == "" {
			shift.Type = model.TypeStandard
		}
		if shift.Status == "" {
			shift.Status = model.StatusDraft
		}
		if shift.Source == "" {
			shift.Source = model.SourceManual
		}
		if !shift.Type.IsValid() {
			return nil, fmt.Errorf("shift %s: unknown type %q", shift.ID, entry.Type)
		}
		if !shift.Status.IsValid() {
			return nil, fmt.Errorf("shift %s: unknown status %q", shift.ID, entry.Status)
		}
		shifts[i] = shift
	}
	return shifts, nil
}
