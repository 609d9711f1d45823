package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/shiftgen"
	"github.com/mgiorello/turnero/pkg/core/solver"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// ErrUnknownShift reports an update naming a shift id the store does not
// hold. Delete-family operations on missing ids are no-ops instead.
var ErrUnknownShift = errors.New("unknown shift")

// ErrUnknownStaff reports an operation naming a staff id outside the roster.
var ErrUnknownStaff = errors.New("unknown staff")

// ShiftPatch updates only the shift fields that are set.
type ShiftPatch struct {
	StaffID *string
	Date    *string
	Start   *string
	End     *string
	Type    *model.ShiftType
	Status  *model.ShiftStatus
	Source  *model.ShiftSource
}

// AddShift normalizes a raw interval and stores the resulting 1-2 segments.
// Either every segment of the interval is committed or none.
func (s *Store) AddShift(req shiftgen.NormalizeRequest) ([]model.Shift, error) {
	if err := s.checkStaff(req.StaffID); err != nil {
		return nil, err
	}
	segments, err := shiftgen.Normalize(s.ids, req)
	if err != nil {
		return nil, err
	}

	s.history.record(s.shifts)
	s.shifts = append(s.shifts, segments...)
	return segments, nil
}

// AddRecurringShift expands a recurring definition anchored at the Monday of
// the base date's week and stores every instance, or none on error. With an
// inactive config it behaves exactly like AddShift.
func (s *Store) AddRecurringShift(req shiftgen.NormalizeRequest, cfg model.RecurrenceConfig) ([]model.Shift, error) {
	if !cfg.Active {
		return s.AddShift(req)
	}
	if err := s.checkStaff(req.StaffID); err != nil {
		return nil, err
	}

	baseDate, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	base := model.Shift{
		StaffID: req.StaffID,
		Start:   req.Start,
		End:     req.End,
		Type:    req.Type,
		Source:  req.Source,
	}
	instances, err := shiftgen.Expand(s.ids, base, cfg, timeutil.StartOfWeek(baseDate))
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}

	s.history.record(s.shifts)
	s.shifts = append(s.shifts, instances...)
	return instances, nil
}

// UpdateShift merges the patch onto the named shift. When start or end
// changes, the shift is deleted and replaced with the normalizer's output for
// the merged interval (re-splitting if it now crosses midnight), carrying
// Type, Status, Source and RecurrenceGroupID forward. A sibling segment from
// an earlier midnight split is deliberately left alone; editing one half of a
// split pair does not reconcile the other.
//
// Without a time change the named fields are patched in place and id and
// group ids are preserved. Returns the shift(s) now representing the entry.
func (s *Store) UpdateShift(id string, patch ShiftPatch) ([]model.Shift, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShift, id)
	}

	merged := s.shifts[idx]
	if patch.StaffID != nil {
		merged.StaffID = *patch.StaffID
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Start != nil {
		merged.Start = *patch.Start
	}
	if patch.End != nil {
		merged.End = *patch.End
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Source != nil {
		merged.Source = *patch.Source
	}

	timesChanged := (patch.Start != nil && *patch.Start != s.shifts[idx].Start) ||
		(patch.End != nil && *patch.End != s.shifts[idx].End)

	if !timesChanged {
		s.history.record(s.shifts)
		merged.ID = s.shifts[idx].ID
		merged.ShiftGroupID = s.shifts[idx].ShiftGroupID
		merged.RecurrenceGroupID = s.shifts[idx].RecurrenceGroupID
		s.shifts[idx] = merged
		return []model.Shift{merged}, nil
	}

	segments, err := shiftgen.Normalize(s.ids, shiftgen.NormalizeRequest{
		StaffID: merged.StaffID,
		Date:    merged.Date,
		Start:   merged.Start,
		End:     merged.End,
		Type:    merged.Type,
		Source:  merged.Source,
	})
	if err != nil {
		return nil, err
	}
	for i := range segments {
		segments[i].Status = merged.Status
		segments[i].RecurrenceGroupID = merged.RecurrenceGroupID
	}

	s.history.record(s.shifts)
	s.shifts = append(s.shifts[:idx], s.shifts[idx+1:]...)
	s.shifts = append(s.shifts, segments...)
	return segments, nil
}

// DeleteShift removes a shift. Deleting an absent id is a no-op, not an
// error, and records no history.
func (s *Store) DeleteShift(id string) {
	if s.indexOf(id) < 0 {
		return
	}
	s.history.record(s.shifts)
	s.shifts = s.deleteWhere(func(shift model.Shift) bool {
		return shift.ID == id
	})
}

// DeleteSeries removes every shift sharing the recurrence group id and
// returns how many were removed.
func (s *Store) DeleteSeries(recurrenceGroupID string) int {
	if recurrenceGroupID == "" {
		return 0
	}
	count := 0
	for _, shift := range s.shifts {
		if shift.RecurrenceGroupID == recurrenceGroupID {
			count++
		}
	}
	if count == 0 {
		return 0
	}

	s.history.record(s.shifts)
	s.shifts = s.deleteWhere(func(shift model.Shift) bool {
		return shift.RecurrenceGroupID == recurrenceGroupID
	})
	return count
}

// DeleteSeriesFromWeekday removes, from the reference shift's recurrence
// series, every shift dated on or after the reference whose weekday matches
// the reference's weekday. The reference shift itself is always removed. A
// reference outside the store, or one without a series, removes at most the
// reference and reports the count.
func (s *Store) DeleteSeriesFromWeekday(shiftID string) (int, error) {
	idx := s.indexOf(shiftID)
	if idx < 0 {
		return 0, nil
	}
	ref := s.shifts[idx]

	refDate, err := timeutil.ParseDate(ref.Date)
	if err != nil {
		return 0, err
	}
	refWeekday := refDate.Weekday()

	matches := func(shift model.Shift) bool {
		if ref.RecurrenceGroupID == "" {
			return shift.ID == ref.ID
		}
		if shift.RecurrenceGroupID != ref.RecurrenceGroupID {
			return false
		}
		date, err := timeutil.ParseDate(shift.Date)
		if err != nil {
			return false
		}
		return !date.Before(refDate) && date.Weekday() == refWeekday
	}

	count := 0
	for _, shift := range s.shifts {
		if matches(shift) {
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}

	s.history.record(s.shifts)
	s.shifts = s.deleteWhere(matches)
	return count, nil
}

// PublishChanges confirms every shift, drafts and confirmed alike, and
// returns how many drafts were promoted.
func (s *Store) PublishChanges() int {
	s.history.record(s.shifts)
	promoted := 0
	for i := range s.shifts {
		if s.shifts[i].Status != model.StatusConfirmed {
			promoted++
		}
		s.shifts[i].Status = model.StatusConfirmed
	}
	return promoted
}

// AutoDistribute runs the greedy solver over the week containing weekStart
// and absorbs its assignments. The run is atomic: on error nothing changes,
// and a run that assigns nothing records no history.
func (s *Store) AutoDistribute(weekStart time.Time) (*solver.Result, error) {
	result, err := solver.AutoDistribute(solver.Input{
		WeekStart:     weekStart,
		Staff:         s.Staff(),
		Shifts:        s.Shifts(),
		DailyMinimums: s.DailyRoleMinimums(),
		Requirements:  s.Requirements(),
		IDs:           s.ids,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Assigned) > 0 {
		s.history.record(s.shifts)
		s.shifts = append(s.shifts, result.Assigned...)
	}
	return result, nil
}

// Undo restores the shift collection to its state before the most recent
// mutation. A no-op when there is nothing to undo.
func (s *Store) Undo() bool {
	restored, ok := s.history.restoreUndo(s.shifts)
	if !ok {
		return false
	}
	s.shifts = restored
	return true
}

// Redo reverses the most recent Undo. A no-op when there is nothing to redo.
func (s *Store) Redo() bool {
	restored, ok := s.history.restoreRedo(s.shifts)
	if !ok {
		return false
	}
	s.shifts = restored
	return true
}

func (s *Store) indexOf(id string) int {
	for i, shift := range s.shifts {
		if shift.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) deleteWhere(match func(model.Shift) bool) []model.Shift {
	kept := make([]model.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		if !match(shift) {
			kept = append(kept, shift)
		}
	}
	return kept
}

func (s *Store) checkStaff(staffID string) error {
	for _, member := range s.staff {
		if member.ID == staffID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownStaff, staffID)
}
