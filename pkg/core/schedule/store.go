// Package schedule owns the canonical scheduling collections (staff, shifts,
// coverage configuration, holidays) together with the current view state, and
// exposes filtered projections over them. Every projection is recomputed from
// current state on each call; nothing is cached, so nothing can go stale.
//
// A Store is built for single-threaded, synchronous use. Callers sharing one
// Store across goroutines must serialize access themselves.
package schedule

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mgiorello/turnero/pkg/core/coverage"
	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// ViewMode selects the day timeline or the week grid.
type ViewMode string

const (
	ViewDay  ViewMode = "day"
	ViewWeek ViewMode = "week"
)

// TriState is a yes/no filter that can also be switched off.
type TriState string

const (
	TriAll TriState = "all"
	TriYes TriState = "yes"
	TriNo  TriState = "no"
)

// StatusFilter narrows shifts by lifecycle status.
type StatusFilter string

const (
	StatusAll           StatusFilter = "all"
	StatusOnlyDraft     StatusFilter = "draft"
	StatusOnlyConfirmed StatusFilter = "confirmed"
)

// Filters is the staff/shift filter state of the view.
type Filters struct {
	Roles       []string
	HomeOffice  TriState
	Search      string
	Status      StatusFilter
	ActiveNow   bool
	GroupByRole bool
}

// FiltersPatch updates only the filter fields that are set.
type FiltersPatch struct {
	Roles       *[]string
	HomeOffice  *TriState
	Search      *string
	Status      *StatusFilter
	ActiveNow   *bool
	GroupByRole *bool
}

// Store is the single owner of all scheduling state.
type Store struct {
	staff         []model.StaffMember
	shifts        []model.Shift
	requirements  []model.CoverageRequirement
	dailyMinimums []model.DailyRoleMinimum
	holidays      []model.Holiday

	currentDate time.Time
	viewMode    ViewMode
	filters     Filters

	ids model.IDGenerator
	now func() time.Time

	history history
}

// New creates an empty store. ids mints shift and group identifiers; the
// clock defaults to time.Now and backs the "active now" filter.
func New(ids model.IDGenerator) *Store {
	return &Store{
		viewMode:    ViewDay,
		currentDate: time.Now().Truncate(24 * time.Hour),
		filters: Filters{
			HomeOffice:  TriAll,
			Status:      StatusAll,
			GroupByRole: true,
		},
		ids: ids,
		now: time.Now,
	}
}

// SetClock replaces the wall-clock source. Tests inject a fixed clock here so
// the "active now" filter is deterministic.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SetStaff replaces the roster. Roles are normalized on load so comparisons
// against requirement roles are exact-match safe.
func (s *Store) SetStaff(staff []model.StaffMember) {
	s.staff = append([]model.StaffMember(nil), staff...)
	for i := range s.staff {
		s.staff[i].Role = model.NormalizeRole(s.staff[i].Role)
	}
}

// SetRequirements replaces the coverage requirement configuration.
func (s *Store) SetRequirements(reqs []model.CoverageRequirement) {
	s.requirements = append([]model.CoverageRequirement(nil), reqs...)
	for i := range s.requirements {
		s.requirements[i].Role = model.NormalizeRole(s.requirements[i].Role)
	}
}

// SetDailyRoleMinimums replaces the daily headcount floors. Each minimum is
// sanitized to a non-negative integer rather than rejected.
func (s *Store) SetDailyRoleMinimums(minimums []model.DailyRoleMinimum) {
	s.dailyMinimums = append([]model.DailyRoleMinimum(nil), minimums...)
	for i := range s.dailyMinimums {
		s.dailyMinimums[i].Role = model.NormalizeRole(s.dailyMinimums[i].Role)
		if s.dailyMinimums[i].MinDaily < 0 {
			s.dailyMinimums[i].MinDaily = 0
		}
	}
}

// SetHolidays replaces the holiday calendar.
func (s *Store) SetHolidays(holidays []model.Holiday) {
	s.holidays = append([]model.Holiday(nil), holidays...)
}

// SetShifts replaces the shift collection wholesale, bypassing history. It is
// the load path for schedules persisted by the caller; shifts are assumed to
// have been normalized when first created.
func (s *Store) SetShifts(shifts []model.Shift) {
	s.shifts = append([]model.Shift(nil), shifts...)
}

// Accessors return value copies; no caller holds a reference into the store.

func (s *Store) Staff() []model.StaffMember {
	return append([]model.StaffMember(nil), s.staff...)
}

func (s *Store) Shifts() []model.Shift {
	return append([]model.Shift(nil), s.shifts...)
}

func (s *Store) Requirements() []model.CoverageRequirement {
	return append([]model.CoverageRequirement(nil), s.requirements...)
}

func (s *Store) DailyRoleMinimums() []model.DailyRoleMinimum {
	return append([]model.DailyRoleMinimum(nil), s.dailyMinimums...)
}

func (s *Store) Holidays() []model.Holiday {
	return append([]model.Holiday(nil), s.holidays...)
}

// View state.

func (s *Store) CurrentDate() time.Time { return s.currentDate }

func (s *Store) SetDate(d time.Time) { s.currentDate = d }

// StepDate moves the current date by n steps of the active view: days in day
// view, whole weeks in week view.
func (s *Store) StepDate(n int) {
	step := n
	if s.viewMode == ViewWeek {
		step = n * 7
	}
	s.currentDate = timeutil.AddDays(s.currentDate, step)
}

func (s *Store) ViewMode() ViewMode { return s.viewMode }

func (s *Store) SetViewMode(mode ViewMode) { s.viewMode = mode }

func (s *Store) Filters() Filters {
	f := s.filters
	f.Roles = append([]string(nil), s.filters.Roles...)
	return f
}

// SetFilters applies a partial filter update; unset fields keep their value.
// Role filters are normalized like roster roles.
func (s *Store) SetFilters(patch FiltersPatch) {
	if patch.Roles != nil {
		roles := make([]string, len(*patch.Roles))
		for i, role := range *patch.Roles {
			roles[i] = model.NormalizeRole(role)
		}
		s.filters.Roles = roles
	}
	if patch.HomeOffice != nil {
		s.filters.HomeOffice = *patch.HomeOffice
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	if patch.Status != nil {
		s.filters.Status = *patch.Status
	}
	if patch.ActiveNow != nil {
		s.filters.ActiveNow = *patch.ActiveNow
	}
	if patch.GroupByRole != nil {
		s.filters.GroupByRole = *patch.GroupByRole
	}
}

// FilteredStaff projects the roster through the active filters: role set
// membership, home-office tri-state, accent- and case-insensitive substring
// search on the full name, and optionally "active now" (a shift dated today
// covering the real current wall-clock minute, regardless of the viewed date).
func (s *Store) FilteredStaff() []model.StaffMember {
	search := foldString(s.filters.Search)

	var today string
	var nowMinute int
	if s.filters.ActiveNow {
		now := s.now()
		today = timeutil.FormatDate(now)
		nowMinute = now.Hour()*60 + now.Minute()
	}

	filtered := make([]model.StaffMember, 0, len(s.staff))
	for _, member := range s.staff {
		if len(s.filters.Roles) > 0 && !containsString(s.filters.Roles, member.Role) {
			continue
		}
		if s.filters.HomeOffice == TriYes && !member.HomeOffice {
			continue
		}
		if s.filters.HomeOffice == TriNo && member.HomeOffice {
			continue
		}
		if search != "" && !strings.Contains(foldString(member.FullName), search) {
			continue
		}
		if s.filters.ActiveNow && !s.hasShiftCovering(member.ID, today, nowMinute) {
			continue
		}
		filtered = append(filtered, member)
	}
	return filtered
}

// StaffByRole groups the filtered staff by role, used by week-grid callers
// when grouping is enabled.
func (s *Store) StaffByRole() map[string][]model.StaffMember {
	grouped := make(map[string][]model.StaffMember)
	for _, member := range s.FilteredStaff() {
		grouped[member.Role] = append(grouped[member.Role], member)
	}
	return grouped
}

// ShiftsForDate returns the shifts on a date, optionally narrowed by status.
func (s *Store) ShiftsForDate(date string, status StatusFilter) []model.Shift {
	shifts := make([]model.Shift, 0)
	for _, shift := range s.shifts {
		if shift.Date != date {
			continue
		}
		if status == StatusOnlyDraft && shift.Status != model.StatusDraft {
			continue
		}
		if status == StatusOnlyConfirmed && shift.Status != model.StatusConfirmed {
			continue
		}
		shifts = append(shifts, shift)
	}
	return shifts
}

// ShiftsForCurrentDate applies the view's date and status filter.
func (s *Store) ShiftsForCurrentDate() []model.Shift {
	return s.ShiftsForDate(timeutil.FormatDate(s.currentDate), s.filters.Status)
}

// HolidayOn reports the holiday on a date, if any.
func (s *Store) HolidayOn(date string) (model.Holiday, bool) {
	for _, holiday := range s.holidays {
		if holiday.Date == date {
			return holiday, true
		}
	}
	return model.Holiday{}, false
}

// Coverage projections. These aggregate over the currently filtered staff
// set: coverage here is a view-relative diagnostic. Callers wanting a
// roster-wide audit use the coverage package directly with Staff().

// DailyCoverage computes the 5-minute bucket profile for a date.
func (s *Store) DailyCoverage(date string) []coverage.Bucket {
	return coverage.Daily(s.ShiftsForDate(date, s.filters.Status), s.FilteredStaff(), s.requirements)
}

// WarningsAt lists the requirements short-staffed at an instant of a date.
func (s *Store) WarningsAt(date string, minute int) []coverage.Warning {
	return coverage.WarningsAt(s.ShiftsForDate(date, s.filters.Status), s.FilteredStaff(), s.requirements, minute)
}

// DailyWarningCount counts the requirements short at any point of a date,
// each at most once.
func (s *Store) DailyWarningCount(date string) int {
	return coverage.DailyWarningCount(s.ShiftsForDate(date, s.filters.Status), s.FilteredStaff(), s.requirements, coverage.DefaultWarningStep)
}

// ActiveStaffAt returns the filtered staff on shift at an instant of a date.
func (s *Store) ActiveStaffAt(date string, minute int) []model.StaffMember {
	return coverage.ActiveAt(s.ShiftsForDate(date, s.filters.Status), s.FilteredStaff(), minute)
}

func (s *Store) hasShiftCovering(staffID, date string, minute int) bool {
	for _, shift := range s.shifts {
		if shift.StaffID != staffID || shift.Date != date {
			continue
		}
		start, err1 := timeutil.TimeToMinutes(shift.Start)
		end, err2 := timeutil.TimeToMinutes(shift.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if start <= minute && minute < end {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// foldString lower-cases and strips combining accent marks, so "Martínez"
// matches "martinez".
func foldString(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(stripped)
}
