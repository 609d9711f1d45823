package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/shiftgen"
)

type seqGen struct {
	n int
}

func (g *seqGen) NextID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestStore() *Store {
	s := New(&seqGen{})
	s.SetStaff([]model.StaffMember{
		{ID: "u1", FullName: "Sofía Martínez", Role: "Tecnico de Calle", HomeOffice: true,
			StandardShiftStart: "08:00", StandardShiftEnd: "16:00"},
		{ID: "u2", FullName: "Bruno Castro", Role: "tecnico de calle", HomeOffice: false,
			StandardShiftStart: "08:00", StandardShiftEnd: "16:00"},
		{ID: "u3", FullName: "Carolina Sosa", Role: "supervisor", HomeOffice: false,
			StandardShiftStart: "00:00", StandardShiftEnd: "08:00"},
	})
	return s
}

func strPtr(s string) *string        { return &s }
func triPtr(t TriState) *TriState    { return &t }
func boolPtr(b bool) *bool           { return &b }
func rolesPtr(r ...string) *[]string { return &r }

func TestSetStaff_NormalizesRoles(t *testing.T) {
	s := newTestStore()
	staff := s.Staff()
	assert.Equal(t, "tecnico de calle", staff[0].Role)
}

func TestFilteredStaff_RoleFilter(t *testing.T) {
	s := newTestStore()
	s.SetFilters(FiltersPatch{Roles: rolesPtr("  Tecnico   de Calle ")})

	filtered := s.FilteredStaff()
	require.Len(t, filtered, 2)
	assert.Equal(t, "u1", filtered[0].ID)
	assert.Equal(t, "u2", filtered[1].ID)
}

func TestFilteredStaff_HomeOfficeTriState(t *testing.T) {
	s := newTestStore()

	s.SetFilters(FiltersPatch{HomeOffice: triPtr(TriYes)})
	require.Len(t, s.FilteredStaff(), 1)
	assert.Equal(t, "u1", s.FilteredStaff()[0].ID)

	s.SetFilters(FiltersPatch{HomeOffice: triPtr(TriNo)})
	assert.Len(t, s.FilteredStaff(), 2)

	s.SetFilters(FiltersPatch{HomeOffice: triPtr(TriAll)})
	assert.Len(t, s.FilteredStaff(), 3)
}

func TestFilteredStaff_AccentInsensitiveSearch(t *testing.T) {
	s := newTestStore()

	s.SetFilters(FiltersPatch{Search: strPtr("martinez")})
	filtered := s.FilteredStaff()
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sofía Martínez", filtered[0].FullName)

	// Accented query against plain name works too
	s.SetFilters(FiltersPatch{Search: strPtr("CASTRÓ")})
	filtered = s.FilteredStaff()
	require.Len(t, filtered, 1)
	assert.Equal(t, "u2", filtered[0].ID)

	s.SetFilters(FiltersPatch{Search: strPtr("nobody")})
	assert.Empty(t, s.FilteredStaff())
}

func TestFilteredStaff_ActiveNow(t *testing.T) {
	s := newTestStore()
	s.SetClock(func() time.Time {
		return time.Date(2026, 1, 13, 10, 30, 0, 0, time.UTC)
	})
	s.SetShifts([]model.Shift{
		{ID: "s1", StaffID: "u1", Date: "2026-01-13", Start: "08:00", End: "16:00",
			Type: model.TypeStandard, Status: model.StatusDraft, Source: model.SourceManual},
		{ID: "s2", StaffID: "u2", Date: "2026-01-13", Start: "12:00", End: "20:00",
			Type: model.TypeStandard, Status: model.StatusDraft, Source: model.SourceManual},
		{ID: "s3", StaffID: "u3", Date: "2026-01-14", Start: "08:00", End: "16:00",
			Type: model.TypeStandard, Status: model.StatusDraft, Source: model.SourceManual},
	})

	// The viewed date is irrelevant to the active-now predicate
	s.SetDate(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	s.SetFilters(FiltersPatch{ActiveNow: boolPtr(true)})

	filtered := s.FilteredStaff()
	require.Len(t, filtered, 1)
	assert.Equal(t, "u1", filtered[0].ID)
}

func TestSetFilters_PartialUpdate(t *testing.T) {
	s := newTestStore()
	s.SetFilters(FiltersPatch{Search: strPtr("sofia")})
	s.SetFilters(FiltersPatch{HomeOffice: triPtr(TriYes)})

	f := s.Filters()
	assert.Equal(t, "sofia", f.Search)
	assert.Equal(t, TriYes, f.HomeOffice)
	assert.Equal(t, StatusAll, f.Status)
	assert.True(t, f.GroupByRole)
}

func TestShiftsForDate_StatusFilter(t *testing.T) {
	s := newTestStore()
	s.SetShifts([]model.Shift{
		{ID: "s1", StaffID: "u1", Date: "2026-01-13", Start: "08:00", End: "16:00", Status: model.StatusDraft},
		{ID: "s2", StaffID: "u2", Date: "2026-01-13", Start: "08:00", End: "16:00", Status: model.StatusConfirmed},
		{ID: "s3", StaffID: "u3", Date: "2026-01-14", Start: "08:00", End: "16:00", Status: model.StatusDraft},
	})

	assert.Len(t, s.ShiftsForDate("2026-01-13", StatusAll), 2)
	require.Len(t, s.ShiftsForDate("2026-01-13", StatusOnlyDraft), 1)
	assert.Equal(t, "s1", s.ShiftsForDate("2026-01-13", StatusOnlyDraft)[0].ID)
	assert.Len(t, s.ShiftsForDate("2026-01-15", StatusAll), 0)
}

func TestStepDate_ByViewMode(t *testing.T) {
	s := newTestStore()
	s.SetDate(time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC))

	s.StepDate(1)
	assert.Equal(t, 14, s.CurrentDate().Day())

	s.SetViewMode(ViewWeek)
	s.StepDate(1)
	assert.Equal(t, 21, s.CurrentDate().Day())

	s.StepDate(-1)
	assert.Equal(t, 14, s.CurrentDate().Day())
}

func TestStaffByRole(t *testing.T) {
	s := newTestStore()
	grouped := s.StaffByRole()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["tecnico de calle"], 2)
	assert.Len(t, grouped["supervisor"], 1)
}

func TestHolidayOn(t *testing.T) {
	s := newTestStore()
	s.SetHolidays([]model.Holiday{{Date: "2026-01-15", Name: "Feriado Local"}})

	holiday, ok := s.HolidayOn("2026-01-15")
	require.True(t, ok)
	assert.Equal(t, "Feriado Local", holiday.Name)

	_, ok = s.HolidayOn("2026-01-16")
	assert.False(t, ok)
}

func TestSetDailyRoleMinimums_Sanitized(t *testing.T) {
	s := newTestStore()
	s.SetDailyRoleMinimums([]model.DailyRoleMinimum{
		{Role: "  Supervisor ", MinDaily: -3},
		{Role: "tecnico de calle", MinDaily: 2},
	})

	minimums := s.DailyRoleMinimums()
	assert.Equal(t, "supervisor", minimums[0].Role)
	assert.Equal(t, 0, minimums[0].MinDaily)
	assert.Equal(t, 2, minimums[1].MinDaily)
}

func TestDailyCoverage_ReflectsFilteredStaff(t *testing.T) {
	s := newTestStore()
	s.SetRequirements([]model.CoverageRequirement{
		{ID: "r1", Role: "tecnico de calle", Start: "08:00", End: "16:00", MinStaff: 1},
	})
	s.SetShifts([]model.Shift{
		{ID: "s1", StaffID: "u1", Date: "2026-01-13", Start: "08:00", End: "16:00", Status: model.StatusDraft},
	})

	buckets := s.DailyCoverage("2026-01-13")
	require.Len(t, buckets, 288)
	assert.Equal(t, 1, buckets[600/5].Count)
	assert.Zero(t, buckets[600/5].WarningCount)

	// Filtering u1 out hides the coverage: the diagnostic is view-relative
	s.SetFilters(FiltersPatch{Search: strPtr("castro")})
	buckets = s.DailyCoverage("2026-01-13")
	assert.Zero(t, buckets[600/5].Count)
	assert.Equal(t, 1, buckets[600/5].WarningCount)

	warnings := s.WarningsAt("2026-01-13", 600)
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Required)
	assert.Equal(t, 0, warnings[0].Current)
	assert.Equal(t, 1, s.DailyWarningCount("2026-01-13"))
}

func TestActiveStaffAt(t *testing.T) {
	s := newTestStore()
	s.SetShifts([]model.Shift{
		{ID: "s1", StaffID: "u1", Date: "2026-01-13", Start: "08:00", End: "16:00", Status: model.StatusDraft},
	})

	active := s.ActiveStaffAt("2026-01-13", 9*60)
	require.Len(t, active, 1)
	assert.Equal(t, "u1", active[0].ID)
	assert.Empty(t, s.ActiveStaffAt("2026-01-13", 17*60))
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := newTestStore()
	_, err := s.AddShift(shiftgen.NormalizeRequest{StaffID: "u1", Date: "2026-01-13", Start: "08:00", End: "16:00"})
	require.NoError(t, err)

	shifts := s.Shifts()
	shifts[0].Status = model.StatusConfirmed
	assert.Equal(t, model.StatusDraft, s.Shifts()[0].Status)

	staff := s.Staff()
	staff[0].FullName = "changed"
	assert.Equal(t, "Sofía Martínez", s.Staff()[0].FullName)
}
