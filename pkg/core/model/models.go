package model

import "strings"

// ShiftStatus is the lifecycle status of a shift.
// Drafts are provisional and only become confirmed on an explicit publish.
type ShiftStatus string

const (
	StatusDraft     ShiftStatus = "draft"
	StatusConfirmed ShiftStatus = "confirmed"
)

func (s ShiftStatus) IsValid() bool {
	return s == StatusDraft || s == StatusConfirmed
}

// ShiftType classifies a shift segment.
type ShiftType string

const (
	TypeStandard  ShiftType = "standard"
	TypeException ShiftType = "exception"
	TypeOvertime  ShiftType = "overtime"
)

func (t ShiftType) IsValid() bool {
	return t == TypeStandard || t == TypeException || t == TypeOvertime
}

// ShiftSource records whether a shift was entered by hand or created by the
// auto-assignment solver.
type ShiftSource string

const (
	SourceManual ShiftSource = "manual"
	SourceAuto   ShiftSource = "auto"
)

// NormalizeRole canonicalizes a role string loaded from external data:
// trimmed, internal whitespace collapsed, lower-cased. All role comparisons
// in the engine assume both sides went through this.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.Join(strings.Fields(role), " "))
}

// StaffMember is one person on the roster. Identity is immutable once loaded;
// the descriptive fields are not.
type StaffMember struct {
	ID           string
	FullName     string
	Role         string // normalized, see NormalizeRole
	HomeOffice   bool
	Phone        string
	MonthlyHours int

	// Default working window used when the solver assigns this person a
	// daily-minimum shift.
	StandardShiftStart string // "HH:MM"
	StandardShiftEnd   string // "HH:MM", "24:00" allowed
}

// Shift is one same-day segment of work. A stored shift always satisfies
// start < end as minute values; intervals that cross midnight are split by
// the normalizer before they reach the store.
type Shift struct {
	ID      string
	StaffID string
	Date    string // "YYYY-MM-DD", the day the segment falls on
	Start   string // "HH:MM"
	End     string // "HH:MM", "24:00" allowed as end only
	Type    ShiftType
	Status  ShiftStatus
	Source  ShiftSource

	// ShiftGroupID links the 1-2 segments produced by splitting one
	// midnight-crossing interval. Empty for unsplit shifts.
	ShiftGroupID string

	// RecurrenceGroupID links every instance produced by one recurrence
	// expansion. Empty for one-off shifts.
	RecurrenceGroupID string
}

// CoverageRequirement states that a role must have at least MinStaff people
// active during a daily time window.
type CoverageRequirement struct {
	ID       string
	Role     string
	Start    string // "HH:MM"
	End      string // "HH:MM", "24:00" allowed
	MinStaff int
}

// DailyRoleMinimum is an absolute per-day headcount floor for a role,
// independent of time-of-day windows.
type DailyRoleMinimum struct {
	Role     string
	MinDaily int
}

// Holiday marks a calendar day. Informational only; coverage math ignores it.
type Holiday struct {
	Date string // "YYYY-MM-DD"
	Name string
}

// RecurrenceMode selects how a recurring shift picks its days.
type RecurrenceMode string

const (
	// RecurrenceWeek repeats on every day of each week.
	RecurrenceWeek RecurrenceMode = "week"
	// RecurrenceCustom repeats only on the weekdays enabled in Days.
	RecurrenceCustom RecurrenceMode = "custom"
)

// RecurrenceConfig describes how a base shift repeats.
type RecurrenceConfig struct {
	Active bool
	Mode   RecurrenceMode
	// Days is indexed by weekday with Sunday=0, matching time.Weekday.
	Days [7]bool
	// Weeks is the repeat count, used only when UntilDate is empty.
	Weeks int
	// UntilDate is an optional inclusive "YYYY-MM-DD" end date. When set it
	// overrides Weeks.
	UntilDate string
}
