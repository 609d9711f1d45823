// Package solver implements the greedy, fairness-aware auto-assignment of
// idle staff to coverage gaps over a 7-day week. It never moves an existing
// shift, never books a staff member twice on one day, and never assigns past
// a requirement's minimum; gaps it cannot close are reported, not errored.
package solver

import (
	"fmt"
	"sort"
	"time"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/shiftgen"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// Input is everything one auto-distribution run reads. The solver treats all
// of it as read-only.
type Input struct {
	// WeekStart is any day of the target week; the run covers the 7 days
	// from that week's Monday.
	WeekStart time.Time

	Staff         []model.StaffMember
	Shifts        []model.Shift // existing shifts, any date
	DailyMinimums []model.DailyRoleMinimum
	Requirements  []model.CoverageRequirement

	IDs model.IDGenerator
}

// Gap reports a daily minimum or requirement the run could not fully close.
type Gap struct {
	Date          string
	Role          string
	RequirementID string // empty for daily-minimum gaps
	Requested     int
	Assigned      int
}

// Result is the outcome of one run. Assigned holds every newly created shift
// in creation order; OpenGaps lists the shortfalls left open because no
// eligible candidates remained.
type Result struct {
	Assigned []model.Shift
	OpenGaps []Gap
}

// run carries the mutable per-run state: staged shifts are registered here so
// later days and passes see them exactly like pre-existing ones.
type run struct {
	in       Input
	weekDays []string
	weekSet  map[string]bool

	// shiftsByDate holds parsed intervals per date, existing plus staged.
	shiftsByDate map[string][]interval
	// busy marks date -> staffID -> has at least one shift.
	busy map[string]map[string]bool
	// weekDaysAssigned counts, per staff id, distinct week dates with a
	// shift. This is the fairness key.
	weekDaysAssigned map[string]int

	result Result
}

type interval struct {
	staffID string
	role    string
	start   int
	end     int
}

// AutoDistribute assigns idle staff across the week containing in.WeekStart:
// per day, daily role minimums first, then interval coverage requirements.
// Candidate order is deterministic: fewest week days already assigned first,
// ties broken by full name.
func AutoDistribute(in Input) (*Result, error) {
	monday := timeutil.StartOfWeek(in.WeekStart)

	r := &run{
		in:               in,
		weekDays:         make([]string, 7),
		shiftsByDate:     make(map[string][]interval),
		busy:             make(map[string]map[string]bool),
		weekDaysAssigned: make(map[string]int),
	}
	r.weekSet = make(map[string]bool, 7)
	for i := range r.weekDays {
		r.weekDays[i] = timeutil.FormatDate(timeutil.AddDays(monday, i))
		r.weekSet[r.weekDays[i]] = true
	}

	roleByID := make(map[string]string, len(in.Staff))
	for _, member := range in.Staff {
		roleByID[member.ID] = member.Role
	}

	for _, shift := range in.Shifts {
		start, err1 := timeutil.TimeToMinutes(shift.Start)
		end, err2 := timeutil.TimeToMinutes(shift.End)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("existing shift %s has invalid times: %s-%s", shift.ID, shift.Start, shift.End)
		}
		r.register(shift.Date, interval{shift.StaffID, roleByID[shift.StaffID], start, end})
	}

	for _, day := range r.weekDays {
		if err := r.dailyMinimumPass(day); err != nil {
			return nil, err
		}
		if err := r.requirementPass(day); err != nil {
			return nil, err
		}
	}

	return &r.result, nil
}

func (r *run) register(date string, iv interval) {
	r.shiftsByDate[date] = append(r.shiftsByDate[date], iv)
	if r.busy[date] == nil {
		r.busy[date] = make(map[string]bool)
	}
	if !r.busy[date][iv.staffID] && r.weekSet[date] {
		r.weekDaysAssigned[iv.staffID]++
	}
	r.busy[date][iv.staffID] = true
}

// candidates returns staff of the role with no shift on the date, ordered by
// the fairness key. Sorting is stable over roster order.
func (r *run) candidates(role, date string) []model.StaffMember {
	eligible := make([]model.StaffMember, 0)
	for _, member := range r.in.Staff {
		if member.Role != role {
			continue
		}
		if r.busy[date][member.ID] {
			continue
		}
		eligible = append(eligible, member)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		di, dj := r.weekDaysAssigned[eligible[i].ID], r.weekDaysAssigned[eligible[j].ID]
		if di != dj {
			return di < dj
		}
		return eligible[i].FullName < eligible[j].FullName
	})
	return eligible
}

// stage normalizes and records a new auto shift for the member.
func (r *run) stage(member model.StaffMember, date, start, end string) error {
	segments, err := shiftgen.Normalize(r.in.IDs, shiftgen.NormalizeRequest{
		StaffID: member.ID,
		Date:    date,
		Start:   start,
		End:     end,
		Type:    model.TypeStandard,
		Source:  model.SourceAuto,
	})
	if err != nil {
		return fmt.Errorf("cannot assign %s on %s: %w", member.ID, date, err)
	}

	for _, segment := range segments {
		startMins, _ := timeutil.TimeToMinutes(segment.Start)
		endMins, _ := timeutil.TimeToMinutes(segment.End)
		r.register(segment.Date, interval{member.ID, member.Role, startMins, endMins})
		r.result.Assigned = append(r.result.Assigned, segment)
	}
	return nil
}

// dailyMinimumPass tops up each role to its absolute per-day headcount floor,
// assigning each picked member their own standard working window.
func (r *run) dailyMinimumPass(date string) error {
	for _, minimum := range r.in.DailyMinimums {
		current := 0
		for staffID := range r.busy[date] {
			if r.roleOf(staffID) == minimum.Role {
				current++
			}
		}
		if current >= minimum.MinDaily {
			continue
		}

		shortfall := minimum.MinDaily - current
		assigned := 0
		for _, member := range r.candidates(minimum.Role, date) {
			if assigned == shortfall {
				break
			}
			if err := r.stage(member, date, member.StandardShiftStart, member.StandardShiftEnd); err != nil {
				return err
			}
			assigned++
		}
		if assigned < shortfall {
			r.result.OpenGaps = append(r.result.OpenGaps, Gap{
				Date: date, Role: minimum.Role,
				Requested: shortfall, Assigned: assigned,
			})
		}
	}
	return nil
}

// requirementPass tops up each time-window requirement, assigning shifts that
// span exactly the requirement window. A shift counts toward a requirement
// when it overlaps the window as an open interval, not only when it covers it.
func (r *run) requirementPass(date string) error {
	for _, req := range r.in.Requirements {
		reqStart, err1 := timeutil.TimeToMinutes(req.Start)
		reqEnd, err2 := timeutil.TimeToMinutes(req.End)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("requirement %s has invalid window: %s-%s", req.ID, req.Start, req.End)
		}

		covering := make(map[string]bool)
		for _, iv := range r.shiftsByDate[date] {
			if iv.role == req.Role && iv.start < reqEnd && reqStart < iv.end {
				covering[iv.staffID] = true
			}
		}
		if len(covering) >= req.MinStaff {
			continue
		}

		shortfall := req.MinStaff - len(covering)
		assigned := 0
		for _, member := range r.candidates(req.Role, date) {
			if assigned == shortfall {
				break
			}
			if err := r.stage(member, date, req.Start, req.End); err != nil {
				return err
			}
			assigned++
		}
		if assigned < shortfall {
			r.result.OpenGaps = append(r.result.OpenGaps, Gap{
				Date: date, Role: req.Role, RequirementID: req.ID,
				Requested: shortfall, Assigned: assigned,
			})
		}
	}
	return nil
}

func (r *run) roleOf(staffID string) string {
	for _, member := range r.in.Staff {
		if member.ID == staffID {
			return member.Role
		}
	}
	return ""
}
