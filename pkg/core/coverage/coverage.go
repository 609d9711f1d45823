// Package coverage discretizes a day's shifts into fixed 5-minute buckets and
// checks the result against coverage requirements. Everything here is a pure
// function over the slices passed in; the caller decides which staff set the
// diagnostic reflects (the store passes its filtered view).
package coverage

import (
	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

const (
	// BucketMinutes is the width of one coverage bucket.
	BucketMinutes = 5

	// BucketsPerDay is 24h divided into 5-minute slices.
	BucketsPerDay = timeutil.MinutesPerDay / BucketMinutes

	// DefaultWarningStep is the sampling granularity for the per-day
	// warning count.
	DefaultWarningStep = 15
)

// Bucket is one 5-minute slice [Minute, Minute+5) of a day's coverage.
type Bucket struct {
	Minute int
	// Count is the number of distinct staff with a shift covering Minute.
	Count int
	// RoleCounts maps role to distinct staff of that role covering Minute.
	RoleCounts map[string]int
	// WarningCount is the number of requirements whose window contains
	// Minute and whose role headcount is below MinStaff.
	WarningCount int
}

// Warning is one requirement that is short-staffed at a given instant.
type Warning struct {
	Role     string
	Required int
	Current  int
	Start    string
	End      string
}

// interval is a parsed shift attributed to a staff member known to the
// aggregation staff set.
type interval struct {
	staffID string
	role    string
	start   int
	end     int
}

// parseIntervals resolves shifts against the staff set, dropping shifts whose
// staff member is not in it. Stored shifts carry validated times, so parse
// failures cannot occur for store-held data and such shifts are dropped too.
func parseIntervals(shifts []model.Shift, staff []model.StaffMember) []interval {
	roleByID := make(map[string]string, len(staff))
	for _, member := range staff {
		roleByID[member.ID] = member.Role
	}

	intervals := make([]interval, 0, len(shifts))
	for _, shift := range shifts {
		role, ok := roleByID[shift.StaffID]
		if !ok {
			continue
		}
		start, err := timeutil.TimeToMinutes(shift.Start)
		if err != nil {
			continue
		}
		end, err := timeutil.TimeToMinutes(shift.End)
		if err != nil {
			continue
		}
		intervals = append(intervals, interval{shift.StaffID, role, start, end})
	}
	return intervals
}

// headcount returns the distinct staff of role active at minute, or the
// distinct staff of every role when role is empty.
func headcount(intervals []interval, role string, minute int) int {
	seen := make(map[string]bool)
	for _, iv := range intervals {
		if role != "" && iv.role != role {
			continue
		}
		if iv.start <= minute && minute < iv.end {
			seen[iv.staffID] = true
		}
	}
	return len(seen)
}

// Daily computes the full 288-bucket coverage profile for one day's shifts.
func Daily(shifts []model.Shift, staff []model.StaffMember, reqs []model.CoverageRequirement) []Bucket {
	intervals := parseIntervals(shifts, staff)
	buckets := make([]Bucket, BucketsPerDay)

	for i := range buckets {
		minute := i * BucketMinutes

		seen := make(map[string]bool)
		roleCounts := make(map[string]int)
		for _, iv := range intervals {
			if iv.start > minute || minute >= iv.end {
				continue
			}
			if seen[iv.staffID] {
				continue
			}
			seen[iv.staffID] = true
			roleCounts[iv.role]++
		}

		warnings := 0
		for _, req := range reqs {
			reqStart, err1 := timeutil.TimeToMinutes(req.Start)
			reqEnd, err2 := timeutil.TimeToMinutes(req.End)
			if err1 != nil || err2 != nil {
				continue
			}
			if reqStart <= minute && minute < reqEnd && roleCounts[req.Role] < req.MinStaff {
				warnings++
			}
		}

		buckets[i] = Bucket{
			Minute:       minute,
			Count:        len(seen),
			RoleCounts:   roleCounts,
			WarningCount: warnings,
		}
	}

	return buckets
}

// WarningsAt lists every requirement active at the given instant whose role
// headcount is below its minimum.
func WarningsAt(shifts []model.Shift, staff []model.StaffMember, reqs []model.CoverageRequirement, minute int) []Warning {
	intervals := parseIntervals(shifts, staff)

	warnings := make([]Warning, 0)
	for _, req := range reqs {
		reqStart, err1 := timeutil.TimeToMinutes(req.Start)
		reqEnd, err2 := timeutil.TimeToMinutes(req.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if reqStart > minute || minute >= reqEnd {
			continue
		}
		current := headcount(intervals, req.Role, minute)
		if current < req.MinStaff {
			warnings = append(warnings, Warning{
				Role:     req.Role,
				Required: req.MinStaff,
				Current:  current,
				Start:    req.Start,
				End:      req.End,
			})
		}
	}
	return warnings
}

// DailyWarningCount samples each requirement's window at step-minute
// granularity and counts the requirement once if any sample is short-staffed.
// A requirement short at twenty instants still counts as one.
func DailyWarningCount(shifts []model.Shift, staff []model.StaffMember, reqs []model.CoverageRequirement, step int) int {
	if step <= 0 {
		step = DefaultWarningStep
	}
	intervals := parseIntervals(shifts, staff)

	count := 0
	for _, req := range reqs {
		reqStart, err1 := timeutil.TimeToMinutes(req.Start)
		reqEnd, err2 := timeutil.TimeToMinutes(req.End)
		if err1 != nil || err2 != nil {
			continue
		}
		for minute := reqStart; minute < reqEnd; minute += step {
			if headcount(intervals, req.Role, minute) < req.MinStaff {
				count++
				break
			}
		}
	}
	return count
}

// ActiveAt returns the staff members with a shift covering the given instant,
// in the order of the staff slice passed in.
func ActiveAt(shifts []model.Shift, staff []model.StaffMember, minute int) []model.StaffMember {
	intervals := parseIntervals(shifts, staff)

	activeIDs := make(map[string]bool)
	for _, iv := range intervals {
		if iv.start <= minute && minute < iv.end {
			activeIDs[iv.staffID] = true
		}
	}

	active := make([]model.StaffMember, 0, len(activeIDs))
	for _, member := range staff {
		if activeIDs[member.ID] {
			active = append(active, member)
		}
	}
	return active
}
