package shiftgen

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// weekdayRules maps RecurrenceConfig.Days indices (Sunday=0) to RRULE
// weekdays.
var weekdayRules = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Expand materializes a recurring shift definition into concrete dated
// instances, all sharing one fresh RecurrenceGroupID.
//
// Weeks are walked Monday-first from anchorWeekStart. With mode "week" every
// day is included; with mode "custom" only the weekdays enabled in cfg.Days
// (Sunday=0 indexing). cfg.UntilDate bounds the expansion inclusively and
// overrides cfg.Weeks; without it the expansion covers max(1, cfg.Weeks)
// whole weeks. Each included day goes through Normalize, so a base interval
// that crosses midnight yields two segments per day.
func Expand(ids model.IDGenerator, base model.Shift, cfg model.RecurrenceConfig, anchorWeekStart time.Time) ([]model.Shift, error) {
	anchor := timeutil.StartOfWeek(anchorWeekStart)

	var until time.Time
	if cfg.UntilDate != "" {
		d, err := timeutil.ParseDate(cfg.UntilDate)
		if err != nil {
			return nil, err
		}
		until = d
	} else {
		weeks := cfg.Weeks
		if weeks < 1 {
			weeks = 1
		}
		until = timeutil.AddDays(anchor, weeks*7-1)
	}

	var byWeekday []rrule.Weekday
	switch cfg.Mode {
	case model.RecurrenceWeek:
		byWeekday = weekdayRules[:]
	case model.RecurrenceCustom:
		for i, enabled := range cfg.Days {
			if enabled {
				byWeekday = append(byWeekday, weekdayRules[i])
			}
		}
		if len(byWeekday) == 0 {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unknown recurrence mode %q", cfg.Mode)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   anchor,
		Until:     until,
		Byweekday: byWeekday,
		Wkst:      rrule.MO,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	groupID := ids.NextID()

	var shifts []model.Shift
	for _, day := range rule.All() {
		segments, err := Normalize(ids, NormalizeRequest{
			StaffID: base.StaffID,
			Date:    timeutil.FormatDate(day),
			Start:   base.Start,
			End:     base.End,
			Type:    base.Type,
			Source:  base.Source,
		})
		if err != nil {
			return nil, err
		}
		for i := range segments {
			segments[i].RecurrenceGroupID = groupID
		}
		shifts = append(shifts, segments...)
	}

	return shifts, nil
}
