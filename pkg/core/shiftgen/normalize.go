// Package shiftgen produces concrete shift instances: it splits raw intervals
// that cross midnight into same-day segments and expands recurring shift
// definitions into dated instances.
package shiftgen

import (
	"errors"
	"fmt"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// ErrInvalidInterval reports a raw interval that cannot be normalized into
// segments satisfying the stored-shift invariant start < end.
var ErrInvalidInterval = errors.New("invalid shift interval")

// NormalizeRequest is a raw shift interval as entered by a caller. Start/End
// may cross midnight; Normalize decides whether to split.
type NormalizeRequest struct {
	StaffID string
	Date    string // "YYYY-MM-DD"
	Start   string // "HH:MM"
	End     string // "HH:MM", "24:00" allowed
	Type    model.ShiftType
	Source  model.ShiftSource
}

// Normalize turns a raw interval into 1 or 2 same-day segments.
//
// start < end yields a single segment on the requested date. Anything else is
// treated as crossing midnight (start == end included) and yields two segments
// linked by a fresh ShiftGroupID: (date, start, "24:00") and
// (date+1, "00:00", end).
//
// Rejected inputs: malformed times, start of "24:00", and crossing intervals
// ending at "00:00" (the second segment would be zero-length; callers wanting
// a midnight end use "24:00").
//
// Segments always come out as drafts. Ids are freshly minted from ids, so two
// identical calls produce equal-shaped but distinct results.
func Normalize(ids model.IDGenerator, req NormalizeRequest) ([]model.Shift, error) {
	startMins, err := timeutil.TimeToMinutes(req.Start)
	if err != nil {
		return nil, err
	}
	endMins, err := timeutil.TimeToMinutes(req.End)
	if err != nil {
		return nil, err
	}
	if startMins >= timeutil.MinutesPerDay {
		return nil, fmt.Errorf("%w: start %q is not a valid start of day", ErrInvalidInterval, req.Start)
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	shiftType := req.Type
	if shiftType == "" {
		shiftType = model.TypeStandard
	}
	source := req.Source
	if source == "" {
		source = model.SourceManual
	}

	if startMins < endMins {
		return []model.Shift{{
			ID:      ids.NextID(),
			StaffID: req.StaffID,
			Date:    req.Date,
			Start:   req.Start,
			End:     req.End,
			Type:    shiftType,
			Status:  model.StatusDraft,
			Source:  source,
		}}, nil
	}

	// Crossing midnight. A "00:00" end would leave the next-day segment
	// zero-length, which no store may hold.
	if endMins == 0 {
		return nil, fmt.Errorf("%w: %s-%s crosses midnight into an empty segment", ErrInvalidInterval, req.Start, req.End)
	}

	groupID := ids.NextID()
	nextDate := timeutil.FormatDate(timeutil.AddDays(date, 1))

	return []model.Shift{
		{
			ID:           ids.NextID(),
			StaffID:      req.StaffID,
			Date:         req.Date,
			Start:        req.Start,
			End:          "24:00",
			Type:         shiftType,
			Status:       model.StatusDraft,
			Source:       source,
			ShiftGroupID: groupID,
		},
		{
			ID:           ids.NextID(),
			StaffID:      req.StaffID,
			Date:         nextDate,
			Start:        "00:00",
			End:          req.End,
			Type:         shiftType,
			Status:       model.StatusDraft,
			Source:       source,
			ShiftGroupID: groupID,
		},
	}, nil
}
