package schedule

import "github.com/mgiorello/turnero/pkg/core/model"

// maxHistoryDepth bounds the undo stack; the oldest snapshot is discarded
// first.
const maxHistoryDepth = 20

// history holds full value snapshots of the shift collection. Shifts contain
// only value fields, so copying the slice is a deep copy and historical state
// never aliases live state.
type history struct {
	undo [][]model.Shift
	redo [][]model.Shift
}

func snapshotShifts(shifts []model.Shift) []model.Shift {
	return append([]model.Shift(nil), shifts...)
}

// record pushes the pre-mutation state onto the undo stack and invalidates
// the redo stack. Called before every structural mutation.
func (h *history) record(current []model.Shift) {
	h.undo = append(h.undo, snapshotShifts(current))
	if len(h.undo) > maxHistoryDepth {
		h.undo = h.undo[len(h.undo)-maxHistoryDepth:]
	}
	h.redo = nil
}

// restoreUndo swaps the current state for the most recent undo snapshot,
// parking the current state on the redo stack. ok is false when there is
// nothing to undo.
func (h *history) restoreUndo(current []model.Shift) (restored []model.Shift, ok bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	restored = h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, snapshotShifts(current))
	return restored, true
}

// restoreRedo is the mirror of restoreUndo.
func (h *history) restoreRedo(current []model.Shift) (restored []model.Shift, ok bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	restored = h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, snapshotShifts(current))
	return restored, true
}
