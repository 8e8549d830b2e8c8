// Package repeatclick implements repeat-click detection (spec.md §4.4):
// during a direct-execution batch, clicks landing within a small window of
// each other are flagged so the model can be nudged toward keyboard
// navigation instead of blindly re-clicking the same spot.
package repeatclick

import "github.com/axon-cua/agent/internal/action"

// Window is the side length of the square tolerance window, in pixels.
const Window = 30

// MinRepeats is the minimum run length (inclusive) that triggers a warning.
const MinRepeats = 2

// Warning is the exact text appended to the last tool-result of a batch
// when a repeat-click run is detected. Its wording is part of the external
// protocol to the model (spec.md §6): it prescribes switching to keyboard
// navigation and app-specific shortcuts.
const Warning = "You've clicked the same spot multiple times without effect. Switch to keyboard navigation (Tab, arrow keys, Enter, or an app-specific shortcut) instead of clicking again."

// Detector tracks click coordinates within one direct-execution batch.
// Typing resets the record; escape, tab, scroll, and mouse-move leave it
// untouched, per spec.md §4.4.
type Detector struct {
	clicks []action.Point
}

// New returns an empty Detector.
func New() *Detector {
	return &Detector{}
}

// Observe feeds one action from the batch into the detector. It returns
// true exactly once per qualifying run of >= MinRepeats clicks, all within
// a Window x Window box anchored at the first click in the run — after
// which the record is cleared (invariant 6: "exactly one repeat warning is
// emitted, then the record is cleared").
func (d *Detector) Observe(a action.Action) bool {
	switch a.Kind {
	case action.KindType:
		d.clicks = nil
		return false
	case action.KindLeftClick, action.KindRightClick, action.KindDoubleClick:
		if len(d.clicks) > 0 && !withinWindow(d.clicks[0], a.Coordinate) {
			// This click breaks out of the current run's window; it
			// becomes the new anchor for a fresh run.
			d.clicks = nil
		}
		d.clicks = append(d.clicks, a.Coordinate)
		if len(d.clicks) >= MinRepeats {
			d.clicks = nil
			return true
		}
		return false
	default:
		// Escape/tab/scroll/mouse-move and anything else leave the record
		// untouched.
		return false
	}
}

func withinWindow(anchor, p action.Point) bool {
	dx := p.X - anchor.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - anchor.Y
	if dy < 0 {
		dy = -dy
	}
	return dx <= Window && dy <= Window
}
