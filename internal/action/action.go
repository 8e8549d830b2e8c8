// Package action defines the tagged ComputerAction variants the executor
// model can request, the ActionSink interface that dispatches them in
// logical screen coordinates, and the per-axis coordinate scaling between
// the model's bitmap space and the real screen.
package action

import "fmt"

// Kind tags the variant carried by a ComputerAction.
type Kind string

const (
	KindLeftClick   Kind = "left_click"
	KindRightClick  Kind = "right_click"
	KindDoubleClick Kind = "double_click"
	KindMiddleClick Kind = "middle_click"
	KindType        Kind = "type"
	KindKey         Kind = "key"
	KindScroll      Kind = "scroll"
	KindMouseMove   Kind = "mouse_move"
	KindDrag        Kind = "left_click_drag"
	KindScreenshot  Kind = "screenshot"
	KindCursor      Kind = "cursor_position"
)

// ScrollDirection enumerates the four directions the model may scroll.
type ScrollDirection string

const (
	ScrollUp    ScrollDirection = "up"
	ScrollDown  ScrollDirection = "down"
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

// DefaultScrollAmount is used when the model omits scroll_amount.
const DefaultScrollAmount = 3

// Point is an (x, y) coordinate, in whichever space its caller documents.
type Point struct {
	X int
	Y int
}

// Action is a tagged variant over the computer-control tool's action space.
// Unknown/zero fields for a given Kind are simply unused; dynamic tool-input
// parsing tolerates missing keys (see Parse in parse.go) rather than
// rejecting the action outright.
type Action struct {
	Kind Kind

	Coordinate      Point
	StartCoordinate Point

	Text string
	Key  string

	ScrollDirection ScrollDirection
	ScrollAmount    int
}

// IsClick reports whether the action is one of the four click variants.
// Repeat-click detection (§4.4) tracks only left, right and double clicks.
func (a Action) IsClick() bool {
	switch a.Kind {
	case KindLeftClick, KindRightClick, KindDoubleClick, KindMiddleClick:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	switch a.Kind {
	case KindLeftClick, KindRightClick, KindDoubleClick, KindMiddleClick:
		return fmt.Sprintf("%s(%d, %d)", a.Kind, a.Coordinate.X, a.Coordinate.Y)
	case KindType:
		return fmt.Sprintf("type(%q)", a.Text)
	case KindKey:
		return fmt.Sprintf("key(%q)", a.Key)
	case KindScroll:
		return fmt.Sprintf("scroll(%d, %d, %s, %d)", a.Coordinate.X, a.Coordinate.Y, a.ScrollDirection, a.ScrollAmount)
	case KindMouseMove:
		return fmt.Sprintf("mouse_move(%d, %d)", a.Coordinate.X, a.Coordinate.Y)
	case KindDrag:
		return fmt.Sprintf("drag(%d,%d -> %d,%d)", a.StartCoordinate.X, a.StartCoordinate.Y, a.Coordinate.X, a.Coordinate.Y)
	default:
		return string(a.Kind)
	}
}

// Sink executes atomic input events in logical screen coordinates and
// exposes an idempotent "maximize foreground window" call, per spec.md §6's
// action sink contract. It is an external collaborator: this module
// provides only the interface and the coordinate-scaling wrapper around it.
type Sink interface {
	Dispatch(a Action) error
	MaximizeForegroundWindow() error
}
