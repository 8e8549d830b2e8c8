package action

import "fmt"

// Parse builds an Action from the open-form string-keyed map the model
// returns as tool input JSON. Missing or unknown keys are tolerated —
// coordinates default to (0, 0), scroll_amount defaults to
// DefaultScrollAmount — and an unrecognized action name produces ok=false
// rather than an error, so the caller can log a warning and no-op instead
// of aborting (per spec.md §9's dynamic tool-input parsing note).
func Parse(name string, input map[string]any) (a Action, ok bool) {
	kind := Kind(name)
	switch kind {
	case KindLeftClick, KindRightClick, KindDoubleClick, KindMiddleClick, KindMouseMove:
		return Action{Kind: kind, Coordinate: coordinateOf(input, "coordinate")}, true
	case KindType:
		return Action{Kind: kind, Text: stringOf(input, "text")}, true
	case KindKey:
		return Action{Kind: kind, Key: stringOf(input, "key")}, true
	case KindScroll:
		return Action{
			Kind:            kind,
			Coordinate:      coordinateOf(input, "coordinate"),
			ScrollDirection: scrollDirectionOf(input),
			ScrollAmount:    scrollAmountOf(input),
		}, true
	case KindDrag:
		return Action{
			Kind:            kind,
			StartCoordinate: coordinateOf(input, "start_coordinate"),
			Coordinate:      coordinateOf(input, "coordinate"),
		}, true
	case KindScreenshot, KindCursor:
		return Action{Kind: kind}, true
	default:
		return Action{}, false
	}
}

func coordinateOf(input map[string]any, key string) Point {
	raw, exists := input[key]
	if !exists {
		return Point{}
	}
	list, ok := raw.([]any)
	if !ok || len(list) != 2 {
		return Point{}
	}
	return Point{X: intOf(list[0]), Y: intOf(list[1])}
}

func intOf(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func stringOf(input map[string]any, key string) string {
	if s, ok := input[key].(string); ok {
		return s
	}
	return ""
}

func scrollDirectionOf(input map[string]any) ScrollDirection {
	switch stringOf(input, "scroll_direction") {
	case string(ScrollDown):
		return ScrollDown
	case string(ScrollLeft):
		return ScrollLeft
	case string(ScrollRight):
		return ScrollRight
	default:
		return ScrollUp
	}
}

func scrollAmountOf(input map[string]any) int {
	raw, exists := input["scroll_amount"]
	if !exists {
		return DefaultScrollAmount
	}
	if f, ok := raw.(float64); ok && f > 0 {
		return int(f)
	}
	return DefaultScrollAmount
}

// UnknownActionWarning formats the log line for an unrecognized tool name.
func UnknownActionWarning(name string) string {
	return fmt.Sprintf("unknown action %q ignored", name)
}
