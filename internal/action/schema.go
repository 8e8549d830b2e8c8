package action

// InputSchema returns the JSON Schema for the computer-control tool's
// input, describing the action vocabulary this package parses. It is the
// schema advertised to the model, not a validator the model's responses
// are checked against — Parse stays tolerant of whatever actually arrives.
func InputSchema(displayWidth, displayHeight int) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{
					string(KindLeftClick), string(KindRightClick), string(KindDoubleClick),
					string(KindMiddleClick), string(KindType), string(KindKey),
					string(KindScroll), string(KindMouseMove), string(KindDrag),
					string(KindScreenshot), string(KindCursor),
				},
			},
			"coordinate": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"minItems":    2,
				"maxItems":    2,
				"description": "[x, y] in bitmap space, bounded by the screenshot last shown",
			},
			"start_coordinate": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer"},
				"minItems": 2,
				"maxItems": 2,
			},
			"text": map[string]any{"type": "string"},
			"key":  map[string]any{"type": "string"},
			"scroll_direction": map[string]any{
				"type": "string",
				"enum": []string{string(ScrollUp), string(ScrollDown), string(ScrollLeft), string(ScrollRight)},
			},
			"scroll_amount": map[string]any{"type": "integer"},
		},
		"required": []string{"action"},
	}
}
