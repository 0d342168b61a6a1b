package mcpserver

import (
	"encoding/json"
	"fmt"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// getFloat reads a numeric argument. JSON numbers arrive as float64.
func getFloat(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// requireFloat is getFloat for required arguments.
func requireFloat(args map[string]any, key string) (float64, error) {
	v, ok := getFloat(args, key)
	if !ok {
		return 0, fmt.Errorf("%s is required and must be a number", key)
	}
	return v, nil
}

// point is one sample of a stroke, as [x, y].
type point [2]float64

// parsePoints accepts a JSON array of [x, y] pairs, either as a string or
// as an already decoded array.
func parsePoints(raw any) ([]point, error) {
	var pts []point
	switch v := raw.(type) {
	case string:
		if err := parseJSON(v, &pts); err != nil {
			return nil, fmt.Errorf("invalid points JSON: %w", err)
		}
	case []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid points: %w", err)
		}
		if err := json.Unmarshal(data, &pts); err != nil {
			return nil, fmt.Errorf("invalid points: %w", err)
		}
	default:
		return nil, fmt.Errorf("points is required")
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("points must not be empty")
	}
	return pts, nil
}
