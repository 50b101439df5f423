package output

import (
	"fmt"

	"github.com/itchyny/gojq"
)

// applyJQ runs a gojq expression over already-normalized data.
// A single result is returned as-is; multiple results come back as a slice.
func applyJQ(expr string, data any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, ErrUsageHint(fmt.Sprintf("Invalid jq expression: %v", err), "Check the --jq syntax")
	}

	// gojq only accepts plain JSON types, so coerce []map back to []any.
	if maps, ok := data.([]map[string]any); ok {
		generic := make([]any, len(maps))
		for i, m := range maps {
			generic[i] = m
		}
		data = generic
	}

	var results []any
	iter := query.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, ErrUsage(fmt.Sprintf("jq evaluation failed: %v", err))
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}
