package reporting

import (
	"encoding/json"
	"fmt"
)

// RenderJSON renders records as indented JSON.
func RenderJSON(records any) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("reporting: marshal json: %w", err)
	}
	return string(data), nil
}
