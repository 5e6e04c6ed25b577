package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Duration is a display-only duration. Older documents store a day count,
// newer ones a free-form string such as "3 months"; both are kept as text.
type Duration string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parsing duration: %w", err)
		}
		*d = Duration(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or number: %w", err)
	}
	*d = Duration(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", node.Line)
	}
	*d = Duration(node.Value)
	return nil
}

// Days returns the duration as a day count when it is numeric.
func (d Duration) Days() (float64, bool) {
	f, err := strconv.ParseFloat(string(d), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Display returns the text shown next to a project, adding a unit to bare day counts.
func (d Duration) Display() string {
	if days, ok := d.Days(); ok {
		if days == 1 {
			return "1 day"
		}
		return strconv.FormatFloat(days, 'f', -1, 64) + " days"
	}
	return string(d)
}
