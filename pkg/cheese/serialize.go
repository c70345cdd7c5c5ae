package cheese

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// DefaultVariableName is the variable the timetable builder reads its courses from
const DefaultVariableName = "courses_from_rishum"

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidVariableName reports whether name can be used as a JavaScript variable
func ValidVariableName(name string) bool {
	return identifier.MatchString(name)
}

// Serialize renders courses as a JavaScript assignment: `var <name> = <json array>`.
// Non-ASCII text is written as is.
func Serialize(courses []Course, name string) ([]byte, error) {
	if name == "" {
		name = DefaultVariableName
	}
	if !ValidVariableName(name) {
		return nil, fmt.Errorf("invalid variable name %q", name)
	}
	if courses == nil {
		courses = []Course{}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "var %s = ", name)

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(courses); err != nil {
		return nil, fmt.Errorf("failed to encode courses: %w", err)
	}

	// Encode terminates the value with a newline
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
