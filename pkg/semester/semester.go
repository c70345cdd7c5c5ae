// Package semester maps the catalog's free-text semester labels to a fixed set of values.
package semester

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Semester is the canonical semester of a course, lesson or exam.
type Semester string

const (
	A      Semester = "A"
	B      Semester = "B"
	AB     Semester = "AB"
	Yearly Semester = "Yearly"
)

// ErrUnrecognizedLabel is matched by every error returned from Resolve.
var ErrUnrecognizedLabel = errors.New("unrecognized semester label")

// LabelError reports the label that could not be resolved.
type LabelError struct {
	Label string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnrecognizedLabel, e.Label)
}

func (e *LabelError) Unwrap() error {
	return ErrUnrecognizedLabel
}

// labels holds every known label after normalize() has been applied.
var labels = map[string]Semester{
	"א":      A,
	"ב":      B,
	"שנתי":   Yearly,
	"א או ב": AB,
	"א ו ב":  AB,
	"א וב":   AB,
	"א+ב":    AB,
	"א,ב":    AB,
	"א, ב":   AB,
	"a":      A,
	"b":      B,
	"ab":     AB,
	"yearly": Yearly,
}

// Resolve maps a catalog label such as "סמסטר א'" or "שנתי" to a Semester.
func Resolve(label string) (Semester, error) {
	if s, ok := labels[normalize(label)]; ok {
		return s, nil
	}
	return "", &LabelError{Label: label}
}

// ParseTarget parses a command line semester token. Only A and B can be targeted.
func ParseTarget(token string) (Semester, error) {
	switch s := Semester(cases.Upper(language.Und).String(strings.TrimSpace(token))); s {
	case A, B:
		return s, nil
	}
	return "", fmt.Errorf("invalid target semester %q (expected A or B)", token)
}

// Includes reports whether a course running in s is taught during target.
func (s Semester) Includes(target Semester) bool {
	switch target {
	case A:
		return s == A || s == AB || s == Yearly
	case B:
		return s == B || s == AB || s == Yearly
	}
	return false
}

func normalize(label string) string {
	label = norm.NFC.String(label)
	label = strings.NewReplacer("'", "", "׳", "", "`", "", "\"", "", "״", "").Replace(label)
	label = strings.Join(strings.Fields(label), " ")
	label = strings.TrimPrefix(label, "סמסטר ")
	label = strings.TrimPrefix(label, "סמסטרים ")
	return cases.Fold().String(label)
}
