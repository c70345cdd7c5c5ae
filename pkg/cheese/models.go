// Package cheese converts catalog courses into the document loaded by the timetable builder.
package cheese

// Field names of the general section, as expected by the timetable builder
const (
	FieldCourseID      = "מספר מקצוע"
	FieldName          = "שם מקצוע"
	FieldFaculty       = "פקולטה"
	FieldNotes         = "הערות"
	FieldCredits       = "נקודות"
	FieldSyllabus      = "סילבוס"
	FieldStaff         = "אחראים"
	FieldPrerequisites = "מקצועות קדם"
	FieldNoExtraCredit = "מקצועות ללא זיכוי נוסף"
	FieldLecture       = "הרצאה"
	FieldExercise      = "תרגיל"
	FieldLab           = "מעבדה"
	FieldSeminar       = "סמינר/פרויקט"
	FieldMoedA         = "מועד א"
	FieldMoedB         = "מועד ב"
)

// Course is a single entry of the output document
type Course struct {
	General  map[string]string `json:"general"`
	Schedule []Lesson          `json:"schedule"`

	// Exams holds the exam dates behind the moed fields, for the calendar export
	Exams []Exam `json:"-"`
}

// Exam is the date of a moed in the target semester
type Exam struct {
	Moed string // "א" or "ב"
	Date string // "2024-01-15"
}

// Lesson is a schedule row. Hour is written as "<end> - <start>".
type Lesson struct {
	Lecturers string `json:"מרצה/מתרגל"`
	Group     string `json:"קבוצה"`
	Row       string `json:"מס."`
	Type      string `json:"סוג"`
	Building  string `json:"בניין"`
	Room      string `json:"חדר"`
	Hour      string `json:"שעה"`
	Day       string `json:"יום"`
}
