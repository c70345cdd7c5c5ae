package scraper

// RawCourse is a course as published in the catalog for a single academic year.
// Semester labels are kept as free text and resolved later.
type RawCourse struct {
	CourseID    string
	HebrewName  string
	Faculty     string
	HebrewNotes string
	Credits     float64
	SyllabusURL string
	IsRunning   bool
	Semester    string // e.g. "סמסטר א'"
	Schedule    []RawLesson
	Exams       []RawExam
}

// RawLesson is a single weekly meeting of a course group
type RawLesson struct {
	Day       string // "יום ב'", may be empty
	Time      string // "10:00-12:00", may be empty
	Group     string
	Row       string
	Type      string // "הרצאה", "תרגיל", ...
	Location  string
	Lecturers []string
	Semester  string
}

// RawExam is a scheduled exam sitting
type RawExam struct {
	Semester string
	Moed     string // "מועד א'"
	Date     string // "2024-01-15"
}
