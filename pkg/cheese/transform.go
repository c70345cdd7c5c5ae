package cheese

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yotamroshuji/cheese-fork/pkg/logger"
	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
	"github.com/yotamroshuji/cheese-fork/pkg/semester"
)

const (
	lecturerSeparator = "\t"
	examMarkerA       = "א'"
	examMarkerB       = "ב'"
)

// quotes folds the Hebrew geresh and other apostrophe variants into "'"
var quotes = strings.NewReplacer("׳", "'", "’", "'", "`", "'")

// TransformError aborts a transformation pass. It means a course had a shape
// the converter does not understand.
type TransformError struct {
	CourseID string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to transform course %s: %v", e.CourseID, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Transform builds the output document for the target semester (A or B).
// The first record of every course id wins, courses that are not running or not
// taught in the target semester are dropped.
func Transform(records []scraper.RawCourse, target semester.Semester) ([]Course, error) {
	if target != semester.A && target != semester.B {
		return nil, fmt.Errorf("cannot build a timetable for semester %q", target)
	}

	courses := make([]Course, 0, len(records))
	seen := make(map[string]bool)

	for _, rec := range records {
		courseSemester, err := semester.Resolve(rec.Semester)
		if err != nil {
			logger.L().Warn("skipping course", "course_id", rec.CourseID, "error", err)
			continue
		}

		if seen[rec.CourseID] || !rec.IsRunning || !courseSemester.Includes(target) {
			continue
		}

		course, err := convertCourse(rec, target)
		if err != nil {
			logger.L().Error("failed to transform course", "course_id", rec.CourseID, "error", err)
			return nil, &TransformError{CourseID: rec.CourseID, Err: err}
		}

		seen[rec.CourseID] = true
		courses = append(courses, course)
	}

	return courses, nil
}

func convertCourse(rec scraper.RawCourse, target semester.Semester) (course Course, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if rec.CourseID == "" {
		return Course{}, errors.New("course has no id")
	}

	// Hour counts and staff are not published in the catalog; the builder expects them anyway
	general := map[string]string{
		FieldStaff:         "",
		FieldNotes:         rec.HebrewNotes,
		FieldLecture:       "2",
		FieldCourseID:      rec.CourseID,
		FieldLab:           "0",
		FieldNoExtraCredit: "",
		FieldPrerequisites: "",
		FieldCredits:       strconv.FormatFloat(rec.Credits, 'f', -1, 64),
		FieldSyllabus:      rec.SyllabusURL,
		FieldSeminar:       "0",
		FieldFaculty:       rec.Faculty,
		FieldName:          rec.HebrewName,
		FieldExercise:      "2",
	}

	// Several exams may match a moed (e.g. 67506); the last one is kept
	var moedA, moedB string
	for _, exam := range rec.Exams {
		s, err := semester.Resolve(exam.Semester)
		if err != nil {
			logger.L().Warn("skipping exam", "course_id", rec.CourseID, "error", err)
			continue
		}
		if s != target {
			continue
		}

		date := fmt.Sprintf("בתאריך %s יום ה", strings.ReplaceAll(exam.Date, "-", "."))
		moed := quotes.Replace(exam.Moed)
		if strings.Contains(moed, examMarkerA) {
			general[FieldMoedA] = date
			moedA = exam.Date
		}
		if strings.Contains(moed, examMarkerB) {
			general[FieldMoedB] = date
			moedB = exam.Date
		}
	}

	var exams []Exam
	if moedA != "" {
		exams = append(exams, Exam{Moed: "א", Date: moedA})
	}
	if moedB != "" {
		exams = append(exams, Exam{Moed: "ב", Date: moedB})
	}

	schedule := make([]Lesson, 0, len(rec.Schedule))
	for _, lesson := range rec.Schedule {
		s, err := semester.Resolve(lesson.Semester)
		if err != nil {
			logger.L().Warn("skipping lesson", "course_id", rec.CourseID, "group", lesson.Group, "error", err)
			continue
		}
		if s != target && s != semester.Yearly {
			continue
		}

		// Lessons without a day or time are not shown in the timetable
		if lesson.Day == "" || lesson.Time == "" {
			continue
		}

		from, to, ok := splitHours(lesson.Time)
		if !ok {
			logger.L().Warn("skipping lesson with invalid time", "course_id", rec.CourseID, "time", lesson.Time)
			continue
		}

		day := dayLetter(lesson.Day)
		if day == "" {
			logger.L().Warn("skipping lesson with invalid day", "course_id", rec.CourseID, "day", lesson.Day)
			continue
		}

		schedule = append(schedule, Lesson{
			Lecturers: strings.Join(lesson.Lecturers, lecturerSeparator),
			Group:     lesson.Group,
			Row:       lesson.Row,
			Type:      lesson.Type,
			Building:  lesson.Location,
			Room:      "",
			Hour:      fmt.Sprintf("%s - %s", to, from),
			Day:       day,
		})
	}

	return Course{General: general, Schedule: schedule, Exams: exams}, nil
}

// splitHours splits "10:00-12:00" into its start and end
func splitHours(hours string) (from, to string, ok bool) {
	parts := strings.Split(hours, "-")
	if len(parts) != 2 {
		return "", "", false
	}
	from, to = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	return from, to, from != "" && to != ""
}

// dayLetter takes the letter out of a day label such as "יום ב'"
func dayLetter(day string) string {
	day = strings.TrimRight(strings.TrimSpace(day), "'׳`\"")
	r, size := utf8.DecodeLastRuneInString(day)
	if size == 0 || r == ' ' {
		return ""
	}
	return string(r)
}
