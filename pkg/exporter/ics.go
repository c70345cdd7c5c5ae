package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/yotamroshuji/cheese-fork/pkg/cheese"
	"github.com/yotamroshuji/cheese-fork/pkg/logger"

	ics "github.com/arran4/golang-ical"
)

// GenerateExamICS writes an all-day event for every exam of the given courses
func GenerateExamICS(courses []cheese.Course, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//cheesefork//exams//HE")

	now := time.Now()

	for _, c := range courses {
		courseID := c.General[cheese.FieldCourseID]
		name := c.General[cheese.FieldName]

		for _, exam := range c.Exams {
			date, err := time.Parse("2006-01-02", exam.Date)
			if err != nil {
				logger.L().Warn("skipping exam with invalid date", "course_id", courseID, "date", exam.Date)
				continue
			}

			event := cal.AddEvent(fmt.Sprintf("%s-%s-moed-%s@cheesefork", courseID, date.Format("20060102"), exam.Moed))
			event.SetCreatedTime(now)
			event.SetDtStampTime(now)
			event.SetModifiedAt(now)
			event.SetAllDayStartAt(date)
			event.SetAllDayEndAt(date.AddDate(0, 0, 1))
			event.SetSummary(fmt.Sprintf("%s (%s) מועד %s", name, courseID, exam.Moed))
			event.SetDescription(fmt.Sprintf("Course: %s\nFaculty: %s", courseID, c.General[cheese.FieldFaculty]))
		}
	}

	return cal.SerializeTo(w)
}
