package scraper

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseCourse parses a catalog course page (see testdata/course_67101.html). The page
// holds a single div.course block; a page without one means the course does not
// exist for that year.
func ParseCourse(r io.Reader) (*RawCourse, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	sel := doc.Find("div.course").First()
	if sel.Length() == 0 {
		return nil, ErrCourseNotFound
	}

	course := &RawCourse{
		CourseID:    text(sel.Find(".course-id")),
		HebrewName:  text(sel.Find(".course-name")),
		Faculty:     text(sel.Find(".faculty")),
		HebrewNotes: text(sel.Find(".notes")),
		Semester:    text(sel.Find(".course-semester")),
		IsRunning:   sel.Find(".not-running").Length() == 0,
	}
	if course.CourseID == "" {
		return nil, fmt.Errorf("course page is missing the course id")
	}

	if href, ok := sel.Find("a.syllabus").Attr("href"); ok {
		course.SyllabusURL = strings.TrimSpace(href)
	}

	if points := text(sel.Find(".points")); points != "" {
		course.Credits, err = strconv.ParseFloat(points, 64)
		if err != nil {
			return nil, fmt.Errorf("course %s has invalid points %q: %w", course.CourseID, points, err)
		}
	}

	// One row per lesson; lecturers are listed as separate spans in the same cell
	sel.Find("table.schedule tr.lesson").Each(func(i int, row *goquery.Selection) {
		var lecturers []string
		row.Find("td.lecturers span").Each(func(j int, l *goquery.Selection) {
			if name := text(l); name != "" {
				lecturers = append(lecturers, name)
			}
		})

		course.Schedule = append(course.Schedule, RawLesson{
			Day:       text(row.Find("td.day")),
			Time:      text(row.Find("td.time")),
			Group:     text(row.Find("td.group")),
			Row:       text(row.Find("td.row")),
			Type:      text(row.Find("td.type")),
			Location:  text(row.Find("td.location")),
			Lecturers: lecturers,
			Semester:  text(row.Find("td.semester")),
		})
	})

	return course, nil
}

// ParseExams parses the exam dates page of a course
func ParseExams(r io.Reader) ([]RawExam, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var exams []RawExam
	doc.Find("table.exams tr.exam").Each(func(i int, row *goquery.Selection) {
		exam := RawExam{
			Semester: text(row.Find("td.semester")),
			Moed:     text(row.Find("td.moed")),
			Date:     text(row.Find("td.date")),
		}
		if exam.Date != "" {
			exams = append(exams, exam)
		}
	})

	return exams, nil
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}
