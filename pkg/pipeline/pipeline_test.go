package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
	"github.com/yotamroshuji/cheese-fork/pkg/semester"
)

type mapFetcher map[string]scraper.RawCourse

func (m mapFetcher) FetchCourse(ctx context.Context, courseID string, year int, withExams bool) (*scraper.RawCourse, error) {
	course, ok := m[courseID]
	if !ok {
		return nil, scraper.ErrCourseNotFound
	}
	if !withExams {
		course.Exams = nil
	}
	return &course, nil
}

func catalog() mapFetcher {
	lesson := func(sem string) []scraper.RawLesson {
		return []scraper.RawLesson{{Day: "יום ג'", Time: "14:00-16:00", Group: "01", Row: "1", Type: "הרצאה", Semester: sem}}
	}
	return mapFetcher{
		"67101": {CourseID: "67101", HebrewName: "מבוא", IsRunning: true, Semester: "סמסטר א'", Schedule: lesson("סמסטר א'"),
			Exams: []scraper.RawExam{{Semester: "סמסטר א'", Moed: "מועד א'", Date: "2024-01-15"}}},
		"67109": {CourseID: "67109", HebrewName: "מבני נתונים", IsRunning: true, Semester: "סמסטר ב'", Schedule: lesson("סמסטר ב'")},
		"80131": {CourseID: "80131", HebrewName: "חדו\"א", IsRunning: true, Semester: "שנתי", Schedule: lesson("שנתי")},
		"12345": {CourseID: "12345", HebrewName: "לא מתקיים", IsRunning: false, Semester: "שנתי"},
	}
}

func TestRun_WritesOneArtifactPerSemester(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "courses.js")

	result, err := Run(context.Background(), catalog(), Options{
		CourseIDs: []string{"67101", "67109", "80131", "12345", "55555"},
		Semesters: []semester.Semester{semester.A, semester.B},
		Output:    output,
		ExamsICS:  filepath.Join(dir, "exams.ics"),
		Collect:   scraper.CollectOptions{Year: 2024, Concurrency: 2},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Collected != 4 || !reflect.DeepEqual(result.Missing, []string{"55555"}) {
		t.Errorf("unexpected collection summary: %+v", result)
	}

	expected := map[string][]string{
		"courses_A.js": {"67101", "80131"},
		"courses_B.js": {"67109", "80131"},
	}
	for name, present := range expected {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
		text := string(data)
		if !strings.HasPrefix(text, "var courses_from_rishum = [") {
			t.Errorf("%s has unexpected prefix: %s", name, text)
		}
		for _, id := range present {
			if !strings.Contains(text, fmt.Sprintf(`"מספר מקצוע":"%s"`, id)) {
				t.Errorf("%s is missing course %s", name, id)
			}
		}
		if strings.Contains(text, "12345") {
			t.Errorf("%s contains a course that is not running", name)
		}
	}

	ics, err := os.ReadFile(filepath.Join(dir, "exams_A.ics"))
	if err != nil {
		t.Fatalf("expected exam calendar: %v", err)
	}
	if !strings.Contains(string(ics), "20240115") {
		t.Errorf("exam calendar is missing the 67101 exam")
	}
}

func TestRun_ThresholdWritesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "courses.js")

	_, err := Run(context.Background(), catalog(), Options{
		CourseIDs: []string{"67101", "1", "2"},
		Semesters: []semester.Semester{semester.A},
		Output:    output,
		Collect:   scraper.CollectOptions{Concurrency: 2, FailThreshold: 1},
	})

	var tooMany *scraper.TooManyMissingError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyMissingError, got %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("no artifact should be written when the threshold is exceeded")
	}
}

func TestRun_SingleSemesterUsesOutputPath(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.js")

	result, err := Run(context.Background(), catalog(), Options{
		CourseIDs:    []string{"67109"},
		Semesters:    []semester.Semester{semester.B},
		Output:       output,
		VariableName: "courses",
		Collect:      scraper.CollectOptions{Concurrency: 1},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Artifacts) != 1 || result.Artifacts[0].Path != output || result.Artifacts[0].Courses != 1 {
		t.Errorf("unexpected artifacts %+v", result.Artifacts)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if !strings.HasPrefix(string(data), "var courses = ") {
		t.Errorf("expected custom variable name, got: %s", data)
	}
}

func TestRun_InvalidOptions(t *testing.T) {
	base := Options{
		CourseIDs: []string{"67101"},
		Semesters: []semester.Semester{semester.A},
		Output:    "x.js",
		Collect:   scraper.CollectOptions{Concurrency: 1},
	}

	noIDs := base
	noIDs.CourseIDs = nil
	noSemesters := base
	noSemesters.Semesters = nil
	noOutput := base
	noOutput.Output = ""

	for _, opts := range []Options{noIDs, noSemesters, noOutput} {
		if _, err := Run(context.Background(), catalog(), opts); err == nil {
			t.Errorf("expected error for options %+v", opts)
		}
	}
}

func TestArtifactPath(t *testing.T) {
	if got := ArtifactPath("out/courses.js", semester.A, false); got != "out/courses.js" {
		t.Errorf("unexpected single path %s", got)
	}
	if got := ArtifactPath("out/courses.js", semester.B, true); got != "out/courses_B.js" {
		t.Errorf("unexpected multi path %s", got)
	}
	if got := ArtifactPath("courses", semester.A, true); got != "courses_A" {
		t.Errorf("unexpected path without extension %s", got)
	}
}

func TestCourseFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")

	if err := os.WriteFile(path, []byte("67101\n\n 80131 \n67109"), 0644); err != nil {
		t.Fatalf("failed to write course file: %v", err)
	}
	ids, err := ReadCourseFile(path)
	if err != nil {
		t.Fatalf("ReadCourseFile failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"67101", "80131", "67109"}) {
		t.Errorf("unexpected ids %v", ids)
	}

	if err := WriteCourseFile(path, []string{"1", "2"}); err != nil {
		t.Fatalf("WriteCourseFile failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "1\n2\n" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestRun_InterruptedKeepsPreviousArtifact(t *testing.T) {
	output := filepath.Join(t.TempDir(), "courses.js")
	if err := os.WriteFile(output, []byte("previous artifact"), 0644); err != nil {
		t.Fatalf("failed to write previous artifact: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, catalog(), Options{
		CourseIDs: []string{"67101", "67109"},
		Semesters: []semester.Semester{semester.A},
		Output:    output,
		Collect:   scraper.CollectOptions{Concurrency: 2},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if string(data) != "previous artifact" {
		t.Errorf("an interrupted run must not touch the output, got: %s", data)
	}
}

func TestRun_FailedWriteLeavesNoArtifacts(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "courses.js")

	_, err := Run(context.Background(), catalog(), Options{
		CourseIDs: []string{"67101", "67109"},
		Semesters: []semester.Semester{semester.A, semester.B},
		Output:    output,
		ExamsICS:  filepath.Join(dir, "missing-dir", "exams.ics"),
		Collect:   scraper.CollectOptions{Concurrency: 2},
	})
	if err == nil {
		t.Fatalf("expected an error writing into a missing directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list output dir: %v", err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected no files after a failed write, found %v", names)
	}
}

func TestReadMaslulCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maslulim.csv")

	if err := os.WriteFile(path, []byte("2,521,3010,first,first\n12, 190, 4020 ,second,\n"), 0644); err != nil {
		t.Fatalf("failed to write maslul file: %v", err)
	}
	maslulim, err := ReadMaslulCSV(path)
	if err != nil {
		t.Fatalf("ReadMaslulCSV failed: %v", err)
	}

	expected := []scraper.Maslul{
		{Faculty: "2", Hug: "521", Maslul: "3010", Toar: "first", ToarYear: "first"},
		{Faculty: "12", Hug: "190", Maslul: "4020", Toar: "second"},
	}
	if !reflect.DeepEqual(maslulim, expected) {
		t.Errorf("unexpected maslulim.\nGot: %+v\nExpected: %+v", maslulim, expected)
	}

	for _, content := range []string{"2,521,3010\n", ",521,3010,first,first\n"} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write maslul file: %v", err)
		}
		if _, err := ReadMaslulCSV(path); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}
