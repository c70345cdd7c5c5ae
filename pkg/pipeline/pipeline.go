// Package pipeline runs a full collection: fetch the courses, build one document per
// semester and write the artifacts.
package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yotamroshuji/cheese-fork/pkg/cheese"
	"github.com/yotamroshuji/cheese-fork/pkg/exporter"
	"github.com/yotamroshuji/cheese-fork/pkg/logger"
	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
	"github.com/yotamroshuji/cheese-fork/pkg/semester"
)

// Options describes a collection run
type Options struct {
	CourseIDs    []string
	Semesters    []semester.Semester
	Output       string
	VariableName string
	// ExamsICS, when set, also writes a calendar of the exams in every artifact
	ExamsICS string
	Collect  scraper.CollectOptions
}

// Artifact is a file written for a target semester
type Artifact struct {
	Semester semester.Semester
	Path     string
	Courses  int
	ICSPath  string
}

// Result summarizes a successful run
type Result struct {
	Collected int
	Missing   []string
	Artifacts []Artifact
}

type pendingFile struct {
	path string
	data []byte
}

// Run collects the courses once and writes one artifact per semester. Nothing is
// written unless every semester could be built.
func Run(ctx context.Context, f scraper.Fetcher, opts Options) (*Result, error) {
	if len(opts.CourseIDs) == 0 {
		return nil, errors.New("no course ids given")
	}
	if len(opts.Semesters) == 0 {
		return nil, errors.New("no target semester given")
	}
	if opts.Output == "" {
		return nil, errors.New("no output file given")
	}

	collectOpts := opts.Collect
	collectOpts.WithExams = true

	records, missing, err := scraper.Collect(ctx, f, opts.CourseIDs, collectOpts)
	if err != nil {
		return nil, err
	}
	// An interrupted run reports unfetched courses as missing; never write its output
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collection interrupted, nothing was written: %w", err)
	}

	result := &Result{Collected: len(records), Missing: missing}
	multiple := len(opts.Semesters) > 1

	var files []pendingFile
	for _, target := range opts.Semesters {
		courses, err := cheese.Transform(records, target)
		if err != nil {
			return nil, fmt.Errorf("semester %s: %w", target, err)
		}

		data, err := cheese.Serialize(courses, opts.VariableName)
		if err != nil {
			return nil, err
		}

		artifact := Artifact{
			Semester: target,
			Path:     ArtifactPath(opts.Output, target, multiple),
			Courses:  len(courses),
		}
		files = append(files, pendingFile{path: artifact.Path, data: data})

		if opts.ExamsICS != "" {
			var buf bytes.Buffer
			if err := exporter.GenerateExamICS(courses, &buf); err != nil {
				return nil, fmt.Errorf("failed to generate exam calendar: %w", err)
			}
			artifact.ICSPath = ArtifactPath(opts.ExamsICS, target, multiple)
			files = append(files, pendingFile{path: artifact.ICSPath, data: buf.Bytes()})
		}

		logger.L().Info("built semester document", "semester", target, "courses", len(courses))
		result.Artifacts = append(result.Artifacts, artifact)
	}

	if err := writeAll(files); err != nil {
		return nil, err
	}

	return result, nil
}

// writeAll stages every file next to its destination and only renames them into
// place once all of them were written.
func writeAll(files []pendingFile) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, file := range files {
		tmp, err := os.CreateTemp(filepath.Dir(file.path), "."+filepath.Base(file.path)+".tmp-*")
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to write %s: %w", file.path, err)
		}
		staged = append(staged, tmp.Name())

		_, err = tmp.Write(file.data)
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err == nil {
			err = os.Chmod(tmp.Name(), 0644)
		}
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to write %s: %w", file.path, err)
		}
	}

	for i, file := range files {
		if err := os.Rename(staged[i], file.path); err != nil {
			cleanup()
			return fmt.Errorf("failed to write %s: %w", file.path, err)
		}
	}

	return nil
}

// ArtifactPath returns the output path of a semester. When several semesters are
// written the semester is inserted before the extension: courses.js -> courses_A.js.
func ArtifactPath(output string, target semester.Semester, multiple bool) string {
	if !multiple {
		return output
	}
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(output, ext), target, ext)
}

// ReadCourseFile reads line-delimited course ids, ignoring blank lines
func ReadCourseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open course file: %w", err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read course file: %w", err)
	}

	return ids, nil
}

// WriteCourseFile writes ids one per line, the format ReadCourseFile reads
func WriteCourseFile(path string, ids []string) error {
	var buf bytes.Buffer
	for _, id := range ids {
		buf.WriteString(id)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write course file: %w", err)
	}
	return nil
}

// ReadMaslulCSV reads study tracks from a header-less CSV in the format
// <faculty>,<hug>,<maslul>,<toar>,<toar_year>
func ReadMaslulCSV(path string) ([]scraper.Maslul, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open maslul file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read maslul file: %w", err)
	}

	maslulim := make([]scraper.Maslul, 0, len(rows))
	for i, row := range rows {
		m := scraper.Maslul{
			Faculty:  strings.TrimSpace(row[0]),
			Hug:      strings.TrimSpace(row[1]),
			Maslul:   strings.TrimSpace(row[2]),
			Toar:     strings.TrimSpace(row[3]),
			ToarYear: strings.TrimSpace(row[4]),
		}
		if m.Faculty == "" || m.Hug == "" || m.Maslul == "" {
			return nil, fmt.Errorf("maslul file line %d: faculty, hug and maslul are required", i+1)
		}
		maslulim = append(maslulim, m)
	}

	return maslulim, nil
}
