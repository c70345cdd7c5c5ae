package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yotamroshuji/cheese-fork/pkg/config"
	"github.com/yotamroshuji/cheese-fork/pkg/pipeline"
	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
	"github.com/yotamroshuji/cheese-fork/pkg/semester"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// RunCollectTUI asks for the run parameters and builds the timetable files
func RunCollectTUI(ctx context.Context) error {
	fmt.Println(accentStyle.Render("Welcome to the CheeseFork course collector!"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	yearStr := ""
	if cfg.Year != 0 {
		yearStr = strconv.Itoa(cfg.Year)
	}
	var (
		courseFile string
		selected   []string
		output     = "courses.js"
		examsICS   string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Academic year").
				Placeholder("2025").
				Value(&yearStr).
				Validate(validateYear),
			huh.NewInput().
				Title("Course file").
				Description("A text file with one course id per line").
				Value(&courseFile).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a course file is required")
					}
					return nil
				}),
			huh.NewMultiSelect[string]().
				Title("Semesters").
				Description("Space = toggle, Enter = confirm.").
				Options(
					huh.NewOption("Semester A", string(semester.A)).Selected(true),
					huh.NewOption("Semester B", string(semester.B)),
				).
				Value(&selected).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("select at least one semester")
					}
					return nil
				}),
			huh.NewInput().
				Title("Output file").
				Value(&output),
			huh.NewInput().
				Title("Exam calendar (optional)").
				Description("Leave empty to skip the .ics export").
				Value(&examsICS),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Year, _ = strconv.Atoi(strings.TrimSpace(yearStr))

	courseIDs, err := pipeline.ReadCourseFile(strings.TrimSpace(courseFile))
	if err != nil {
		return err
	}

	var semesters []semester.Semester
	for _, s := range selected {
		semesters = append(semesters, semester.Semester(s))
	}

	client := scraper.NewClient(cfg.ClientOptions())

	var result *pipeline.Result
	_ = spinner.New().
		Title(fmt.Sprintf("Collecting %d courses for %d...", len(courseIDs), cfg.Year)).
		Action(func() {
			result, err = pipeline.Run(ctx, client, pipeline.Options{
				CourseIDs:    courseIDs,
				Semesters:    semesters,
				Output:       strings.TrimSpace(output),
				VariableName: cfg.VariableName,
				ExamsICS:     strings.TrimSpace(examsICS),
				Collect:      cfg.CollectOptions(),
			})
		}).
		Run()

	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Collected %d courses (%d missing)", result.Collected, len(result.Missing))))
	for _, a := range result.Artifacts {
		fmt.Printf("• Semester %s: %d courses -> %s\n", a.Semester, a.Courses, a.Path)
	}
	return nil
}

func validateYear(s string) error {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year < 1900 || year > 2100 {
		return errors.New("enter a year such as 2025")
	}
	return nil
}

func validatePositive(s string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func validateNonNegative(s string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 0 {
		return errors.New("enter 0 or a positive number")
	}
	return nil
}
