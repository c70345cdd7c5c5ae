package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/yotamroshuji/cheese-fork/pkg/logger"
	"github.com/yotamroshuji/cheese-fork/pkg/pipeline"
	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
	"github.com/yotamroshuji/cheese-fork/pkg/semester"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Build timetable course files from the catalog",
	Long: `Download the given courses from the catalog and write one course file per
requested semester, in the format loaded by the timetable builder.`,
	Example: `  cheesefork collect -y 2025 -s A -c 67101,67109 -o courses.js
  cheesefork collect -y 2025 -s A -s B -f courses.txt -o courses.js --exams-ics exams.ics
  cheesefork collect -y 2025 -s B -m maslulim.csv -o courses.js`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		courseIDs, _ := cmd.Flags().GetStringSlice("courses")
		courseFile, _ := cmd.Flags().GetString("course-file")
		if courseFile != "" {
			fromFile, err := pipeline.ReadCourseFile(courseFile)
			if err != nil {
				return err
			}
			courseIDs = append(courseIDs, fromFile...)
		}

		var maslulim []scraper.Maslul
		maslulCSV, _ := cmd.Flags().GetString("maslul-csv")
		if maslulCSV != "" {
			maslulim, err = pipeline.ReadMaslulCSV(maslulCSV)
			if err != nil {
				return err
			}
		}

		if len(courseIDs) == 0 && len(maslulim) == 0 {
			return fmt.Errorf("no courses given, use --courses, --course-file or --maslul-csv")
		}

		tokens, _ := cmd.Flags().GetStringSlice("semester")
		semesters, err := parseSemesters(tokens)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		examsICS, _ := cmd.Flags().GetString("exams-ics")

		collectOpts := cfg.CollectOptions()
		collectOpts.Progress = func(done, total int) {
			logger.L().Debug("collect progress", "done", done, "total", total)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		client := scraper.NewClient(cfg.ClientOptions())

		var result *pipeline.Result
		_ = spinner.New().
			Title(fmt.Sprintf("Collecting courses for %d...", cfg.Year)).
			Action(func() {
				if len(maslulim) > 0 {
					var fromMaslul []string
					fromMaslul, err = scraper.CollectMaslulIDs(ctx, client, cfg.Year, maslulim, cfg.Concurrency)
					if err != nil {
						return
					}
					courseIDs = append(courseIDs, fromMaslul...)
				}

				result, err = pipeline.Run(ctx, client, pipeline.Options{
					CourseIDs:    courseIDs,
					Semesters:    semesters,
					Output:       output,
					VariableName: cfg.VariableName,
					ExamsICS:     examsICS,
					Collect:      collectOpts,
				})
			}).
			Run()

		if err != nil {
			var tooMany *scraper.TooManyMissingError
			if errors.As(err, &tooMany) {
				return fmt.Errorf("aborting, nothing was written: %w", err)
			}
			return err
		}

		printSummary(result)
		return nil
	},
}

func parseSemesters(tokens []string) ([]semester.Semester, error) {
	var semesters []semester.Semester
	seen := make(map[semester.Semester]bool)

	for _, token := range tokens {
		s, err := semester.ParseTarget(token)
		if err != nil {
			return nil, err
		}
		if !seen[s] {
			seen[s] = true
			semesters = append(semesters, s)
		}
	}

	if len(semesters) == 0 {
		return nil, fmt.Errorf("no semester given, use --semester A or --semester B")
	}
	return semesters, nil
}

func printSummary(result *pipeline.Result) {
	fmt.Println(successStyle.Render(fmt.Sprintf("Collected %d courses", result.Collected)))

	if len(result.Missing) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d courses could not be retrieved: %s",
			len(result.Missing), strings.Join(result.Missing, ", "))))
	}

	for _, a := range result.Artifacts {
		fmt.Printf("• Semester %s: %d courses -> %s\n", a.Semester, a.Courses, a.Path)
		if a.ICSPath != "" {
			fmt.Printf("  exams -> %s\n", a.ICSPath)
		}
	}
}

func init() {
	rootCmd.AddCommand(collectCmd)
	addCatalogFlags(collectCmd)

	collectCmd.Flags().StringSliceP("courses", "c", nil, "Course ids to collect (comma separated or repeated)")
	collectCmd.Flags().StringP("course-file", "f", "", "File with course ids, one per line")
	collectCmd.Flags().StringP("maslul-csv", "m", "", "CSV of study tracks (faculty,hug,maslul,toar,toar_year) whose courses to collect")
	collectCmd.Flags().StringSliceP("semester", "s", nil, "Target semester, A or B (repeat for both)")
	collectCmd.Flags().StringP("output", "o", "", "Output file (with several semesters, _A/_B is added before the extension)")
	collectCmd.Flags().IntP("fail-threshold", "t", 0, "Abort if more than this many courses are missing (0 = never)")
	collectCmd.Flags().String("variable", "", "Name of the JavaScript variable in the output")
	collectCmd.Flags().String("exams-ics", "", "Also export the exams of every semester to this ICS file")
	collectCmd.MarkFlagRequired("output")
}
