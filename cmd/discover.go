package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/yotamroshuji/cheese-fork/pkg/pipeline"
	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find the course ids running in a year",
	Long: `Scan a numeric range of course ids and write the ones that belong to a course
running in the given year, one per line. The file can be passed to 'collect --course-file'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		output, _ := cmd.Flags().GetString("output")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		client := scraper.NewClient(cfg.ClientOptions())

		var found []string
		_ = spinner.New().
			Title(fmt.Sprintf("Scanning course ids %d-%d for %d...", from, to, cfg.Year)).
			Action(func() {
				found, err = scraper.Discover(ctx, client, from, to, cfg.CollectOptions())
			}).
			Run()

		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}

		if err := pipeline.WriteCourseFile(output, found); err != nil {
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("Found %d running courses, written to %s", len(found), output)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	addCatalogFlags(discoverCmd)

	discoverCmd.Flags().Int("from", 0, "First course id to try")
	discoverCmd.Flags().Int("to", 0, "Last course id to try")
	discoverCmd.Flags().StringP("output", "o", "courses.txt", "Output file")
	discoverCmd.MarkFlagRequired("from")
	discoverCmd.MarkFlagRequired("to")
}
