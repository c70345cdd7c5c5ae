package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yotamroshuji/cheese-fork/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "cheesefork",
	Short: "Collect HUJI courses for the CheeseFork timetable builder",
	Long: `cheesefork downloads course records from the Hebrew University catalog
and converts them into the course files loaded by the CheeseFork timetable builder.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		debug, _ := cmd.Flags().GetBool("debug")
		logger.Init(os.Stderr, verbose, debug)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show progress information")
	rootCmd.PersistentFlags().Bool("debug", false, "Show debug logs")
}
