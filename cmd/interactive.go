package cmd

import (
	"github.com/yotamroshuji/cheese-fork/pkg/tui"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the interactive TUI",
	Long:  `Launch the Text User Interface to build timetable files and edit settings interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.RunTUI(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
