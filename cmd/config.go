package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yotamroshuji/cheese-fork/pkg/config"
	"github.com/yotamroshuji/cheese-fork/pkg/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cheesefork defaults",
	Long:  "View or edit the defaults stored in ~/.cheesefork.yaml (year, concurrency, failure threshold, ...).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if show, _ := flags.GetBool("show"); show {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}

		changed := false
		apply := func(name string, set func()) {
			if flags.Changed(name) {
				set()
				changed = true
			}
		}
		apply("year", func() { cfg.Year, _ = flags.GetInt("year") })
		apply("concurrency", func() { cfg.Concurrency, _ = flags.GetInt("concurrency") })
		apply("fail-threshold", func() { cfg.FailThreshold, _ = flags.GetInt("fail-threshold") })
		apply("timeout", func() { cfg.Timeout, _ = flags.GetDuration("timeout") })
		apply("close-connections", func() { cfg.CloseConnections, _ = flags.GetBool("close-connections") })
		apply("base-url", func() { cfg.BaseURL, _ = flags.GetString("base-url") })
		apply("variable", func() { cfg.VariableName, _ = flags.GetString("variable") })
		apply("accent-color", func() { cfg.AccentColor, _ = flags.GetString("accent-color") })

		// If no flags are given, launch the interactive TUI flow
		if !changed {
			return tui.RunConfigTUI()
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Println(successStyle.Render("✅ Configuration saved"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	addCatalogFlags(configCmd)

	configCmd.Flags().Bool("show", false, "Print the current configuration")
	configCmd.Flags().IntP("fail-threshold", "t", 0, "Default failure threshold (0 = never abort)")
	configCmd.Flags().String("variable", "", "Default JavaScript variable name")
	configCmd.Flags().String("accent-color", "", "Accent color of the interactive mode (e.g. 99)")
}
