package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yotamroshuji/cheese-fork/pkg/config"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// addCatalogFlags registers the flags shared by every command that talks to the catalog
func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("year", "y", 0, "Academic year to collect (e.g. 2025)")
	cmd.Flags().IntP("concurrency", "j", 0, "Maximum number of concurrent catalog requests")
	cmd.Flags().Duration("timeout", 0, "Timeout of a single catalog request")
	cmd.Flags().Bool("close-connections", false, "Open a new connection for every request (slower, avoids flaky keep-alive)")
	cmd.Flags().String("base-url", "", "Catalog URL")
}

// loadConfig reads the stored defaults and applies the flags the user actually set
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("year") {
		cfg.Year, _ = flags.GetInt("year")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("fail-threshold") {
		cfg.FailThreshold, _ = flags.GetInt("fail-threshold")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("close-connections") {
		cfg.CloseConnections, _ = flags.GetBool("close-connections")
	}
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("variable") {
		cfg.VariableName, _ = flags.GetString("variable")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Year == 0 {
		return nil, fmt.Errorf("no academic year given, use --year or 'cheesefork config --year'")
	}

	return cfg, nil
}
