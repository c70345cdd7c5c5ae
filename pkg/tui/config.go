package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yotamroshuji/cheese-fork/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// RunConfigTUI launches the interactive experience for managing configurations
func RunConfigTUI() error {
	for {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var action string

		initialForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configuration Settings").
					Options(
						huh.NewOption("Set Default Year", "year"),
						huh.NewOption("Set Request Limits", "limits"),
						huh.NewOption("Set Accent Color (Theme)", "theme"),
						huh.NewOption("View Current Config", "view"),
						huh.NewOption("Back", "back"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := initialForm.Run(); err != nil {
			return err
		}

		switch action {
		case "back":
			return nil
		case "year":
			err = runSetYearTUI(cfg)
		case "limits":
			err = runSetLimitsTUI(cfg)
		case "theme":
			err = runSetThemeTUI(cfg)
		case "view":
			fmt.Println(accentStyle.Render("\n--- Current Configuration (~/.cheesefork.yaml) ---"))
			if cfg.Year == 0 {
				fmt.Println("Year: Not set")
			} else {
				fmt.Printf("Year: %d\n", cfg.Year)
			}
			fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
			fmt.Printf("Fail Threshold: %d\n", cfg.FailThreshold)
			fmt.Printf("Timeout: %s\n", cfg.Timeout)
			fmt.Printf("Close Connections: %v\n", cfg.CloseConnections)
			fmt.Printf("Variable Name: %s\n", cfg.VariableName)
			fmt.Printf("Accent Color: %s\n", cfg.AccentColor)
			fmt.Println()
		}

		if err != nil {
			return err
		}
	}
}

func runSetYearTUI(cfg *config.AppConfig) error {
	yearStr := ""
	if cfg.Year != 0 {
		yearStr = strconv.Itoa(cfg.Year)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Default academic year").
				Placeholder("2025").
				Value(&yearStr).
				Validate(validateYear),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Year, _ = strconv.Atoi(strings.TrimSpace(yearStr))
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Default year changed to: %d\n", cfg.Year)))
	return nil
}

func runSetLimitsTUI(cfg *config.AppConfig) error {
	concurrency := strconv.Itoa(cfg.Concurrency)
	threshold := strconv.Itoa(cfg.FailThreshold)
	closeConns := cfg.CloseConnections

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Concurrent requests").
				Value(&concurrency).
				Validate(validatePositive),
			huh.NewInput().
				Title("Failure threshold").
				Description("Abort when more courses than this are missing. 0 never aborts.").
				Value(&threshold).
				Validate(validateNonNegative),
			huh.NewConfirm().
				Title("Close the connection after every request?").
				Description("Slower, but works around servers that break reused connections.").
				Value(&closeConns),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Concurrency, _ = strconv.Atoi(strings.TrimSpace(concurrency))
	cfg.FailThreshold, _ = strconv.Atoi(strings.TrimSpace(threshold))
	cfg.CloseConnections = closeConns

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("\n✅ Request limits saved.\n"))
	return nil
}

func colorBlock(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

func runSetThemeTUI(cfg *config.AppConfig) error {
	var input string

	inputForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose an Accent Color for cheesefork").
				Description("Select a curated Charm style or choose Custom to enter your own Hex.").
				Options(
					huh.NewOption(fmt.Sprintf("%s Cheese Yellow", colorBlock("220")), "220"),
					huh.NewOption(fmt.Sprintf("%s Charm Purple", colorBlock("99")), "99"),
					huh.NewOption(fmt.Sprintf("%s Ocean Blue", colorBlock("86")), "86"),
					huh.NewOption(fmt.Sprintf("%s Matrix Green", colorBlock("42")), "42"),
					huh.NewOption("✨ Custom Hex Code", "custom"),
				).
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := inputForm.Run(); err != nil {
		return err
	}

	if input == "custom" {
		var hexInput string
		hexForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter a Hex Color Code").
					Description("Include the `#` symbol. Example: #FF00FF").
					Placeholder("#").
					Value(&hexInput).
					Validate(func(str string) error {
						if len(str) != 7 || !strings.HasPrefix(str, "#") {
							return fmt.Errorf("must be a valid 6-character hex code starting with #")
						}
						return nil
					}),
			),
		).WithTheme(GetTheme())

		if err := hexForm.Run(); err != nil {
			return err
		}
		cfg.AccentColor = hexInput
	} else {
		cfg.AccentColor = input
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render("\n✅ The theme color is now saved.\n"))
	return nil
}
