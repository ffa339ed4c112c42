package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/setup"
	"github.com/bnema/inputkit/internal/ui"
)

var (
	setupCheckOnly bool
	setupBackend   string

	// replaced in tests
	setupEnv      = setup.DefaultEnv
	selectBackend = setup.SelectBackend
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Check backend prerequisites and choose a backend",
	Long: `Check what the robot and uinput backends need on this machine, print a
hint for each failing check, then ask which backend to store in the config.

Examples:
  inputkit setup --check
  inputkit setup --backend uinput`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := config.Get()
		report := setup.Run(setupEnv(), cfg, config.GetConfigPath())

		fmt.Fprintln(out, ui.HeaderStyle.Render("Backend prerequisites"))
		for _, c := range report.Checks {
			fmt.Fprintln(out, ui.FormatResult(c.OK, fmt.Sprintf("%s: %s", c.Name, c.Detail)))
			if !c.OK && c.Hint != "" {
				fmt.Fprintln(out, ui.SubtleStyle.Render(c.Hint))
			}
		}
		fmt.Fprintln(out, ui.FormatKeyValue("Recommended", report.Recommended))
		fmt.Fprintln(out, ui.FormatKeyValue("Configured", cfg.Engine.Backend))

		if setupCheckOnly {
			if !report.OK() {
				return fmt.Errorf("some checks failed")
			}
			return nil
		}

		backend := setupBackend
		if backend == "" {
			var err error
			if backend, err = selectBackend(report.Recommended); err != nil {
				return err
			}
		}
		if err := setup.ApplyBackend(backend); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.FormatResult(true, fmt.Sprintf("Backend set to %s in %s", backend, config.GetConfigPath())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&setupCheckOnly, "check", false, "only run the checks")
	setupCmd.Flags().StringVar(&setupBackend, "backend", "", "store this backend without prompting (robot or uinput)")
}
