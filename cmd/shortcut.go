package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/ui"
)

var (
	shortcutDescription string

	// promptShortcut is replaced in tests
	promptShortcut = ui.PromptShortcut
)

var shortcutCmd = &cobra.Command{
	Use:   "shortcut",
	Short: "Manage shortcuts bound by listen",
}

var shortcutAddCmd = &cobra.Command{
	Use:   "add [combination] [script]",
	Short: "Bind a key combination to a script",
	Long: `Bind a key combination to a script file. Missing arguments are asked for
interactively.

Examples:
  inputkit shortcut add ctrl+alt+k ~/scripts/login.json
  inputkit shortcut add`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := ui.ShortcutInput{Description: shortcutDescription}
		if len(args) > 0 {
			in.Combination = args[0]
		}
		if len(args) > 1 {
			in.Script = args[1]
		}

		if len(args) < 2 {
			var err error
			if in, err = promptShortcut(in, validateCombination); err != nil {
				return err
			}
		}
		if err := validateCombination(in.Combination); err != nil {
			return err
		}

		sc := config.ShortcutConfig{Combination: in.Combination, Script: in.Script, Description: in.Description}
		if err := config.AddShortcut(sc); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("Bound %s to %s", sc.Combination, sc.Script)))
		return nil
	},
}

var shortcutRemoveCmd = &cobra.Command{
	Use:   "remove <combination>",
	Short: "Remove a shortcut",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RemoveShortcut(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "Removed shortcut "+args[0]))
		return nil
	},
}

var shortcutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured shortcuts",
	RunE: func(cmd *cobra.Command, args []string) error {
		shortcuts := config.ListShortcuts()
		if len(shortcuts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No shortcuts configured")
			return nil
		}
		return writeShortcuts(cmd.OutOrStdout(), shortcuts)
	},
}

// validateCombination checks that every key of s resolves to a code
func validateCombination(s string) error {
	c, err := keys.ParseCombination(s)
	if err != nil {
		return err
	}
	_, err = c.Resolve()
	return err
}

func init() {
	rootCmd.AddCommand(shortcutCmd)

	shortcutCmd.AddCommand(shortcutAddCmd)
	shortcutCmd.AddCommand(shortcutRemoveCmd)
	shortcutCmd.AddCommand(shortcutListCmd)

	shortcutAddCmd.Flags().StringVarP(&shortcutDescription, "description", "d", "", "what the shortcut does")
}
