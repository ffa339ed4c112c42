package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage inputkit configuration",
	Long:  `Manage inputkit configuration including delays, backend and the SSH whitelist.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, ui.FormatKeyValue("Config file", config.GetConfigPath()))

		fmt.Fprintln(out, ui.HeaderStyle.Render("\n[pointer]"))
		fmt.Fprintln(out, ui.FormatKeyValue("delay", fmt.Sprintf("%d ms", cfg.Pointer.Delay)))
		fmt.Fprintln(out, ui.FormatKeyValue("propagate", fmt.Sprint(cfg.Pointer.Propagate)))

		fmt.Fprintln(out, ui.HeaderStyle.Render("\n[keyboard]"))
		fmt.Fprintln(out, ui.FormatKeyValue("delay", fmt.Sprintf("%d ms", cfg.Keyboard.Delay)))

		fmt.Fprintln(out, ui.HeaderStyle.Render("\n[engine]"))
		fmt.Fprintln(out, ui.FormatKeyValue("backend", cfg.Engine.Backend))
		fmt.Fprintln(out, ui.FormatKeyValue("uinput_path", cfg.Engine.UInputPath))

		fmt.Fprintln(out, ui.HeaderStyle.Render("\n[journal]"))
		fmt.Fprintln(out, ui.FormatKeyValue("enabled", fmt.Sprint(cfg.Journal.Enabled)))
		fmt.Fprintln(out, ui.FormatKeyValue("path", cfg.Journal.Path))

		fmt.Fprintln(out, ui.HeaderStyle.Render("\n[server]"))
		fmt.Fprintln(out, ui.FormatKeyValue("ws_address", cfg.Server.WSAddress))
		fmt.Fprintln(out, ui.FormatKeyValue("ssh_address", cfg.Server.SSHAddress))
		fmt.Fprintln(out, ui.FormatKeyValue("ssh_host_key", cfg.Server.SSHHostKeyPath))
		fmt.Fprintln(out, ui.FormatKeyValue("whitelist_only", fmt.Sprint(cfg.Server.SSHWhitelistOnly)))
		for _, fp := range cfg.Server.SSHWhitelist {
			fmt.Fprintf(out, "  - %s\n", fp)
		}

		if len(cfg.Shortcuts) > 0 {
			fmt.Fprintln(out, ui.HeaderStyle.Render("\n[[shortcuts]]"))
			return writeShortcuts(out, cfg.Shortcuts)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(configPath); err == nil {
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration file already exists at: %s\nUse --force to overwrite\n", configPath)
				return nil
			}
			if err := os.Remove(configPath); err != nil {
				return fmt.Errorf("failed to remove existing config: %w", err)
			}
		}

		if err := config.WriteDefault(configPath); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "Configuration initialized at: "+configPath))
		return nil
	},
}

var configSSHCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Manage the SSH key whitelist used by serve",
}

var configSSHListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted SSH keys",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		if len(cfg.Server.SSHWhitelist) == 0 {
			fmt.Fprintln(out, "No SSH keys in whitelist")
		}
		for i, fp := range cfg.Server.SSHWhitelist {
			fmt.Fprintf(out, "%d. %s\n", i+1, fp)
		}

		mode := "DISABLED (all keys are accepted)"
		if cfg.Server.SSHWhitelistOnly {
			mode = "ENABLED"
		}
		fmt.Fprintf(out, "Whitelist-only mode is %s\n", mode)
	},
}

var configSSHAddCmd = &cobra.Command{
	Use:   "add <fingerprint>",
	Short: "Add an SSH key fingerprint to the whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fingerprint := args[0]
		if !strings.HasPrefix(fingerprint, "SHA256:") {
			return fmt.Errorf("invalid fingerprint %q: expected SHA256:...", fingerprint)
		}
		if err := config.AddSSHKeyToWhitelist(fingerprint); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "Added SSH key to whitelist: "+fingerprint))
		return nil
	},
}

var configSSHRemoveCmd = &cobra.Command{
	Use:   "remove <fingerprint>",
	Short: "Remove an SSH key from the whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RemoveSSHKeyFromWhitelist(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "Removed SSH key from whitelist: "+args[0]))
		return nil
	},
}

func writeShortcuts(out io.Writer, shortcuts []config.ShortcutConfig) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Combination\tScript\tDescription")
	fmt.Fprintln(w, "-----------\t------\t-----------")
	for _, s := range shortcuts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Combination, s.Script, s.Description)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSSHCmd)

	configSSHCmd.AddCommand(configSSHListCmd)
	configSSHCmd.AddCommand(configSSHAddCmd)
	configSSHCmd.AddCommand(configSSHRemoveCmd)

	configInitCmd.Flags().Bool("force", false, "Force overwrite existing configuration")
}
