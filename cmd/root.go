package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "inputkit",
		Short: "inputkit - desktop input automation",
		Long: `inputkit drives the pointer, keyboard and screen of the local desktop and
observes global input events. Actions can be run one at a time, from JSON
scripts, bound to global shortcuts or received over SSH.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/inputkit/inputkit.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// setup loads the configuration and applies the log level before any command runs
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = config.Get().Logging.LogLevel
	}
	if level != "" {
		logger.SetLevel(level)
	}
	return nil
}
