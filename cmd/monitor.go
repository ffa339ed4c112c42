package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/ui"
)

var monitorRecord bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch global input events in a full-screen view",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return withSystem(func(sys *device.System) error {
			if monitorRecord || cfg.Journal.Enabled {
				stop, err := startRecording(cfg.Journal.Path, sys.Events())
				if err != nil {
					return err
				}
				defer stop()
			}

			stream, err := ui.NewStream(sys.Events(), 512)
			if err != nil {
				return err
			}
			defer func() {
				if err := stream.Close(); err != nil {
					logger.Warnf("Failed to close event stream: %v", err)
				}
			}()

			return ui.Run(ctx, ui.NewMonitorModel("inputkit monitor", stream))
		})
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().BoolVar(&monitorRecord, "record", false, "also store events in the journal")
}
