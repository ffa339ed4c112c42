package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/script"
	"github.com/bnema/inputkit/internal/ui"
)

var captureRegion device.CaptureOptions

var pixelCmd = &cobra.Command{
	Use:   "pixel <x> <y>",
	Short: "Print the color of a screen pixel as lowercase hex",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := pointArgs(args)
		if err != nil {
			return err
		}
		return withSystem(func(sys *device.System) error {
			color, err := sys.Display.PixelAt(x, y)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color)
			return nil
		})
	},
}

var captureCmd = &cobra.Command{
	Use:   "capture <file.png>",
	Short: "Capture a screen region to a PNG file",
	Long: `Capture a screen region to a PNG file. Width and height default to the
screen size.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return withSystem(func(sys *device.System) error {
			img, err := sys.Display.Capture(captureRegion)
			if err != nil {
				return err
			}
			if err := script.WritePNG(path, img); err != nil {
				return err
			}
			b := img.Bounds()
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("Captured %dx%d to %s", b.Dx(), b.Dy(), path)))
			return nil
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show screen size, pointer position and active settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		return withSystem(func(sys *device.System) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.FormatKeyValue("Backend", cfg.Engine.Backend))
			fmt.Fprintln(out, ui.FormatKeyValue("Screen", fmt.Sprintf("%dx%d", sys.Display.Width(), sys.Display.Height())))
			fmt.Fprintln(out, ui.FormatKeyValue("Pointer", fmt.Sprintf("%d,%d", sys.Pointer.X(), sys.Pointer.Y())))
			fmt.Fprintln(out, ui.FormatKeyValue("Pointer delay", fmt.Sprintf("%d ms", sys.Pointer.Delay())))
			fmt.Fprintln(out, ui.FormatKeyValue("Keyboard delay", fmt.Sprintf("%d ms", sys.Keyboard.Delay())))
			fmt.Fprintln(out, ui.FormatKeyValue("Propagate", fmt.Sprint(sys.Pointer.Propagate())))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pixelCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(infoCmd)

	captureCmd.Flags().IntVar(&captureRegion.X, "x", 0, "left edge of the region")
	captureCmd.Flags().IntVar(&captureRegion.Y, "y", 0, "top edge of the region")
	captureCmd.Flags().IntVar(&captureRegion.Width, "width", 0, "region width (0 = screen width)")
	captureCmd.Flags().IntVar(&captureRegion.Height, "height", 0, "region height (0 = screen height)")
}
