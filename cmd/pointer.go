package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/keys"
)

var (
	moveSmooth     bool
	moveRelative   bool
	dragRelative   bool
	scrollRelative bool
)

var moveCmd = &cobra.Command{
	Use:   "move <x> <y>",
	Short: "Move the pointer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := pointArgs(args)
		if err != nil {
			return err
		}
		return withSystem(func(sys *device.System) error {
			return sys.Pointer.Move(x, y, device.MoveOptions{Smooth: moveSmooth, Relative: moveRelative})
		})
	},
}

var clickCmd = &cobra.Command{
	Use:   "click [button] [x y]",
	Short: "Click a pointer button, optionally at a position",
	Long: `Click releases, presses and releases a button (left, right or middle,
default left). With a position the pointer is moved there first.`,
	Args: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 0, 1, 3:
			return nil
		}
		return fmt.Errorf("accepts [button] or [button x y], received %d args", len(args))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		button := keys.ButtonLeft
		if len(args) > 0 {
			button = keys.Button(args[0])
		}

		if len(args) == 3 {
			x, y, err := pointArgs(args[1:])
			if err != nil {
				return err
			}
			return withSystem(func(sys *device.System) error {
				return sys.Pointer.ClickAt(x, y, button)
			})
		}

		return withSystem(func(sys *device.System) error {
			return sys.Pointer.Click(button)
		})
	},
}

var dragCmd = &cobra.Command{
	Use:   "drag <x> <y>",
	Short: "Drag with the left button held to a position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := pointArgs(args)
		if err != nil {
			return err
		}
		return withSystem(func(sys *device.System) error {
			return sys.Pointer.DragTo(x, y, device.RelativeOptions{Relative: dragRelative})
		})
	},
}

var scrollCmd = &cobra.Command{
	Use:   "scroll <x> <y>",
	Short: "Scroll the view",
	Long: `Scroll so the view reaches x,y. With --relative the values are passed
through as scroll offsets.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := pointArgs(args)
		if err != nil {
			return err
		}
		return withSystem(func(sys *device.System) error {
			return sys.Pointer.ScrollTo(x, y, device.RelativeOptions{Relative: scrollRelative})
		})
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(clickCmd)
	rootCmd.AddCommand(dragCmd)
	rootCmd.AddCommand(scrollCmd)

	moveCmd.Flags().BoolVar(&moveSmooth, "smooth", false, "glide to the target instead of jumping")
	moveCmd.Flags().BoolVarP(&moveRelative, "relative", "r", false, "offset from the current position")
	dragCmd.Flags().BoolVarP(&dragRelative, "relative", "r", false, "offset from the current position")
	scrollCmd.Flags().BoolVarP(&scrollRelative, "relative", "r", false, "pass the values through as offsets")
}
