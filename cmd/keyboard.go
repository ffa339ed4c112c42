package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/keys"
)

var (
	pressDown    bool
	pressUp      bool
	typeInterval int
)

var pressCmd = &cobra.Command{
	Use:   "press <key> [modifier...]",
	Short: "Tap a key, optionally with modifiers held",
	Long: `Tap a key with optional modifiers (alt, command, control, shift).
With --down or --up the key is only pressed or released.

Examples:
  inputkit press enter
  inputkit press s control
  inputkit press tab alt shift
  inputkit press shift --down`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pressDown && pressUp {
			return errors.New("--down and --up are mutually exclusive")
		}

		key := args[0]
		modifier := modifierArgs(args[1:])

		return withSystem(func(sys *device.System) error {
			switch {
			case pressDown:
				return sys.Keyboard.Down(key, modifier)
			case pressUp:
				return sys.Keyboard.Up(key, modifier)
			}
			return sys.Keyboard.Press(key, modifier)
		})
	},
}

var typeCmd = &cobra.Command{
	Use:   "type <text>...",
	Short: "Type text",
	Long:  `Type text. Multiple arguments are joined with single spaces.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withSystem(func(sys *device.System) error {
			return sys.Keyboard.Type(text, device.TypeOptions{Interval: typeInterval})
		})
	},
}

func modifierArgs(names []string) keys.ModifierArg {
	switch len(names) {
	case 0:
		return nil
	case 1:
		return keys.Modifier(names[0])
	}
	list := make(keys.ModifierList, len(names))
	for i, name := range names {
		list[i] = keys.Modifier(name)
	}
	return list
}

func init() {
	rootCmd.AddCommand(pressCmd)
	rootCmd.AddCommand(typeCmd)

	pressCmd.Flags().BoolVar(&pressDown, "down", false, "only press the key")
	pressCmd.Flags().BoolVar(&pressUp, "up", false, "only release the key")
	typeCmd.Flags().IntVarP(&typeInterval, "interval", "i", 0, "pause between characters in milliseconds")
}
