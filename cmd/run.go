package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/remote"
	"github.com/bnema/inputkit/internal/script"
	"github.com/bnema/inputkit/internal/ui"
)

var runCheck bool

var runCmd = &cobra.Command{
	Use:   "run <script.json|->",
	Short: "Run a JSON action script",
	Long: `Run a JSON action script. The script is validated as a whole before any
step runs. Values produced by pixel and capture steps are printed as JSON
lines. Use - to read the script from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readScript(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		if runCheck {
			s, err := script.Parse(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("%d steps OK", len(s.Steps))))
			return nil
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		return withSystem(func(sys *device.System) error {
			outputs, err := scriptRunner(sys)(ctx, data)
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, o := range outputs {
				if encErr := enc.Encode(o); encErr != nil {
					return encErr
				}
			}
			return err
		})
	},
}

// scriptRunner parses and runs script documents against sys
func scriptRunner(sys *device.System) remote.RunFunc {
	return func(ctx context.Context, data []byte) ([]script.Output, error) {
		s, err := script.Parse(data)
		if err != nil {
			return nil, err
		}
		return s.Run(ctx, sys)
	}
}

func readScript(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, remote.MaxScriptSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read script from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return data, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runCheck, "check", false, "only validate the script")
}
