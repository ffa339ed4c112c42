package script

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/logger"
)

// Output is a value produced by a pixel or capture step.
type Output struct {
	Step  int    `json:"step"`
	Op    Op     `json:"op"`
	Value string `json:"value"`
}

// StepError reports the step that failed while running.
type StepError struct {
	Index int
	Op    Op
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes the steps in order and stops at the first failure. Earlier
// steps are not undone.
func (s *Script) Run(ctx context.Context, sys *device.System) ([]Output, error) {
	var outputs []Output
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}

		value, err := runStep(ctx, sys, step)
		if err != nil {
			return outputs, &StepError{Index: i, Op: step.Op, Err: err}
		}
		if value != "" {
			outputs = append(outputs, Output{Step: i, Op: step.Op, Value: value})
		}
		logger.Debugf("script step %d: %s", i, step.Op)
	}
	return outputs, nil
}

func runStep(ctx context.Context, sys *device.System, step Step) (string, error) {
	p, k := sys.Pointer, sys.Keyboard

	switch step.Op {
	case OpMove:
		return "", p.Move(step.X, step.Y, device.MoveOptions{Smooth: step.Smooth, Relative: step.Relative})
	case OpDrag:
		return "", p.DragTo(step.X, step.Y, device.RelativeOptions{Relative: step.Relative})
	case OpScroll:
		return "", p.ScrollTo(step.X, step.Y, device.RelativeOptions{Relative: step.Relative})
	case OpDown:
		return "", p.Down(step.Button)
	case OpUp:
		return "", p.Up(step.Button)
	case OpClick:
		return "", p.Click(step.Button)
	case OpClickAt:
		return "", p.ClickAt(step.X, step.Y, step.Button)
	case OpPress:
		return "", k.Press(step.Key, modifierArg(step))
	case OpKeyDown:
		return "", k.Down(step.Key, modifierArg(step))
	case OpKeyUp:
		return "", k.Up(step.Key, modifierArg(step))
	case OpType:
		return "", k.Type(step.Text, device.TypeOptions{Interval: step.Interval})
	case OpSleep:
		t := time.NewTimer(time.Duration(step.Millis) * time.Millisecond)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
			return "", nil
		}
	case OpPixel:
		return sys.Display.PixelAt(step.X, step.Y)
	case OpCapture:
		return step.Path, capture(sys.Display, step)
	}
	return "", fmt.Errorf("unknown op %q", step.Op)
}

func modifierArg(step Step) keys.ModifierArg {
	if len(step.Modifiers) == 0 {
		return nil
	}
	return step.Modifiers
}

func capture(d *device.Display, step Step) error {
	img, err := d.Capture(device.CaptureOptions{X: step.X, Y: step.Y, Width: step.Width, Height: step.Height})
	if err != nil {
		return err
	}
	return WritePNG(step.Path, img)
}

// WritePNG encodes img to path, replacing any existing file
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
