package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/device"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native"
	"github.com/bnema/inputkit/internal/native/robot"
	"github.com/bnema/inputkit/internal/native/uinput"
)

// openSystem opens the facades on the configured backend. The returned
// function releases the backend and stops the hook. Tests replace it.
var openSystem = openNative

func openNative(cfg *config.Config) (*device.System, func() error, error) {
	var engine native.Engine
	release := func() error { return nil }

	switch cfg.Engine.Backend {
	case config.BackendUInput:
		if err := uinput.Available(cfg.Engine.UInputPath); err != nil {
			return nil, nil, fmt.Errorf("uinput backend unavailable: %w", err)
		}
		e, err := uinput.NewEngine(cfg.Engine.UInputPath)
		if err != nil {
			return nil, nil, err
		}
		engine, release = e, e.Close
	default:
		engine = robot.NewEngine()
	}
	logger.Debugf("Using %s backend", cfg.Engine.Backend)

	hook := robot.NewHook()
	sys, err := device.Open(engine, hook, device.Options{
		PointerDelay:  cfg.Pointer.Delay,
		KeyboardDelay: cfg.Keyboard.Delay,
		NoPropagate:   !cfg.Pointer.Propagate,
	})
	if err != nil {
		hook.Stop()
		return nil, nil, errors.Join(err, release())
	}

	return sys, func() error {
		err := sys.Close()
		hook.Stop()
		return errors.Join(err, release())
	}, nil
}

// withSystem opens the configured system for the duration of fn
func withSystem(fn func(sys *device.System) error) (err error) {
	sys, closeSystem, err := openSystem(config.Get())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSystem(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(sys)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func intArg(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &device.InvalidArgumentError{Param: name, Expected: "an integer", Got: value}
	}
	return n, nil
}

func pointArgs(args []string) (int, int, error) {
	x, err := intArg("x", args[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := intArg("y", args[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
