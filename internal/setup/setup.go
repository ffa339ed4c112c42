// Package setup checks what the native backends need and helps pick one.
package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/viper"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/logger"
	"github.com/bnema/inputkit/internal/native/uinput"
)

// Check is the outcome of one prerequisite check
type Check struct {
	Name   string
	OK     bool
	Detail string
	Hint   string
}

// Report collects the checks of one run
type Report struct {
	Checks []Check

	// Recommended is the backend most likely to work here
	Recommended string
}

// OK reports whether every check passed
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Env is the part of the system the checks look at
type Env struct {
	Getenv          func(string) string
	Geteuid         func() int
	Stat            func(string) (os.FileInfo, error)
	UInputAvailable func(path string) error
}

// DefaultEnv inspects the running system
func DefaultEnv() Env {
	return Env{
		Getenv:          os.Getenv,
		Geteuid:         os.Geteuid,
		Stat:            os.Stat,
		UInputAvailable: uinput.Available,
	}
}

// Run performs every check against cfg
func Run(env Env, cfg *config.Config, configPath string) Report {
	var r Report

	display := checkDisplay(env)
	uinputCheck := checkUInput(env, cfg.Engine.UInputPath)
	r.Checks = append(r.Checks, display, uinputCheck, checkConfig(env, configPath), checkJournal(env, cfg.Journal.Path))

	switch {
	case display.OK:
		r.Recommended = config.BackendRobot
	case uinputCheck.OK:
		r.Recommended = config.BackendUInput
	default:
		r.Recommended = config.BackendRobot
	}

	if env.Geteuid() == 0 {
		logger.Warn("Running as root: the config and journal will be written to root's directories")
	}
	return r
}

func checkDisplay(env Env) Check {
	c := Check{Name: "X11 display"}
	if d := env.Getenv("DISPLAY"); d != "" {
		c.OK = true
		c.Detail = "DISPLAY=" + d
		return c
	}
	if w := env.Getenv("WAYLAND_DISPLAY"); w != "" {
		c.Detail = "Wayland session without XWayland (" + w + ")"
		c.Hint = "The robot backend and the global hook need X11 or XWayland. Use the uinput backend to inject input."
		return c
	}
	c.Detail = "no graphical session found"
	c.Hint = "Run inputkit inside a desktop session."
	return c
}

func checkUInput(env Env, path string) Check {
	c := Check{Name: "uinput access"}
	if err := env.UInputAvailable(path); err != nil {
		c.Detail = err.Error()
		c.Hint = fmt.Sprintf(`Load the module and allow your user to write %s:
  sudo modprobe uinput
  echo 'KERNEL=="uinput", GROUP="input", MODE="0660"' | sudo tee /etc/udev/rules.d/99-inputkit.rules
  sudo usermod -aG input $USER   # then log out and back in`, path)
		return c
	}
	c.OK = true
	c.Detail = path + " is writable"
	return c
}

func checkConfig(env Env, path string) Check {
	c := Check{Name: "config file"}
	if _, err := env.Stat(path); err != nil {
		c.Detail = "not found at " + path
		c.Hint = "Run 'inputkit config init' to write the defaults."
		return c
	}
	c.OK = true
	c.Detail = path
	return c
}

func checkJournal(env Env, path string) Check {
	c := Check{Name: "journal directory", OK: true}
	dir := filepath.Dir(path)
	info, err := env.Stat(dir)
	switch {
	case err != nil:
		c.Detail = dir + " will be created on first recording"
	case !info.IsDir():
		c.OK = false
		c.Detail = dir + " is not a directory"
		c.Hint = "Point journal.path at a file inside a directory."
	default:
		c.Detail = dir
	}
	return c
}

// SelectBackend asks which backend to use, preselecting recommended
func SelectBackend(recommended string) (string, error) {
	selected := recommended
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Input Backend").
				Description("robot drives X11 through robotgo; uinput injects through Linux virtual devices").
				Options(
					huh.NewOption("robot (X11, XWayland, macOS, Windows)", config.BackendRobot),
					huh.NewOption("uinput (Linux virtual devices)", config.BackendUInput),
				).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("backend selection cancelled: %w", err)
	}
	return selected, nil
}

// ApplyBackend stores backend in the config file
func ApplyBackend(backend string) error {
	switch backend {
	case config.BackendRobot, config.BackendUInput:
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	viper.Set("engine.backend", backend)
	if err := config.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
