package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Run starts a full-screen program for model and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("monitor failed: %w", err)
	}
	return nil
}

// ShortcutInput is what the shortcut prompt collects
type ShortcutInput struct {
	Combination string
	Script      string
	Description string
}

// PromptShortcut asks for the fields missing from in. validate checks the
// combination before the form accepts it.
func PromptShortcut(in ShortcutInput, validate func(string) error) (ShortcutInput, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Key combination").
				Description("Keys separated by +, e.g. ctrl+shift+k").
				Value(&in.Combination).
				Validate(validate),
			huh.NewInput().
				Title("Script").
				Description("Path of the script to run when the combination fires").
				Value(&in.Script).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("script path is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&in.Description),
		),
	)

	if err := form.Run(); err != nil {
		return ShortcutInput{}, fmt.Errorf("shortcut prompt cancelled: %w", err)
	}
	return in, nil
}
