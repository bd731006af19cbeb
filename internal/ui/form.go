package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/klauern/agenttransfer/internal/resolve"
)

// FormPrompter asks questions with interactive terminal forms.
type FormPrompter struct {
	// Accessible switches forms to plain prompts for screen readers.
	Accessible bool
}

var _ resolve.Prompter = (*FormPrompter)(nil)

// NewFormPrompter creates a form-based prompter.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{}
}

// Choose implements resolve.Prompter.
func (p *FormPrompter) Choose(ctx context.Context, question string, options []resolve.Option, def string) (string, error) {
	value := def
	sel := huh.NewSelect[string]().
		Title(question).
		Options(formOptions(options)...).
		Value(&value)
	if err := p.run(ctx, huh.NewGroup(sel)); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm implements resolve.Prompter.
func (p *FormPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	value := def
	confirm := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := p.run(ctx, huh.NewGroup(confirm)); err != nil {
		return false, err
	}
	return value, nil
}

func (p *FormPrompter) run(ctx context.Context, group *huh.Group) error {
	form := huh.NewForm(group).
		WithTheme(huh.ThemeDracula()).
		WithAccessible(p.Accessible)
	err := form.RunWithContext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", resolve.ErrAborted, err)
	default:
		return fmt.Errorf("prompt failed: %w", err)
	}
}

// formOptions labels each option with its shortcut key.
func formOptions(options []resolve.Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		out = append(out, huh.NewOption(fmt.Sprintf("[%s] %s", o.Key, o.Label), o.Key))
	}
	return out
}
