package resolve

import (
	"context"
	"fmt"
	"strings"
)

// Option is one answer offered by a choice prompt.
type Option struct {
	Key   string
	Label string
}

// Prompter asks the user questions. Implementations block until an answer
// is read and return ErrAborted when input is interrupted.
type Prompter interface {
	// Choose returns the Key of the selected option. An empty answer
	// selects def.
	Choose(ctx context.Context, question string, options []Option, def string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

// ScriptedPrompter answers prompts from a fixed list. An empty answer
// selects the default. It records every question asked and returns
// ErrAborted once the answers run out.
type ScriptedPrompter struct {
	Answers []string
	Asked   []string
}

// Choose implements Prompter.
func (p *ScriptedPrompter) Choose(ctx context.Context, question string, options []Option, def string) (string, error) {
	answer, err := p.next(ctx, question)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	for _, o := range options {
		if strings.EqualFold(o.Key, answer) {
			return o.Key, nil
		}
	}
	return "", fmt.Errorf("scripted answer %q is not an option for %q", answer, question)
}

// Confirm implements Prompter.
func (p *ScriptedPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	answer, err := p.next(ctx, question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("scripted answer %q is not yes or no", answer)
	}
}

func (p *ScriptedPrompter) next(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.Asked = append(p.Asked, question)
	if len(p.Answers) == 0 {
		return "", ErrAborted
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return strings.TrimSpace(answer), nil
}

// Remaining returns the number of unused answers.
func (p *ScriptedPrompter) Remaining() int {
	return len(p.Answers)
}
