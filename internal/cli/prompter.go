package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/recurring"
)

// Decision is the user's answer for an import candidate.
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionAdd
	DecisionQuit
)

// Prompter asks the user questions on a terminal.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter creates a prompter reading answers from r and writing to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: NewLineReader(r), writer: w}
}

// Confirm asks a yes/no question. An empty answer picks defaultYes.
func (p *Prompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" "+hint)); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}

// ChooseCategory lists the categories and reads a choice by number or
// name. An empty answer keeps suggested.
func (p *Prompter) ChooseCategory(ctx context.Context, suggested model.Category) (model.Category, error) {
	var b strings.Builder
	for i, c := range model.Categories {
		marker := " "
		if c == suggested {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s[%d] %s\n", marker, i+1, c)
	}
	if _, err := fmt.Fprint(p.writer, b.String()); err != nil {
		return "", fmt.Errorf("failed to write categories: %w", err)
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(fmt.Sprintf("Category [%s]", suggested))); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}
		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if answer == "" {
			return suggested, nil
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(model.Categories) {
			return model.Categories[n-1], nil
		}
		if c, parseErr := model.ParseCategory(answer); parseErr == nil {
			return c, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Unknown category: "+answer)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}

// ReviewCandidate shows a detected recurring payee and asks whether to track
// it. index is zero-based.
func (p *Prompter) ReviewCandidate(ctx context.Context, c recurring.Candidate, index, total int) (Decision, error) {
	if _, err := fmt.Fprintln(p.writer, RenderBox(
		fmt.Sprintf("Recurring charge %d of %d", index+1, total),
		formatCandidate(c),
	)); err != nil {
		return DecisionSkip, fmt.Errorf("failed to write candidate: %w", err)
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt("[a]dd, [s]kip, [q]uit")); err != nil {
			return DecisionSkip, fmt.Errorf("failed to write prompt: %w", err)
		}
		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return DecisionSkip, err
		}

		switch strings.ToLower(answer) {
		case "a", "add", "y":
			return DecisionAdd, nil
		case "", "s", "skip", "n":
			return DecisionSkip, nil
		case "q", "quit":
			return DecisionQuit, nil
		}
	}
}

func formatCandidate(c recurring.Candidate) string {
	lines := []string{
		BoldStyle.Render(c.Payee),
		fmt.Sprintf("%s %s", FormatMoney(c.Amount, c.Currency), c.Frequency),
		fmt.Sprintf("%d charges, last on %s", len(c.Charges), FormatDate(c.LastCharge)),
		fmt.Sprintf("Next expected %s", FormatDate(c.NextBillingDate)),
	}
	if c.Tracked() {
		lines = append(lines, SubtleStyle.Render("Already tracked as "+c.TrackedAs.Name))
	}
	return strings.Join(lines, "\n")
}
