package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/subtrack/internal/model"
	"github.com/Veraticus/subtrack/internal/tui/themes"
)

const maxContentWidth = 80

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.Done() {
		return m.renderSummary()
	}

	group := m.groups[m.current]

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("Possible duplicate %d of %d", m.current+1, len(m.groups))))
	b.WriteString("\n")
	b.WriteString(m.theme.Reason.Render(group.Reason))
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  (similarity %.0f%%)", group.Similarity*100)))
	b.WriteString("\n\n")

	for i, sub := range group.Subscriptions {
		b.WriteString(m.renderMember(i, sub))
		b.WriteString("\n")
	}

	box := m.theme.RoundedBox.Width(m.contentWidth()).Render(b.String())

	sections := []string{box}
	switch {
	case m.busy:
		sections = append(sections, m.theme.Muted.Render("Applying..."))
	case m.lastErr != nil:
		sections = append(sections, m.theme.StatusError.Render("Error: "+m.lastErr.Error()))
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderMember(i int, sub model.Subscription) string {
	cursor := "  "
	style := m.theme.Normal
	if i == m.cursor {
		cursor = "▸ "
		style = m.theme.Selected
	}

	line := fmt.Sprintf("%s%d. %s %s  %.2f %s / %s",
		cursor, i+1, themes.GetCategoryIcon(sub.Category), sub.Name,
		sub.Amount, sub.Currency, sub.BillingFrequency)

	var details []string
	if sub.Website != "" {
		details = append(details, sub.Website)
	}
	if sub.Status != model.StatusActive {
		details = append(details, string(sub.Status))
	}
	if !sub.NextBillingDate.IsZero() {
		details = append(details, "next "+sub.NextBillingDate.Format("Jan 2, 2006"))
	}

	out := style.Render(line)
	if len(details) > 0 {
		out += "\n" + m.theme.Muted.Render("      "+strings.Join(details, " · "))
	}
	return out
}

func (m Model) renderSummary() string {
	s := m.Summary()
	return m.theme.StatusSuccess.Render("Review complete") + "\n" +
		m.theme.Subtitle.Render(fmt.Sprintf("%d merged, %d dismissed, %d skipped", s.Merged, s.Dismissed, s.Skipped)) + "\n"
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return maxContentWidth
	}
	// Leave room for the border and padding.
	return max(20, min(m.width-6, maxContentWidth))
}
