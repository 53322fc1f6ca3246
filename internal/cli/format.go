package cli

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/subtrack/internal/model"
)

// DateLayout is the layout used for dates in terminal output.
const DateLayout = "Jan 2, 2006"

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount with thousands separators followed by its
// currency code, e.g. "1,234.50 USD". Unknown codes are printed as given.
func FormatMoney(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	return printer.Sprintf("%.2f", amount) + " " + code
}

// FormatDate renders a date, or "-" when it is unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// FormatRelativeDays describes a day offset relative to today.
func FormatRelativeDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// FormatStatus renders a subscription status with a color matching its state.
func FormatStatus(status model.Status) string {
	switch status {
	case model.StatusActive:
		return SuccessStyle.Render(string(status))
	case model.StatusPaused:
		return WarningStyle.Render(string(status))
	default:
		return SubtleStyle.Render(string(status))
	}
}

// PriorityIcon returns the icon shown next to a notification.
func PriorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "🚨"
	case model.PriorityHigh:
		return "⏰"
	case model.PriorityMedium:
		return BellIcon
	default:
		return InfoIcon
	}
}

// FormatPercent renders a percentage without decimals.
func FormatPercent(p float64) string {
	return printer.Sprintf("%.0f%%", p)
}
