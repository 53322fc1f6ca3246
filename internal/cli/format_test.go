package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/subtrack/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
		amount   float64
	}{
		{name: "simple", amount: 9.99, code: "USD", expected: "9.99 USD"},
		{name: "grouping", amount: 1234.5, code: "USD", expected: "1,234.50 USD"},
		{name: "lowercase code", amount: 15, code: "eur", expected: "15.00 EUR"},
		{name: "zero", amount: 0, code: "GBP", expected: "0.00 GBP"},
		{name: "unknown code passes through", amount: 1, code: "zzz", expected: "1.00 ZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(tt.amount, tt.code))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", FormatDate(time.Time{}))
	assert.Equal(t, "Jun 10, 2024", FormatDate(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))
}

func TestFormatRelativeDays(t *testing.T) {
	tests := map[int]string{
		-3: "3 days ago",
		-1: "yesterday",
		0:  "today",
		1:  "tomorrow",
		5:  "in 5 days",
	}
	for days, expected := range tests {
		assert.Equal(t, expected, FormatRelativeDays(days))
	}
}

func TestFormatStatusAndIcons(t *testing.T) {
	for _, s := range []model.Status{model.StatusActive, model.StatusPaused, model.StatusCancelled} {
		assert.Contains(t, FormatStatus(s), string(s))
	}
	assert.Equal(t, "🚨", PriorityIcon(model.PriorityCritical))
	assert.Equal(t, InfoIcon, PriorityIcon(model.PriorityLow))
	assert.Equal(t, "85%", FormatPercent(85.4))
	assert.Contains(t, FormatTitle("", "Subscriptions"), AppIcon)
	assert.Contains(t, FormatTitle(CalendarIcon, "Calendar"), CalendarIcon)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "Name", "Amount")
	table.Row("Netflix", "15.99 USD")
	table.Row("Spotify")
	table.Row("Extra", "1", "dropped")
	require.NoError(t, table.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Amount")
	assert.True(t, strings.HasPrefix(lines[1], "----"))
	assert.Contains(t, lines[2], "Netflix")
	assert.Contains(t, lines[2], "15.99 USD")
	assert.Equal(t, "Spotify", strings.TrimSpace(lines[3]))
	assert.NotContains(t, lines[4], "dropped")
}
