package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSignalChange(t *testing.T) {
	out := FormatSignalChange(SignalChange{
		Ticker:   "TCS.NS",
		Action:   "BUY",
		Previous: "HOLD",
		Label:    "STRONG_BUY",
		Price:    3890.5,
		Change1D: 1.2,
		HasQuote: true,
		Reasons:  []string{"MACD crossover", "RSI_14 rising"},
	})

	assert.Contains(t, out, "🟢 *TCS.NS* `BUY` (was HOLD)")
	assert.Contains(t, out, "STRONG\\_BUY")
	assert.Contains(t, out, "₹3,891")
	assert.Contains(t, out, "+1.20%")
	assert.Contains(t, out, "• RSI\\_14 rising")
}

func TestFormatSignalChange_FirstNotificationWithoutQuote(t *testing.T) {
	out := FormatSignalChange(SignalChange{Ticker: "INFY.NS", Action: "SELL", Label: "sell"})

	assert.Equal(t, "🔴 *INFY.NS* `SELL`\n", out)
}

func TestFormatSignalDigest_Empty(t *testing.T) {
	assert.Nil(t, FormatSignalDigest(nil, time.Now()))
}

func TestFormatSignalDigest_SplitsLongDigests(t *testing.T) {
	reason := strings.Repeat("x", 190)
	var changes []SignalChange
	for i := 0; i < 60; i++ {
		changes = append(changes, SignalChange{Ticker: "T", Action: "HOLD", Reasons: []string{reason, reason}})
	}

	msgs := FormatSignalDigest(changes, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	require.Greater(t, len(msgs), 1)
	assert.True(t, strings.HasPrefix(msgs[0], "📊 *Signal Update*"))
	assert.True(t, strings.HasPrefix(msgs[1], "---*Signal Update Part 2*---"))
	total := 0
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), maxMessageLen)
		total += strings.Count(m, "🟡")
	}
	assert.Equal(t, 60, total)
}

func TestFormatSignalDigest_SplitsOversizedEntryBetweenLines(t *testing.T) {
	var reasons []string
	for i := 0; i < 40; i++ {
		reasons = append(reasons, fmt.Sprintf("%02d %s", i, strings.Repeat("r", 197)))
	}
	change := SignalChange{Ticker: "TCS.NS", Action: "BUY", Reasons: reasons}

	msgs := FormatSignalDigest([]SignalChange{change}, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	require.Greater(t, len(msgs), 1)
	assert.Contains(t, msgs[0], "*TCS.NS* `BUY`", "entry starts in the first part")
	joined := strings.Join(msgs, "")
	for i, m := range msgs {
		assert.LessOrEqual(t, len(m), maxMessageLen)
		assert.Contains(t, m, "• ", "part %d carries entry lines", i+1)
	}
	for i := 0; i < 40; i++ {
		assert.Contains(t, joined, fmt.Sprintf("• %02d r", i))
	}
}
