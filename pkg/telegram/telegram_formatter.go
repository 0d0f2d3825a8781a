package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-dashboard/pkg/utils"
)

// maxMessageLen keeps each part under Telegram's 4096 character limit.
const maxMessageLen = 4090

// SignalChange is one ticker whose signal moved since the last notification.
// Previous is empty for a first notification.
type SignalChange struct {
	Ticker   string
	Action   string
	Previous string
	Label    string
	Price    float64
	Change1D float64
	HasQuote bool
	Reasons  []string
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func actionIcon(action string) string {
	switch strings.ToUpper(action) {
	case "BUY":
		return "🟢"
	case "SELL":
		return "🔴"
	default:
		return "🟡"
	}
}

// FormatSignalChange formats a single signal change as a Markdown entry.
func FormatSignalChange(c SignalChange) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *%s* `%s`", actionIcon(c.Action), escapeMarkdown(c.Ticker), c.Action)
	if c.Previous != "" {
		fmt.Fprintf(&b, " (was %s)", c.Previous)
	}
	b.WriteString("\n")

	if c.Label != "" && !strings.EqualFold(c.Label, c.Action) {
		fmt.Fprintf(&b, "🏷 *Signal:* %s\n", escapeMarkdown(utils.Truncate(c.Label, 100)))
	}
	if c.HasQuote {
		fmt.Fprintf(&b, "💰 *Price:* %s (%s)\n", utils.FormatPrice(c.Price), utils.FormatPercentage(c.Change1D))
	}
	for _, r := range c.Reasons {
		fmt.Fprintf(&b, "• %s\n", escapeMarkdown(utils.Truncate(r, 200)))
	}
	return b.String()
}

// FormatSignalDigest formats signal changes into one or more Markdown messages,
// splitting so that no part exceeds the Telegram length limit.
func FormatSignalDigest(changes []SignalChange, at time.Time) []string {
	if len(changes) == 0 {
		return nil
	}

	var messages []string
	var current strings.Builder
	part := 1
	headerLen := 0

	startPart := func() {
		current.Reset()
		if part == 1 {
			fmt.Fprintf(&current, "📊 *Signal Update* %s\n\n", escapeMarkdown(utils.FormatDateTime(at)))
		} else {
			fmt.Fprintf(&current, "---*Signal Update Part %d*---\n\n", part)
		}
		headerLen = current.Len()
	}
	// write appends chunk, first flushing the current part when chunk does
	// not fit. A part holding only its header is never flushed.
	write := func(chunk string) {
		if current.Len()+len(chunk) > maxMessageLen && current.Len() > headerLen {
			messages = append(messages, current.String())
			part++
			startPart()
		}
		current.WriteString(chunk)
	}
	startPart()

	for _, c := range changes {
		entry := FormatSignalChange(c) + "\n"
		if headerLen+len(entry) <= maxMessageLen {
			write(entry)
			continue
		}
		// The entry alone exceeds a part: split it between lines.
		for _, line := range strings.SplitAfter(entry, "\n") {
			if line != "" {
				write(line)
			}
		}
	}
	return append(messages, current.String())
}
