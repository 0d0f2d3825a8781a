package panel

import (
	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/utils"
)

// Tone colours a value in every frontend.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// ToneOf maps the sign of x to a tone.
func ToneOf(x float64) Tone {
	switch {
	case x > 0:
		return TonePositive
	case x < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// Card is a labelled summary value.
type Card struct {
	Label string
	Value string
	Tone  Tone
}

// Table is a bounded set of rows. Total is the row count before capping.
type Table struct {
	Columns []string
	Rows    [][]string
	Total   int
}

// Truncated reports whether rows were dropped by the cap.
func (t *Table) Truncated() bool {
	return t != nil && t.Total > len(t.Rows)
}

// NewsEntry is one rendered article.
type NewsEntry struct {
	Title     string
	URL       string
	Source    string
	Published string
	Summary   string
	Sentiment string
	Tone      Tone
}

// View is the frontend-neutral rendering of a payload. The terminal and web
// frontends both draw from it.
type View struct {
	Title       string
	Source      string
	LastUpdated string
	Cards       []Card
	Table       *Table
	News        []NewsEntry
	Notes       []string
	Loading     bool
	Error       string
}

// Empty reports whether the view has nothing to show.
func (v View) Empty() bool {
	return len(v.Cards) == 0 && v.Table == nil && len(v.News) == 0 && len(v.Notes) == 0
}

// NewTable builds a table keeping at most common.MaxTableRows rows.
func NewTable(columns []string, rows [][]string) *Table {
	total := len(rows)
	if len(rows) > common.MaxTableRows {
		rows = rows[:common.MaxTableRows]
	}
	return &Table{Columns: columns, Rows: rows, Total: total}
}

// CapNews keeps at most common.MaxNewsItems entries.
func CapNews(entries []NewsEntry) []NewsEntry {
	if len(entries) > common.MaxNewsItems {
		return entries[:common.MaxNewsItems]
	}
	return entries
}

// SentimentTone maps a sentiment label such as "Bullish" or "negative".
func SentimentTone(label string) Tone {
	switch normalize(label) {
	case "positive", "bullish", "somewhat-bullish", "somewhat_bullish", "buy":
		return TonePositive
	case "negative", "bearish", "somewhat-bearish", "somewhat_bearish", "sell":
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func withProvenance(v View, p dto.Provenance) View {
	v.Source = p.Source
	if p.LastUpdated != "" {
		v.LastUpdated = utils.FormatDate(p.LastUpdated)
	}
	return v
}

func yesNo(b bool) (string, Tone) {
	if b {
		return "Yes", TonePositive
	}
	return "No", ToneNegative
}
