package entity

import "strings"

// Signal is an AI-generated trading recommendation for one ticker.
type Signal struct {
	Ticker      string   `json:"ticker"`
	Signal      string   `json:"signal"`
	Signals     []string `json:"signals"`
	Reasoning   []string `json:"reasoning"`
	GeneratedAt string   `json:"generated_at"`
}

// Action normalizes the signal label to BUY, SELL or HOLD. Labels such as
// "STRONG_BUY" keep their direction.
func (s Signal) Action() string {
	label := strings.ToUpper(s.Signal)
	switch {
	case strings.Contains(label, "BUY"):
		return "BUY"
	case strings.Contains(label, "SELL"):
		return "SELL"
	default:
		return "HOLD"
	}
}
