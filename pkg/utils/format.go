package utils

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered for values that cannot be formatted (NaN, ±Inf).
const NotAvailable = "N/A"

type magnitude struct {
	threshold float64
	suffix    string
}

// magnitudes are ordered largest first so the first match is the largest
// applicable suffix.
var magnitudes = []magnitude{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatPrice renders a price in rupees. Precision shrinks as the price grows:
// 0 decimals from 1000, 1 decimal from 100, otherwise 2.
func FormatPrice(price float64) string {
	if !finite(price) {
		return NotAvailable
	}
	abs := math.Abs(price)
	places := 2
	switch {
	case abs >= 1000:
		places = 0
	case abs >= 100:
		places = 1
	}
	return signed(price, currencySymbol("INR")+groupDigits(fixed(abs, places)))
}

// FormatCurrency renders an INR amount compacted with T/B/M/K suffixes and
// two decimals, e.g. 1_500_000 -> "₹1.50M".
func FormatCurrency(amount float64) string {
	return FormatCurrencyCode(amount, "INR", 2)
}

// FormatCurrencyCode is FormatCurrency for an arbitrary currency code and precision.
func FormatCurrencyCode(amount float64, code string, decimals int) string {
	if !finite(amount) {
		return NotAvailable
	}
	if decimals < 0 {
		decimals = 0
	}
	return signed(amount, currencySymbol(code)+compact(math.Abs(amount), decimals, decimals))
}

// FormatPercentage renders x with two decimals and a leading "+" when x > 0.
func FormatPercentage(x float64) string {
	if !finite(x) {
		return NotAvailable
	}
	s := fixed(x, 2) + "%"
	if x > 0 {
		return "+" + s
	}
	return s
}

// FormatVolume compacts a quantity with the same suffix thresholds as
// FormatCurrency but without a currency symbol. Values under a thousand are
// shown as whole numbers.
func FormatVolume(volume float64) string {
	if !finite(volume) {
		return NotAvailable
	}
	return signed(volume, compact(math.Abs(volume), 2, 0))
}

// FormatNumber renders v with thousands separators and the given precision.
func FormatNumber(v float64, decimals int) string {
	if !finite(v) {
		return NotAvailable
	}
	if decimals < 0 {
		decimals = 0
	}
	return signed(v, groupDigits(fixed(math.Abs(v), decimals)))
}

// FormatSignedNumber is FormatNumber with an explicit "+" for positive values.
func FormatSignedNumber(v float64, decimals int) string {
	s := FormatNumber(v, decimals)
	if finite(v) && v > 0 {
		return "+" + s
	}
	return s
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

func compact(abs float64, suffixPlaces, plainPlaces int) string {
	for _, m := range magnitudes {
		if abs >= m.threshold {
			return fixed(abs/m.threshold, suffixPlaces) + m.suffix
		}
	}
	return fixed(abs, plainPlaces)
}

// fixed rounds half away from zero on the decimal representation, so 150.25
// becomes "150.3" rather than the binary-float "150.2".
func fixed(v float64, places int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(places))
}

// signed prefixes body with "-" when v is negative and body is not all zeros.
func signed(v float64, body string) string {
	if v < 0 && strings.ContainsAny(body, "123456789") {
		return "-" + body
	}
	return body
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	case "":
		return ""
	default:
		return strings.ToUpper(code) + " "
	}
}

func groupDigits(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
