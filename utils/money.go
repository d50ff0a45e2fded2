package utils

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// zero-decimal currencies are stored in whole units by the billing provider
var zeroDecimal = map[string]bool{
	"jpy": true,
	"krw": true,
}

// FormatCurrency renders a minor-unit amount, e.g. 2900 usd -> "$29.00".
func FormatCurrency(cents int64, currency string) string {
	cur := strings.ToLower(strings.TrimSpace(currency))
	if cur == "" {
		cur = "usd"
	}
	if zeroDecimal[cur] {
		return fmt.Sprintf("%d %s", cents, strings.ToUpper(cur))
	}

	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	amount := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if sym, ok := currencySymbols[cur]; ok {
		return sign + sym + amount
	}
	return sign + amount + " " + strings.ToUpper(cur)
}
