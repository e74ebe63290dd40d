package utils

import "strings"

// Yahoo Finance and MoneyDJ both address TWSE listings as "<code>.TW".
const twseSuffix = ".TW"

// NormalizeTicker trims, upper-cases and strips any exchange suffix,
// e.g. " 00981a.tw " → "00981A".
func NormalizeTicker(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	ticker = strings.TrimSuffix(ticker, ".TWO")
	ticker = strings.TrimSuffix(ticker, twseSuffix)
	return ticker
}

// ToMarketID converts a roster ticker into the "<code>.TW" identifier used
// by the upstream pages and the chart API.
func ToMarketID(ticker string) string {
	return NormalizeTicker(ticker) + twseSuffix
}

// IsActiveTicker reports whether a TWSE ETF code carries the "A" suffix
// reserved for actively managed funds.
func IsActiveTicker(ticker string) bool {
	return strings.HasSuffix(NormalizeTicker(ticker), "A")
}
