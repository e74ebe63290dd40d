// Package models defines the shared data types of etftracker.
package models

import "time"

// OHLCV represents a single candlestick (Open-High-Low-Close-Volume).
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// Timeframe represents the sampling interval of a price series.
type Timeframe string

const (
	Timeframe1Day  Timeframe = "1d"
	Timeframe1Week Timeframe = "1w"
	Timeframe1Mon  Timeframe = "1M"
)

// ParseTimeframe maps config strings such as "1wk" or "1mo" to a Timeframe.
// Unknown values yield Timeframe1Week.
func ParseTimeframe(s string) Timeframe {
	switch s {
	case "1d", "day", "daily":
		return Timeframe1Day
	case "1mo", "1M", "month", "monthly":
		return Timeframe1Mon
	default:
		return Timeframe1Week
	}
}
