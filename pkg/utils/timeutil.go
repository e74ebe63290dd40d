package utils

import (
	"time"
)

// Taipei is the Asia/Taipei location (UTC+8).
var Taipei *time.Location

func init() {
	var err error
	Taipei, err = time.LoadLocation("Asia/Taipei")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		Taipei = time.FixedZone("CST", 8*60*60)
	}
}

// NowTaipei returns the current time in Taipei.
func NowTaipei() time.Time {
	return time.Now().In(Taipei)
}

// FormatDateTaipei formats a time.Time to "2006-01-02" in Taipei time.
func FormatDateTaipei(t time.Time) string {
	return t.In(Taipei).Format("2006-01-02")
}

// FormatDateTimeTaipei formats a time.Time to "2006-01-02 15:04:05 CST".
func FormatDateTimeTaipei(t time.Time) string {
	return t.In(Taipei).Format("2006-01-02 15:04:05") + " CST"
}

// ChartLabel formats a candle timestamp as the "MM/DD" label used on the
// performance chart.
func ChartLabel(t time.Time) string {
	return t.In(Taipei).Format("01/02")
}

// IsTradingDay reports whether t falls on a TWSE weekday session.
// Exchange holidays are not modelled.
func IsTradingDay(t time.Time) bool {
	wd := t.In(Taipei).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
