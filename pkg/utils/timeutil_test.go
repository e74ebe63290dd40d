package utils

import (
	"testing"
	"time"
)

func TestNowTaipei(t *testing.T) {
	now := NowTaipei()
	if now.Location().String() != "Asia/Taipei" && now.Location().String() != "CST" {
		t.Errorf("NowTaipei() location = %s, want Asia/Taipei or CST", now.Location().String())
	}
}

func TestFormatDateTaipei(t *testing.T) {
	// 20:00 UTC is already the next day in Taipei.
	ts := time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)
	if got := FormatDateTaipei(ts); got != "2026-01-06" {
		t.Errorf("FormatDateTaipei = %q, want 2026-01-06", got)
	}
}

func TestChartLabel(t *testing.T) {
	ts := time.Date(2026, 12, 1, 1, 0, 0, 0, Taipei)
	if got := ChartLabel(ts); got != "12/01" {
		t.Errorf("ChartLabel = %q, want 12/01", got)
	}
}

func TestIsTradingDay(t *testing.T) {
	wed := time.Date(2026, 2, 18, 10, 0, 0, 0, Taipei)
	if !IsTradingDay(wed) {
		t.Error("Wednesday should be a trading day")
	}
	sat := time.Date(2026, 2, 21, 10, 0, 0, 0, Taipei)
	if IsTradingDay(sat) {
		t.Error("Saturday should not be a trading day")
	}
}
