// Package trend builds the performance series plotted for each fund.
//
// A real closing-price series is preferred. When none is available the
// series is synthesised by interpolating linearly from the value implied by
// the year-to-date return up to the latest NAV.
package trend

import (
	"fmt"
	"math"
	"time"

	"github.com/seenimoa/etftracker/pkg/models"
	"github.com/seenimoa/etftracker/pkg/utils"
)

// DefaultSteps is the number of interpolation intervals of a synthetic
// series; it yields DefaultSteps+1 points.
const DefaultSteps = 5

// minRealPoints is the shortest real series worth plotting.
const minRealPoints = 2

// minGrowthFactor bounds how close 1+ytd/100 may get to zero before the
// implied start value is treated as undefined. At 1e-3 (a YTD loss of 99.9%
// or worse) the start would exceed 1000x the latest value.
const minGrowthFactor = 1e-3

// Source tells which path produced a series.
type Source string

const (
	SourceReal      Source = "real"
	SourceSynthetic Source = "synthetic"
	SourceNone      Source = "none"
)

// Build returns real unchanged when it holds at least two points. Otherwise,
// if ytdPct is non-zero, it synthesises steps+1 points from the start value
// implied by latest and ytdPct; with no YTD figure it returns an empty series.
func Build(real []models.TrendPoint, latest, ytdPct float64, steps int) []models.TrendPoint {
	series, _ := BuildWithSource(real, latest, ytdPct, steps)
	return series
}

// BuildWithSource is Build that also reports which path was taken.
func BuildWithSource(real []models.TrendPoint, latest, ytdPct float64, steps int) ([]models.TrendPoint, Source) {
	if len(real) >= minRealPoints {
		return real, SourceReal
	}
	if ytdPct == 0 {
		return []models.TrendPoint{}, SourceNone
	}
	return Synthesize(latest, ytdPct, steps), SourceSynthetic
}

// Synthesize interpolates from StartValue(latest, ytdPct) to latest.
// Labels count down from "T-<steps>" to "T-0".
func Synthesize(latest, ytdPct float64, steps int) []models.TrendPoint {
	if steps <= 0 {
		steps = DefaultSteps
	}
	latest = utils.Finite(latest)
	start := StartValue(latest, ytdPct)

	points := make([]models.TrendPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		v := start + (latest-start)*(float64(i)/float64(steps))
		points = append(points, models.TrendPoint{
			Label: fmt.Sprintf("T-%d", steps-i),
			Value: utils.Round2(v),
		})
	}
	return points
}

// StartValue returns latest / (1 + ytdPct/100). A denominator within
// minGrowthFactor of zero, or any non-finite result, is clamped to 0.
func StartValue(latest, ytdPct float64) float64 {
	denom := 1 + ytdPct/100
	if math.Abs(denom) < minGrowthFactor {
		return 0
	}
	return utils.Finite(latest / denom)
}

// FromCandles converts closing prices into chart points labelled by the
// candle date ("MM/DD"). It returns nil when fewer than two candles carry a
// usable close, so callers fall back to Synthesize.
func FromCandles(candles []models.OHLCV) []models.TrendPoint {
	return FromCandlesWithLabel(candles, utils.ChartLabel)
}

// FromCandlesWithLabel is FromCandles with a custom label function.
func FromCandlesWithLabel(candles []models.OHLCV, label func(time.Time) string) []models.TrendPoint {
	points := make([]models.TrendPoint, 0, len(candles))
	for _, c := range candles {
		if !utils.IsFinite(c.Close) || c.Close == 0 {
			continue
		}
		points = append(points, models.TrendPoint{
			Label: label(c.Timestamp),
			Value: utils.Round2(c.Close),
		})
	}
	if len(points) < minRealPoints {
		return nil
	}
	return points
}
