package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/etftracker/pkg/models"
)

// Bundle is everything fetched for one fund. Fields whose source failed
// hold their neutral defaults: no holdings, zero NAV and metrics, an
// all-N/A profile, no candles.
type Bundle struct {
	Holdings           []models.HoldingEntry
	HoldingsOverridden bool
	NAV                float64
	Metrics            models.Metrics
	Profile            models.Profile
	Candles            []models.OHLCV
}

// Sources groups the collaborators an Aggregator draws from. A nil
// source is skipped.
type Sources struct {
	Holdings HoldingsSource
	NAV      NAVSource
	Metrics  MetricsSource
	Profile  ProfileSource
	Series   SeriesSource
}

// HistoryOptions controls the price-history request.
type HistoryOptions struct {
	Enabled   bool
	Lookback  time.Duration
	Timeframe models.Timeframe
}

// Aggregator fetches the inputs of one fund from every source concurrently.
type Aggregator struct {
	src       Sources
	history   HistoryOptions
	overrides map[string][]models.HoldingEntry
}

// NewAggregator creates an Aggregator over src.
func NewAggregator(src Sources, history HistoryOptions) *Aggregator {
	return &Aggregator{
		src:       src,
		history:   history,
		overrides: make(map[string][]models.HoldingEntry),
	}
}

// NewDefaultAggregator wires MoneyDJ for fund data and Yahoo Finance for
// price history.
func NewDefaultAggregator(mdj *MoneyDJ, yf *YFinance, history HistoryOptions) *Aggregator {
	src := Sources{
		Holdings: mdj,
		NAV:      mdj,
		Metrics:  mdj,
		Profile:  mdj,
	}
	if yf != nil {
		src.Series = yf
	}
	return NewAggregator(src, history)
}

// SetOverride pins the holdings of ticker (matched exactly) to holdings,
// bypassing the holdings source.
func (a *Aggregator) SetOverride(ticker string, holdings []models.HoldingEntry) {
	a.overrides[ticker] = holdings
}

// Fetch gathers the Bundle for inst. Individual source failures are
// logged and leave the matching field at its default; the only error
// returned is the context's.
func (a *Aggregator) Fetch(ctx context.Context, inst models.Instrument) (Bundle, error) {
	b := Bundle{Profile: models.DefaultProfile()}
	ticker := inst.Ticker

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	if pinned, ok := a.overrides[ticker]; ok {
		b.Holdings = append([]models.HoldingEntry(nil), pinned...)
		b.HoldingsOverridden = true
	} else if a.src.Holdings != nil {
		g.Go(func() error {
			h, err := a.src.Holdings.Holdings(gctx, ticker)
			if err != nil {
				warn(ticker, "holdings", a.src.Holdings, err)
				return nil
			}
			mu.Lock()
			b.Holdings = h
			mu.Unlock()
			return nil
		})
	}

	if a.src.NAV != nil {
		g.Go(func() error {
			nav, err := a.src.NAV.LatestNAV(gctx, ticker)
			if err != nil {
				warn(ticker, "nav", a.src.NAV, err)
				return nil
			}
			mu.Lock()
			b.NAV = nav
			mu.Unlock()
			return nil
		})
	}

	if a.src.Metrics != nil {
		g.Go(func() error {
			m, err := a.src.Metrics.Performance(gctx, ticker)
			if err != nil {
				warn(ticker, "performance", a.src.Metrics, err)
				return nil
			}
			mu.Lock()
			b.Metrics = m
			mu.Unlock()
			return nil
		})
	}

	if a.src.Profile != nil {
		g.Go(func() error {
			p, err := a.src.Profile.Profile(gctx, ticker)
			if err != nil {
				warn(ticker, "profile", a.src.Profile, err)
				return nil
			}
			mu.Lock()
			b.Profile = p
			mu.Unlock()
			return nil
		})
	}

	if a.src.Series != nil && a.history.Enabled {
		g.Go(func() error {
			candles, err := a.src.Series.History(gctx, ticker, a.history.Lookback, a.history.Timeframe)
			if err != nil {
				warn(ticker, "history", a.src.Series, err)
				return nil
			}
			mu.Lock()
			b.Candles = candles
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return b, err
	}
	return b, nil
}

func warn(ticker, what string, src any, err error) {
	log.Warn().Err(err).
		Str("ticker", ticker).
		Str("source", what).
		Str("provider", providerName(src)).
		Msg("fetch failed, using default")
}

// providerName labels src by its Name method, or by its type.
func providerName(src any) string {
	if n, ok := src.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", src)
}
