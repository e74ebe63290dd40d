// Package pipeline runs one dataset update: it loads the prior snapshot,
// processes every instrument in roster order and persists the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/seenimoa/etftracker/internal/assemble"
	"github.com/seenimoa/etftracker/internal/datasource"
	"github.com/seenimoa/etftracker/internal/holdings"
	"github.com/seenimoa/etftracker/internal/snapshot"
	"github.com/seenimoa/etftracker/internal/trend"
	"github.com/seenimoa/etftracker/pkg/models"
)

// Fetcher gathers the raw inputs of one instrument. Errors are reserved
// for cancellation; partial failures come back as defaults in the Bundle.
type Fetcher interface {
	Fetch(ctx context.Context, inst models.Instrument) (datasource.Bundle, error)
}

// Runner executes the update.
type Runner struct {
	Fetcher    Fetcher
	OutputPath string                 // prior snapshot and output dataset
	Steps      int                    // synthetic trend steps, <= 0 means trend.DefaultSteps
	Policy     holdings.RemovedPolicy // handling of holdings that dropped out
	Delay      time.Duration          // pause between instruments
	DryRun     bool                   // skip persisting
}

// Outcome summarises what happened to one instrument.
type Outcome struct {
	Ticker      string
	Status      string
	TrendSource trend.Source
	HadPrior    bool // the prior snapshot carried this ticker
	Changes     holdings.Summary
}

// Result is the product of one Run.
type Result struct {
	RunID    string
	Records  []models.InstrumentRecord
	Outcomes []Outcome
	Saved    bool
	Elapsed  time.Duration
}

// Run processes instruments sequentially and, unless DryRun is set, saves
// the records to OutputPath. Only cancellation or a failed save is an error.
func (r *Runner) Run(ctx context.Context, instruments []models.Instrument) (*Result, error) {
	if r.Fetcher == nil {
		return nil, errors.New("pipeline: no fetcher configured")
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := log.DefaultLogger
	logger.Context = log.NewContext(nil).Str("run", runID).Value()

	path := r.OutputPath
	if path == "" {
		path = snapshot.DefaultPath
	}

	store := snapshot.Load(path)
	logger.Info().
		Int("instruments", len(instruments)).
		Int("prior", store.Len()).
		Str("output", path).
		Msg("update started")

	res := &Result{
		RunID:    runID,
		Records:  make([]models.InstrumentRecord, 0, len(instruments)),
		Outcomes: make([]Outcome, 0, len(instruments)),
	}

	for i, inst := range instruments {
		if i > 0 && r.Delay > 0 {
			if err := sleep(ctx, r.Delay); err != nil {
				return res, err
			}
		}

		rec, outcome, err := r.process(ctx, inst, store)
		if err != nil {
			return res, fmt.Errorf("process %s: %w", inst.Ticker, err)
		}
		res.Records = append(res.Records, rec)
		res.Outcomes = append(res.Outcomes, outcome)

		logger.Info().
			Int("id", inst.ID).
			Str("ticker", inst.Ticker).
			Str("status", outcome.Status).
			Str("trend", string(outcome.TrendSource)).
			Bool("prior", outcome.HadPrior).
			Int("holdings", len(rec.Holdings)).
			Int("new", outcome.Changes.New).
			Int("up", outcome.Changes.Increased).
			Int("down", outcome.Changes.Decreased).
			Msg("instrument done")
	}

	assemble.SanitizeRecords(res.Records)

	if r.DryRun {
		logger.Info().Msg("dry run, dataset not written")
	} else {
		if err := snapshot.Save(path, res.Records); err != nil {
			return res, fmt.Errorf("save dataset: %w", err)
		}
		res.Saved = true
	}

	res.Elapsed = time.Since(start)
	logger.Info().
		Int("records", len(res.Records)).
		Dur("elapsed", res.Elapsed).
		Bool("saved", res.Saved).
		Msg("update finished")
	return res, nil
}

func (r *Runner) process(ctx context.Context, inst models.Instrument, store *snapshot.Store) (models.InstrumentRecord, Outcome, error) {
	bundle, err := r.Fetcher.Fetch(ctx, inst)
	if err != nil {
		return models.InstrumentRecord{}, Outcome{}, err
	}

	reconciled := holdings.Reconcile(bundle.Holdings, store.Prior(inst.Ticker), r.Policy)
	real := trend.FromCandles(bundle.Candles)
	series, src := trend.BuildWithSource(real, bundle.NAV, bundle.Metrics.YTDReturn, r.Steps)

	rec := assemble.Assemble(assemble.Input{
		Instrument: inst,
		LatestNAV:  bundle.NAV,
		Metrics:    bundle.Metrics,
		Profile:    bundle.Profile,
		Holdings:   reconciled,
		Trend:      series,
	})

	return rec, Outcome{
		Ticker:      inst.Ticker,
		Status:      rec.ChangeStatus,
		TrendSource: src,
		HadPrior:    store.Has(inst.Ticker),
		Changes:     holdings.Summarize(reconciled),
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
