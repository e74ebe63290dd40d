package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/etftracker/internal/assemble"
	"github.com/seenimoa/etftracker/internal/datasource"
	"github.com/seenimoa/etftracker/internal/holdings"
	"github.com/seenimoa/etftracker/internal/snapshot"
	"github.com/seenimoa/etftracker/internal/trend"
	"github.com/seenimoa/etftracker/pkg/models"
)

type fakeFetcher struct {
	bundles map[string]datasource.Bundle
	calls   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, inst models.Instrument) (datasource.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return datasource.Bundle{}, err
	}
	f.calls = append(f.calls, inst.Ticker)
	b, ok := f.bundles[inst.Ticker]
	if !ok {
		return datasource.Bundle{Profile: models.DefaultProfile()}, nil
	}
	return b, nil
}

var roster = []models.Instrument{
	{ID: 1, Ticker: "00981A", Name: "統一台股增長", Fund: models.ActiveFund{Manager: "統一投信"}},
	{ID: 2, Ticker: "0050", Name: "元大台灣50", Fund: models.PassiveFund{Index: "台灣50指數"}},
	{ID: 3, Ticker: "00999A", Name: "新基金", Fund: models.ActiveFund{Manager: "某投信"}},
}

func writePrior(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, snapshot.Save(path, []models.InstrumentRecord{
		{ID: 1, Ticker: "00981A", Holdings: []models.ReconciledHolding{
			{Stock: "台積電", Percent: 9.0, Change: "-"},
			{Stock: "鴻海", Percent: 5.0, Change: "-"},
			{Stock: "聯發科", Percent: 3.0, Change: "-"},
		}},
	}))
}

func TestRunEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "etf_data.json")
	writePrior(t, path)

	week := 7 * 24 * time.Hour
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeFetcher{bundles: map[string]datasource.Bundle{
		"00981A": {
			Holdings: []models.HoldingEntry{
				{Stock: "台積電", Percent: 9.5},
				{Stock: "鴻海", Percent: 5.0005},
				{Stock: "廣達", Percent: 2.0},
			},
			NAV:     20,
			Metrics: models.Metrics{WeeklyReturn: 1.5, YTDReturn: 25},
			Profile: models.Profile{FoundedDate: "2024/05/31", DividendFreq: "季配", Custodian: "台北富邦"},
		},
		"0050": {
			NAV:     180,
			Metrics: models.Metrics{WeeklyReturn: math.NaN(), YTDReturn: 10},
			Profile: models.DefaultProfile(),
			Candles: []models.OHLCV{
				{Timestamp: base, Close: 150.123},
				{Timestamp: base.Add(week), Close: 160},
				{Timestamp: base.Add(2 * week), Close: 180},
			},
		},
	}}

	r := &Runner{Fetcher: f, OutputPath: path, Steps: 5, Policy: holdings.DropRemoved}
	res, err := r.Run(context.Background(), roster)
	require.NoError(t, err)
	require.True(t, res.Saved)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"00981A", "0050", "00999A"}, f.calls)
	require.Len(t, res.Records, 3)

	active := res.Records[0]
	assert.Equal(t, "統一投信", active.FundManager)
	assert.Equal(t, assemble.StatusLive, active.ChangeStatus)
	assert.Equal(t, []models.ReconciledHolding{
		{Stock: "台積電", Percent: 9.5, Change: "🔺0.50%", ChangeVal: 0.5},
		{Stock: "鴻海", Percent: 5.0005, Change: "-", ChangeVal: 0},
		{Stock: "廣達", Percent: 2.0, Change: "🆕新進", ChangeVal: 2.0},
	}, active.Holdings)
	assert.Equal(t, []models.TrendPoint{
		{Label: "T-5", Value: 16}, {Label: "T-4", Value: 16.8}, {Label: "T-3", Value: 17.6},
		{Label: "T-2", Value: 18.4}, {Label: "T-1", Value: 19.2}, {Label: "T-0", Value: 20},
	}, active.PerformanceData)
	assert.Equal(t, trend.SourceSynthetic, res.Outcomes[0].TrendSource)
	assert.Equal(t, holdings.Summary{New: 1, Increased: 1, Unchanged: 1}, res.Outcomes[0].Changes)

	passive := res.Records[1]
	assert.Zero(t, passive.WeeklyReturn)
	assert.Equal(t, "台灣50指數", passive.Index)
	assert.Equal(t, models.NotAvailable, passive.FundManager)
	require.Len(t, passive.PerformanceData, 3)
	assert.Equal(t, 150.12, passive.PerformanceData[0].Value)
	assert.Equal(t, trend.SourceReal, res.Outcomes[1].TrendSource)

	missing := res.Records[2]
	assert.Equal(t, assemble.StatusNoData, missing.ChangeStatus)
	assert.Empty(t, missing.Holdings)
	assert.Empty(t, missing.PerformanceData)
	assert.Equal(t, trend.SourceNone, res.Outcomes[2].TrendSource)

	saved, err := snapshot.ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, res.Records, saved)
}

func TestRunSecondPassSeesFirstAsPrior(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etf_data.json")
	f := &fakeFetcher{bundles: map[string]datasource.Bundle{
		"0050": {Holdings: []models.HoldingEntry{{Stock: "台積電", Percent: 50}}, NAV: 100, Profile: models.DefaultProfile()},
	}}
	r := &Runner{Fetcher: f, OutputPath: path}
	only := roster[1:2]

	res, err := r.Run(context.Background(), only)
	require.NoError(t, err)
	assert.Equal(t, holdings.MarkerNew, res.Records[0].Holdings[0].Change)
	assert.False(t, res.Outcomes[0].HadPrior)

	res, err = r.Run(context.Background(), only)
	require.NoError(t, err)
	assert.Equal(t, holdings.MarkerUnchanged, res.Records[0].Holdings[0].Change)
	assert.True(t, res.Outcomes[0].HadPrior)
}

func TestRunDryRunDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etf_data.json")
	r := &Runner{Fetcher: &fakeFetcher{}, OutputPath: path, DryRun: true}

	res, err := r.Run(context.Background(), roster)
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Len(t, res.Records, 3)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRunEmptyRosterWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etf_data.json")
	r := &Runner{Fetcher: &fakeFetcher{}, OutputPath: path}

	_, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestRunStopsOnCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etf_data.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Fetcher: &fakeFetcher{}, OutputPath: path}
	_, err := r.Run(ctx, roster)
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunDelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	f := &fakeFetcher{}
	r := &Runner{Fetcher: f, OutputPath: filepath.Join(t.TempDir(), "x.json"), Delay: time.Hour}
	_, err := r.Run(ctx, roster)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"00981A"}, f.calls)
}

func TestRunRequiresFetcher(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), roster)
	assert.Error(t, err)
}
