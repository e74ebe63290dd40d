package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/etftracker/pkg/models"
)

func TestYfInterval(t *testing.T) {
	tests := []struct {
		tf   models.Timeframe
		want string
	}{
		{models.Timeframe1Day, "1d"},
		{models.Timeframe1Week, "1wk"},
		{models.Timeframe1Mon, "1mo"},
		{models.Timeframe("unknown"), "1wk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, yfInterval(tt.tf), "yfInterval(%q)", tt.tf)
	}
}

func TestParseYFCandlesEmpty(t *testing.T) {
	assert.Nil(t, parseYFCandles(yfChartResult{}))
}

func TestParseYFCandles(t *testing.T) {
	open := 100.0
	high := 105.0
	low := 98.0
	close_ := 103.0
	vol := int64(1000)
	adj := 102.5

	result := yfChartResult{
		Timestamp: []int64{1700000000, 1700086400},
		Indicators: yfIndicators{
			Quote: []yfOHLCV{
				{
					Open:   []*float64{&open, &open},
					High:   []*float64{&high, &high},
					Low:    []*float64{&low, &low},
					Close:  []*float64{&close_, &close_},
					Volume: []*int64{&vol, &vol},
				},
			},
			AdjClose: []yfAdjClose{
				{AdjClose: []*float64{&adj, &adj}},
			},
		},
	}

	candles := parseYFCandles(result)
	require.Len(t, candles, 2)

	c := candles[0]
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 105.0, c.High)
	assert.Equal(t, 98.0, c.Low)
	assert.Equal(t, 103.0, c.Close)
	assert.Equal(t, int64(1000), c.Volume)
	assert.Equal(t, 102.5, c.AdjClose)
	assert.Equal(t, int64(1700000000), c.Timestamp.Unix())
}

func TestParseYFCandlesNilPointers(t *testing.T) {
	// Holidays come back as nulls.
	open := 100.0
	result := yfChartResult{
		Timestamp: []int64{1700000000},
		Indicators: yfIndicators{
			Quote: []yfOHLCV{
				{
					Open:   []*float64{&open},
					High:   []*float64{nil},
					Low:    []*float64{nil},
					Close:  []*float64{nil},
					Volume: []*int64{nil},
				},
			},
		},
	}

	candles := parseYFCandles(result)
	require.Len(t, candles, 1)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Zero(t, candles[0].High)
	assert.Zero(t, candles[0].Close)
}

const chartFixture = `{"chart":{"result":[{
  "meta":{"symbol":"0050.TW","currency":"TWD","regularMarketPrice":152.3},
  "timestamp":[1714060800,1714665600,1715270400],
  "indicators":{"quote":[{"open":[140,142,150],"high":[143,151,153],"low":[139,141,149],
    "close":[142.5,null,152.3],"volume":[100,200,300]}]}
}],"error":null}}`

func TestYFinanceHistory(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer srv.Close()

	yf := NewYFinance(NewClient(ClientOptions{}), srv.URL)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	yf.now = func() time.Time { return now }

	candles, err := yf.History(context.Background(), "0050", 180*24*time.Hour, models.Timeframe1Week)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 142.5, candles[0].Close)
	assert.Zero(t, candles[1].Close)
	assert.Equal(t, 152.3, candles[2].Close)

	assert.Equal(t, "/v8/finance/chart/0050.TW", gotPath)
	assert.True(t, strings.Contains(gotQuery, "interval=1wk"))
	assert.True(t, strings.Contains(gotQuery, "period2=1715342400"))
}

func TestYFinanceChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	yf := NewYFinance(NewClient(ClientOptions{}), srv.URL)
	_, err := yf.History(context.Background(), "9999", time.Hour, models.Timeframe1Day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYFinanceEmptyResultIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	yf := NewYFinance(NewClient(ClientOptions{}), srv.URL)
	_, err := yf.History(context.Background(), "9999", time.Hour, models.Timeframe1Day)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYFinanceName(t *testing.T) {
	assert.Equal(t, "Yahoo Finance", NewYFinance(nil, "").Name())
}
