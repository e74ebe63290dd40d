package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/etftracker/pkg/models"
	"github.com/seenimoa/etftracker/pkg/utils"
)

// DefaultYFinanceBaseURL is the Yahoo Finance query host.
const DefaultYFinanceBaseURL = "https://query1.finance.yahoo.com"

// YFinance reads closing-price history from the Yahoo Finance chart API.
type YFinance struct {
	client  *Client
	baseURL string
	now     func() time.Time
}

// NewYFinance creates a Yahoo Finance source. An empty baseURL selects
// DefaultYFinanceBaseURL.
func NewYFinance(client *Client, baseURL string) *YFinance {
	if baseURL == "" {
		baseURL = DefaultYFinanceBaseURL
	}
	return &YFinance{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// History returns candles covering the lookback window ending now.
func (y *YFinance) History(ctx context.Context, ticker string, lookback time.Duration, tf models.Timeframe) ([]models.OHLCV, error) {
	to := y.now()
	return y.GetHistoricalData(ctx, ticker, to.Add(-lookback), to, tf)
}

// GetHistoricalData returns OHLCV candles from the Yahoo Finance chart API.
func (y *YFinance) GetHistoricalData(ctx context.Context, ticker string, from, to time.Time, tf models.Timeframe) ([]models.OHLCV, error) {
	yfTicker := utils.ToMarketID(ticker)

	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		y.baseURL, yfTicker, from.Unix(), to.Unix(), yfInterval(tf),
	)

	data, err := y.client.Get(ctx, url, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yfinance chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}

	candles := parseYFCandles(resp.Chart.Result[0])
	log.Debug().Str("ticker", yfTicker).Int("candles", len(candles)).Msg("yfinance history")
	return candles, nil
}

// --- Helpers ---

func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).In(utils.Taipei),
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			c.Close = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if i < len(adjCloses) && adjCloses[i] != nil {
			c.AdjClose = *adjCloses[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func yfInterval(tf models.Timeframe) string {
	switch tf {
	case models.Timeframe1Day:
		return "1d"
	case models.Timeframe1Mon:
		return "1mo"
	default:
		return "1wk"
	}
}
