package datasource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/phuslu/log"

	"github.com/seenimoa/etftracker/pkg/models"
	"github.com/seenimoa/etftracker/pkg/utils"
)

// DefaultMoneyDJBaseURL is the root of the MoneyDJ ETF detail pages.
const DefaultMoneyDJBaseURL = "https://www.moneydj.com/ETF/X/Basic"

// MoneyDJ detail pages, addressed as <base>/<page>.xdjhtm?etfid=<id>.
const (
	pageNAV         = "Basic0003"
	pageProfile     = "Basic0004"
	pageReturns     = "Basic0006"
	pageHoldings    = "Basic0007"
	pagePerformance = "Basic0008"
)

// notFoundMarker appears on MoneyDJ pages for unknown funds.
const notFoundMarker = "查無"

// NAV candidates outside this open interval are column noise, not prices.
const (
	navMin = 5.0
	navMax = 2000.0
)

var (
	datePattern     = regexp.MustCompile(`\d{4}/\d{2}/\d{2}`)
	weeklyPattern   = regexp.MustCompile(`週.*?(-?\d+\.\d+)%`)
	ytdPattern      = regexp.MustCompile(`今年以來.*?(-?\d+\.\d+)%`)
	stripTagsPolicy = bluemonday.StrictPolicy()
	holdingNameCols = []string{"名稱", "股票", "個股"}
	holdingPctCols  = []string{"%", "比"}
	perfPeriodCols  = []string{"六個月", "成立", "三個月"}
	perfRowLabels   = []string{"淨值", "市價"}
	ytdColumns      = []string{"今年以來", "成立日", "成立至今"}
	custodianLabels = []string{"保管機構", "保管銀行"}
)

// MoneyDJ scrapes fund data from the MoneyDJ ETF detail pages.
type MoneyDJ struct {
	client  *Client
	baseURL string
	topN    int
}

// NewMoneyDJ creates a MoneyDJ scraper. topN caps the holdings returned.
func NewMoneyDJ(client *Client, baseURL string, topN int) *MoneyDJ {
	if baseURL == "" {
		baseURL = DefaultMoneyDJBaseURL
	}
	if topN <= 0 {
		topN = 10
	}
	return &MoneyDJ{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		topN:    topN,
	}
}

// Name returns the data source name.
func (m *MoneyDJ) Name() string { return "MoneyDJ" }

// --- Public methods ---

// Holdings returns the top constituents listed on the holdings page.
// Rows with an unparsable weight are kept with weight 0.
func (m *MoneyDJ) Holdings(ctx context.Context, ticker string) ([]models.HoldingEntry, error) {
	doc, err := m.fetchDoc(ctx, pageHoldings, ticker)
	if err != nil {
		return nil, err
	}

	for _, t := range extractTables(doc) {
		joined := strings.Join(t.header, "")
		if !containsAny(joined, holdingNameCols...) || !containsAny(joined, holdingPctCols...) {
			continue
		}

		nameCol := t.columnMatching(holdingNameCols...)
		pctCol := t.columnMatching(holdingPctCols...)
		if nameCol < 0 || pctCol < 0 {
			return []models.HoldingEntry{}, nil
		}

		rows := t.rows
		if len(rows) > m.topN {
			rows = rows[:m.topN]
		}
		holdings := make([]models.HoldingEntry, 0, len(rows))
		for _, row := range rows {
			name := cell(row, nameCol)
			if name == "" || name == "nan" {
				continue
			}
			holdings = append(holdings, models.HoldingEntry{
				Stock:   name,
				Percent: utils.ParseNumberOr(cell(row, pctCol), 0),
			})
		}
		log.Debug().Str("ticker", ticker).Int("holdings", len(holdings)).Msg("moneydj holdings")
		return holdings, nil
	}

	return nil, fmt.Errorf("moneydj holdings %s: %w", ticker, ErrTableNotFound)
}

// LatestNAV searches the NAV and profile pages for a row mentioning 淨值
// and returns its first plausible price.
func (m *MoneyDJ) LatestNAV(ctx context.Context, ticker string) (float64, error) {
	var lastErr error = ErrNoData
	for _, page := range []string{pageNAV, pageProfile} {
		doc, err := m.fetchDoc(ctx, page, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			lastErr = err
			continue
		}
		for _, t := range extractTables(doc) {
			for _, row := range t.allRows() {
				if !strings.Contains(strings.Join(row, ""), "淨值") {
					continue
				}
				for _, c := range row {
					if v, ok := utils.ParseNumber(c); ok && v > navMin && v < navMax {
						return v, nil
					}
				}
			}
		}
	}
	return 0, fmt.Errorf("moneydj nav %s: %w", ticker, lastErr)
}

// Performance returns the weekly and YTD returns from the performance
// table, falling back to a text search of the returns page. For funds
// younger than a year the since-inception return stands in for YTD.
func (m *MoneyDJ) Performance(ctx context.Context, ticker string) (models.Metrics, error) {
	metrics, err := m.performanceTable(ctx, ticker)
	if err == nil {
		log.Debug().Str("ticker", ticker).
			Float64("weekly", metrics.WeeklyReturn).
			Float64("ytd", metrics.YTDReturn).
			Msg("moneydj performance")
		return metrics, nil
	}
	if ctx.Err() != nil {
		return models.Metrics{}, ctx.Err()
	}

	log.Debug().Err(err).Str("ticker", ticker).Msg("performance table unavailable, trying returns page")
	fallback, ferr := m.performanceText(ctx, ticker)
	if ferr != nil {
		return models.Metrics{}, fmt.Errorf("moneydj performance %s: %w", ticker, errors.Join(err, ferr))
	}
	return fallback, nil
}

// Profile returns inception date, distribution frequency and custodian.
// Fields not found on the page stay models.NotAvailable.
func (m *MoneyDJ) Profile(ctx context.Context, ticker string) (models.Profile, error) {
	profile := models.DefaultProfile()

	doc, err := m.fetchDoc(ctx, pageProfile, ticker)
	if err != nil {
		return profile, err
	}

	for _, t := range extractTables(doc) {
		for _, row := range t.allRows() {
			for i, c := range row {
				if i+1 >= len(row) {
					break
				}
				next := row[i+1]
				if next == "" {
					continue
				}
				switch {
				case strings.Contains(c, "成立日期"):
					if profile.FoundedDate == models.NotAvailable {
						if d := datePattern.FindString(next); d != "" {
							profile.FoundedDate = d
						} else {
							profile.FoundedDate = next
						}
					}
				case strings.Contains(c, "配息頻率"):
					if profile.DividendFreq == models.NotAvailable {
						profile.DividendFreq = next
					}
				case containsAny(c, custodianLabels...):
					if profile.Custodian == models.NotAvailable {
						profile.Custodian = next
					}
				}
			}
		}
	}

	if profile.FoundedDate != models.NotAvailable {
		log.Debug().Str("ticker", ticker).
			Str("founded", profile.FoundedDate).
			Str("dividend", profile.DividendFreq).
			Msg("moneydj profile")
	}
	return profile, nil
}

// --- Internal helpers ---

func (m *MoneyDJ) performanceTable(ctx context.Context, ticker string) (models.Metrics, error) {
	var metrics models.Metrics

	doc, err := m.fetchDoc(ctx, pagePerformance, ticker)
	if err != nil {
		return metrics, err
	}

	for _, t := range extractTables(doc) {
		joined := strings.Join(t.header, "")
		if !strings.Contains(joined, "一週") || !containsAny(joined, perfPeriodCols...) {
			continue
		}
		if len(t.rows) == 0 {
			return metrics, fmt.Errorf("performance table: %w", ErrNoData)
		}

		row := t.rows[0]
		for _, r := range t.rows {
			if containsAny(cell(r, 0), perfRowLabels...) {
				row = r
				break
			}
		}

		if v, ok := utils.ParseNumber(cell(row, t.column("一週"))); ok {
			metrics.WeeklyReturn = v
		}
		for _, name := range ytdColumns {
			idx := t.column(name)
			if idx < 0 {
				continue
			}
			if v, ok := utils.ParseNumber(cell(row, idx)); ok {
				metrics.YTDReturn = v
			}
			break
		}
		return metrics, nil
	}

	return metrics, ErrTableNotFound
}

func (m *MoneyDJ) performanceText(ctx context.Context, ticker string) (models.Metrics, error) {
	var metrics models.Metrics

	body, err := m.client.Get(ctx, m.pageURL(pageReturns, ticker), nil)
	if err != nil {
		return metrics, err
	}

	text := stripTagsPolicy.SanitizeBytes(body)
	found := false
	if match := weeklyPattern.FindSubmatch(text); match != nil {
		if v, ok := utils.ParseNumber(string(match[1])); ok {
			metrics.WeeklyReturn = v
			found = true
		}
	}
	if match := ytdPattern.FindSubmatch(text); match != nil {
		if v, ok := utils.ParseNumber(string(match[1])); ok {
			metrics.YTDReturn = v
			found = true
		}
	}
	if !found {
		return metrics, ErrNoData
	}
	return metrics, nil
}

func (m *MoneyDJ) pageURL(page, ticker string) string {
	return fmt.Sprintf("%s/%s.xdjhtm?etfid=%s", m.baseURL, page, utils.ToMarketID(ticker))
}

// fetchDoc downloads and parses one detail page.
func (m *MoneyDJ) fetchDoc(ctx context.Context, page, ticker string) (*goquery.Document, error) {
	body, err := m.client.Get(ctx, m.pageURL(page, ticker), map[string]string{
		"Accept": "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("moneydj %s %s: %w", page, ticker, err)
	}
	if bytes.Contains(body, []byte(notFoundMarker)) {
		return nil, fmt.Errorf("moneydj %s %s: %w", page, ticker, ErrNotFound)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse moneydj HTML: %w", err)
	}
	return doc, nil
}
