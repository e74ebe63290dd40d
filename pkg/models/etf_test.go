package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentCategoryAccessors(t *testing.T) {
	active := Instrument{Ticker: "00981A", Fund: ActiveFund{Manager: "統一投信"}}
	assert.Equal(t, CategoryActive, active.Category())
	assert.Equal(t, "統一投信", active.Manager())
	assert.Empty(t, active.Index())

	passive := Instrument{Ticker: "0050", Fund: PassiveFund{Index: "台灣50指數"}}
	assert.Equal(t, CategoryPassive, passive.Category())
	assert.Empty(t, passive.Manager())
	assert.Equal(t, "台灣50指數", passive.Index())

	bare := Instrument{Ticker: "0056"}
	assert.Equal(t, CategoryPassive, bare.Category())
	assert.Empty(t, bare.Manager())
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, NotAvailable, p.FoundedDate)
	assert.Equal(t, NotAvailable, p.DividendFreq)
	assert.Equal(t, NotAvailable, p.Custodian)
}

func TestInstrumentRecordJSONFieldNames(t *testing.T) {
	rec := InstrumentRecord{
		ID: 1, Ticker: "00981A", Name: "統一台股增長", Type: CategoryActive, Manager: "統一投信",
		Holdings:        []ReconciledHolding{{Stock: "台積電", Percent: 9.5, Change: "🔺0.50%", ChangeVal: 0.5}},
		PerformanceData: []TrendPoint{{Label: "T-0", Value: 20}},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"id", "ticker", "name", "type", "manager", "ytdReturn", "weeklyReturn",
		"latestNav", "changeSinceLast", "lastDividend", "exDate", "fundManager",
		"changeStatus", "holdings", "performanceData", "foundedDate",
		"dividendFreq", "custodianBank",
	} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "index")

	h := m["holdings"].([]any)[0].(map[string]any)
	assert.Equal(t, "🔺0.50%", h["change"])
	assert.Equal(t, 0.5, h["changeVal"])

	p := m["performanceData"].([]any)[0].(map[string]any)
	assert.Equal(t, "T-0", p["month"])
	assert.Equal(t, 20.0, p["return"])
}

func TestParseTimeframe(t *testing.T) {
	assert.Equal(t, Timeframe1Day, ParseTimeframe("1d"))
	assert.Equal(t, Timeframe1Week, ParseTimeframe("1wk"))
	assert.Equal(t, Timeframe1Mon, ParseTimeframe("1mo"))
	assert.Equal(t, Timeframe1Week, ParseTimeframe("bogus"))
}
