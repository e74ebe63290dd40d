package assemble

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/etftracker/pkg/models"
)

func activeInstrument() models.Instrument {
	return models.Instrument{
		ID:     1,
		Ticker: "00981A",
		Name:   "主動統一台股成長",
		Fund:   models.ActiveFund{Manager: "統一投信"},
	}
}

func passiveInstrument() models.Instrument {
	return models.Instrument{
		ID:     3,
		Ticker: "0050",
		Name:   "元大台灣50",
		Fund:   models.PassiveFund{Index: "台灣50指數"},
	}
}

func TestAssembleActive(t *testing.T) {
	rec := Assemble(Input{
		Instrument: activeInstrument(),
		LatestNAV:  12.34,
		Metrics:    models.Metrics{WeeklyReturn: 1.5, YTDReturn: 20.1},
		Profile:    models.Profile{FoundedDate: "2025/05/27", DividendFreq: "季配", Custodian: "台新銀行"},
		Holdings: []models.ReconciledHolding{
			{Stock: "台積電(2330)", Percent: 9.5, Change: "🆕新進", ChangeVal: 9.5},
		},
		Trend: []models.TrendPoint{{Label: "T-1", Value: 10}, {Label: "T-0", Value: 12.34}},
	})

	assert.Equal(t, 1, rec.ID)
	assert.Equal(t, "00981A", rec.Ticker)
	assert.Equal(t, models.CategoryActive, rec.Type)
	assert.Equal(t, "統一投信", rec.Manager)
	assert.Equal(t, "統一投信", rec.FundManager)
	assert.Empty(t, rec.Index)
	assert.Equal(t, 12.34, rec.LatestNAV)
	assert.Equal(t, 1.5, rec.WeeklyReturn)
	assert.Equal(t, 20.1, rec.YTDReturn)
	assert.Equal(t, StatusLive, rec.ChangeStatus)
	assert.Equal(t, "2025/05/27", rec.FoundedDate)
	assert.Equal(t, "季配", rec.DividendFreq)
	assert.Equal(t, "台新銀行", rec.CustodianBank)
	assert.Equal(t, "N/A", rec.LastDividend)
	assert.Equal(t, "N/A", rec.ExDate)
	assert.Len(t, rec.Holdings, 1)
	assert.Len(t, rec.PerformanceData, 2)
}

func TestAssemblePassiveDefaults(t *testing.T) {
	rec := Assemble(Input{Instrument: passiveInstrument()})

	assert.Equal(t, models.CategoryPassive, rec.Type)
	assert.Equal(t, "台灣50指數", rec.Index)
	assert.Empty(t, rec.Manager)
	assert.Equal(t, "N/A", rec.FundManager)
	assert.Equal(t, StatusNoData, rec.ChangeStatus)
	assert.Equal(t, "N/A", rec.FoundedDate)
	assert.NotNil(t, rec.Holdings)
	assert.NotNil(t, rec.PerformanceData)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"holdings":[]`)
	assert.Contains(t, string(data), `"performanceData":[]`)
	assert.NotContains(t, string(data), `"manager"`)
}

func TestAssembleStatus(t *testing.T) {
	tests := []struct {
		name string
		nav  float64
		ytd  float64
		want string
	}{
		{"both zero", 0, 0, StatusNoData},
		{"nav only", 50, 0, StatusLive},
		{"ytd only", 0, 3.2, StatusLive},
		{"both set", 50, 3.2, StatusLive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Assemble(Input{
				Instrument: passiveInstrument(),
				LatestNAV:  tt.nav,
				Metrics:    models.Metrics{YTDReturn: tt.ytd},
			})
			assert.Equal(t, tt.want, rec.ChangeStatus)
		})
	}
}

func TestAssembleSanitizesNonFinite(t *testing.T) {
	rec := Assemble(Input{
		Instrument: passiveInstrument(),
		LatestNAV:  math.Inf(1),
		Metrics:    models.Metrics{WeeklyReturn: math.NaN(), YTDReturn: 4},
		Holdings:   []models.ReconciledHolding{{Stock: "A", Percent: math.NaN(), ChangeVal: math.Inf(-1)}},
		Trend:      []models.TrendPoint{{Label: "T-0", Value: math.NaN()}},
	})

	assert.Equal(t, 0.0, rec.LatestNAV)
	assert.Equal(t, 0.0, rec.WeeklyReturn)
	assert.Equal(t, 4.0, rec.YTDReturn)
	assert.Equal(t, 0.0, rec.Holdings[0].Percent)
	assert.Equal(t, 0.0, rec.Holdings[0].ChangeVal)
	assert.Equal(t, 0.0, rec.PerformanceData[0].Value)

	_, err := json.Marshal(rec)
	assert.NoError(t, err)
}
