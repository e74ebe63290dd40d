// Package assemble merges everything gathered for one fund into the record
// that is published, and scrubs non-finite numbers before serialisation.
package assemble

import (
	"github.com/seenimoa/etftracker/pkg/models"
)

// Status labels written into InstrumentRecord.ChangeStatus.
const (
	StatusLive    = "MoneyDJ 真實數據"
	StatusNoData  = "查無數據"
	placeholderNA = models.NotAvailable
)

// Input bundles the per-fund pieces an InstrumentRecord is built from.
type Input struct {
	Instrument models.Instrument
	LatestNAV  float64
	Metrics    models.Metrics
	Profile    models.Profile
	Holdings   []models.ReconciledHolding
	Trend      []models.TrendPoint
}

// Assemble builds the published record for in and sanitises it.
// The status is StatusNoData when both the NAV and the YTD return are 0.
func Assemble(in Input) models.InstrumentRecord {
	instr := in.Instrument

	status := StatusLive
	if in.LatestNAV == 0 && in.Metrics.YTDReturn == 0 {
		status = StatusNoData
	}

	fundManager := instr.Manager()
	if fundManager == "" {
		fundManager = placeholderNA
	}

	holdings := in.Holdings
	if holdings == nil {
		holdings = []models.ReconciledHolding{}
	}
	series := in.Trend
	if series == nil {
		series = []models.TrendPoint{}
	}

	rec := models.InstrumentRecord{
		ID:      instr.ID,
		Ticker:  instr.Ticker,
		Name:    instr.Name,
		Type:    instr.Category(),
		Manager: instr.Manager(),
		Index:   instr.Index(),

		YTDReturn:       in.Metrics.YTDReturn,
		WeeklyReturn:    in.Metrics.WeeklyReturn,
		LatestNAV:       in.LatestNAV,
		ChangeSinceLast: 0,
		LastDividend:    placeholderNA,
		ExDate:          placeholderNA,
		FundManager:     fundManager,
		ChangeStatus:    status,

		Holdings:        holdings,
		PerformanceData: series,

		FoundedDate:   orNA(in.Profile.FoundedDate),
		DividendFreq:  orNA(in.Profile.DividendFreq),
		CustodianBank: orNA(in.Profile.Custodian),
	}

	SanitizeRecord(&rec)
	return rec
}

func orNA(s string) string {
	if s == "" {
		return placeholderNA
	}
	return s
}
