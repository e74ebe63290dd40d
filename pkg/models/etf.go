package models

// Category distinguishes actively managed funds from index trackers.
type Category string

const (
	CategoryActive  Category = "active"
	CategoryPassive Category = "passive"
)

// FundDetail carries the category-specific part of an Instrument.
// Only ActiveFund and PassiveFund implement it.
type FundDetail interface {
	Category() Category
	isFundDetail()
}

// ActiveFund is an actively managed ETF run by an issuer.
type ActiveFund struct {
	Manager string `json:"manager"`
}

// Category implements FundDetail.
func (ActiveFund) Category() Category { return CategoryActive }
func (ActiveFund) isFundDetail()      {}

// PassiveFund tracks a benchmark index.
type PassiveFund struct {
	Index string `json:"index"`
}

// Category implements FundDetail.
func (PassiveFund) Category() Category { return CategoryPassive }
func (PassiveFund) isFundDetail()      {}

// Instrument is one configured ETF on the roster.
type Instrument struct {
	ID     int
	Ticker string // exact identifier, also the snapshot key
	Name   string
	Fund   FundDetail
}

// Category returns the fund category, defaulting to passive when unset.
func (i Instrument) Category() Category {
	if i.Fund == nil {
		return CategoryPassive
	}
	return i.Fund.Category()
}

// Manager returns the issuer for active funds, or "" otherwise.
func (i Instrument) Manager() string {
	if a, ok := i.Fund.(ActiveFund); ok {
		return a.Manager
	}
	return ""
}

// Index returns the benchmark for passive funds, or "" otherwise.
func (i Instrument) Index() string {
	if p, ok := i.Fund.(PassiveFund); ok {
		return p.Index
	}
	return ""
}

// HoldingEntry is one constituent and its portfolio weight in percent.
type HoldingEntry struct {
	Stock   string  `json:"stock"`
	Percent float64 `json:"percent"`
}

// ReconciledHolding is a HoldingEntry annotated with its change since the
// prior snapshot.
type ReconciledHolding struct {
	Stock     string  `json:"stock"`
	Percent   float64 `json:"percent"`
	Change    string  `json:"change"`
	ChangeVal float64 `json:"changeVal"`
}

// TrendPoint is one labelled value of the plotted trend series.
type TrendPoint struct {
	Label string  `json:"month"`
	Value float64 `json:"return"`
}

// Metrics holds the scraped performance figures of a fund, in percent.
type Metrics struct {
	WeeklyReturn float64 `json:"weekly"`
	YTDReturn    float64 `json:"ytd"`
}

// NotAvailable marks a profile field that could not be obtained.
const NotAvailable = "N/A"

// Profile holds descriptive fund facts.
type Profile struct {
	FoundedDate  string `json:"foundedDate"`
	DividendFreq string `json:"dividendFreq"`
	Custodian    string `json:"custodian"`
}

// DefaultProfile returns a Profile with every field unavailable.
func DefaultProfile() Profile {
	return Profile{
		FoundedDate:  NotAvailable,
		DividendFreq: NotAvailable,
		Custodian:    NotAvailable,
	}
}

// InstrumentRecord is one entry of the published dataset.
type InstrumentRecord struct {
	ID      int      `json:"id"`
	Ticker  string   `json:"ticker"`
	Name    string   `json:"name"`
	Type    Category `json:"type"`
	Manager string   `json:"manager,omitempty"`
	Index   string   `json:"index,omitempty"`

	YTDReturn       float64 `json:"ytdReturn"`
	WeeklyReturn    float64 `json:"weeklyReturn"`
	LatestNAV       float64 `json:"latestNav"`
	ChangeSinceLast float64 `json:"changeSinceLast"`
	LastDividend    string  `json:"lastDividend"`
	ExDate          string  `json:"exDate"`
	FundManager     string  `json:"fundManager"`
	ChangeStatus    string  `json:"changeStatus"`

	Holdings        []ReconciledHolding `json:"holdings"`
	PerformanceData []TrendPoint        `json:"performanceData"`

	FoundedDate   string `json:"foundedDate"`
	DividendFreq  string `json:"dividendFreq"`
	CustodianBank string `json:"custodianBank"`
}
