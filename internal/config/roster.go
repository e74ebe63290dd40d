package config

import (
	"fmt"

	"github.com/phuslu/log"

	"github.com/seenimoa/etftracker/pkg/models"
	"github.com/seenimoa/etftracker/pkg/utils"
)

// RosterEntry is the flat config form of an instrument. Manager applies to
// active funds and Index to passive ones.
type RosterEntry struct {
	ID      int    `mapstructure:"id"      yaml:"id"`
	Ticker  string `mapstructure:"ticker"  yaml:"ticker"`
	Name    string `mapstructure:"name"    yaml:"name"`
	Type    string `mapstructure:"type"    yaml:"type"`
	Manager string `mapstructure:"manager" yaml:"manager,omitempty"`
	Index   string `mapstructure:"index"   yaml:"index,omitempty"`
}

// HoldingsOverride replaces the scraped holdings of one ticker.
type HoldingsOverride struct {
	Ticker   string                `mapstructure:"ticker"   yaml:"ticker"`
	Holdings []models.HoldingEntry `mapstructure:"holdings" yaml:"holdings"`
}

// Instrument converts the entry into its tagged form.
func (e RosterEntry) Instrument() (models.Instrument, error) {
	if e.Ticker == "" {
		return models.Instrument{}, fmt.Errorf("roster entry %d: ticker is required", e.ID)
	}
	in := models.Instrument{ID: e.ID, Ticker: e.Ticker, Name: e.Name}
	switch models.Category(e.Type) {
	case models.CategoryActive:
		in.Fund = models.ActiveFund{Manager: e.Manager}
	case models.CategoryPassive:
		in.Fund = models.PassiveFund{Index: e.Index}
	default:
		return models.Instrument{}, fmt.Errorf("roster entry %s: unknown type %q", e.Ticker, e.Type)
	}
	return in, nil
}

// SuffixMatchesType reports whether the ticker's "A" suffix agrees with the
// entry type: active funds carry it and passive funds do not.
func (e RosterEntry) SuffixMatchesType() bool {
	return utils.IsActiveTicker(e.Ticker) == (models.Category(e.Type) == models.CategoryActive)
}

// Instruments returns the roster as a fresh slice of tagged instruments.
// Tickers must be unique. A ticker whose suffix disagrees with its type is
// logged but kept.
func (c *Config) Instruments() ([]models.Instrument, error) {
	seen := make(map[string]bool, len(c.Roster))
	out := make([]models.Instrument, 0, len(c.Roster))
	for _, e := range c.Roster {
		in, err := e.Instrument()
		if err != nil {
			return nil, err
		}
		if seen[in.Ticker] {
			return nil, fmt.Errorf("roster: duplicate ticker %q", in.Ticker)
		}
		seen[in.Ticker] = true
		if !e.SuffixMatchesType() {
			log.Warn().Int("id", e.ID).Str("ticker", e.Ticker).Str("type", e.Type).
				Msg("roster ticker suffix does not match fund type")
		}
		out = append(out, in)
	}
	return out, nil
}

func active(id int, ticker, name, manager string) RosterEntry {
	return RosterEntry{ID: id, Ticker: ticker, Name: name, Type: string(models.CategoryActive), Manager: manager}
}

func passive(id int, ticker, name, index string) RosterEntry {
	return RosterEntry{ID: id, Ticker: ticker, Name: name, Type: string(models.CategoryPassive), Index: index}
}

// DefaultRoster returns the built-in list of tracked Taiwan ETFs.
func DefaultRoster() []RosterEntry {
	return []RosterEntry{
		// Active
		active(1, "00981A", "主動統一台股成長", "統一投信"),
		active(2, "00980A", "主動野村臺灣優選", "野村投信"),
		active(4, "00985A", "主動野村台股50", "野村投信"),
		active(5, "00984A", "主動安聯台灣高息", "安聯投信"),
		active(7, "00992A", "主動群益科技創新", "群益投信"),
		active(6, "00999", "主動富邦新星爆發", "富邦投信"),
		active(8, "00994A", "主動第一金台股趨勢優選", "第一金投信"),
		active(9, "00995A", "主動中信台灣卓越", "中國信託投信"),
		active(10, "00993A", "主動安聯台灣", "安聯投信"),
		active(20, "00982A", "主動群益台灣強棒", "群益投信"),
		active(21, "00986A", "主動台新龍頭成長", "台新投信"),
		active(22, "00987A", "主動台新科技高息", "台新投信"),
		active(23, "00983A", "主動中信ARK創新", "中信投信"),
		active(24, "00988A", "主動統一全球創新", "統一投信"),
		active(25, "00989A", "主動摩根美國科技", "摩根投信"),
		active(26, "00990A", "主動元大AI新經濟", "元大投信"),
		active(27, "00991A", "主動復華未來50", "復華投信"),

		// Passive
		passive(3, "0050", "元大台灣50", "台灣50指數"),
		passive(101, "00878", "國泰永續高股息", "ESG永續高股息"),
		passive(102, "0056", "元大高股息", "臺灣高股息指數"),
		passive(103, "00929", "復華台灣科技優息", "科技優息指數"),
		passive(108, "00891", "中信關鍵半導體", "ICE半導體指數"),
		passive(109, "0052", "富邦科技", "資訊科技指數"),
		passive(111, "006208", "富邦台50", "台灣50指數"),
		passive(112, "00636", "國泰中國A50", "富時中國A50指數"),
		passive(113, "00646", "元大S&P500", "S&P500指數"),
		passive(114, "00738U", "園大道瓊白銀", "道瓊白銀ER指數"),
		passive(115, "00919", "群益台灣精選高息", "特選臺灣精選高息指數"),
		passive(116, "00918", "元大台灣高息低波", "高息低波指數"),
		passive(110, "00679B", "元大美債20年", "美債20年指數"),
	}
}
