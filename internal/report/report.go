// Package report renders a published dataset as a Markdown digest of
// holdings changes, optionally styled for the terminal.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/seenimoa/etftracker/internal/holdings"
	"github.com/seenimoa/etftracker/pkg/models"
	"github.com/seenimoa/etftracker/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator
// ════════════════════════════════════════════════════════════════════

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Title       string          // custom report title (optional)
	OnlyChanged bool            // list only holdings that changed
	Category    models.Category // restrict to one category (optional)
	GeneratedAt time.Time       // header timestamp (default: now)
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{Title: "ETF 持股變化報告"}
}

var markdownTmpl = template.Must(template.New("report").Parse(MarkdownTemplate))

// Render writes the Markdown report for records to w.
func Render(w io.Writer, records []models.InstrumentRecord, cfg ReportConfig) error {
	data := buildReportData(records, cfg)
	if err := markdownTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// GenerateMarkdown is Render into a string.
func GenerateMarkdown(records []models.InstrumentRecord, cfg ReportConfig) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, records, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Report Data, flattened for template rendering
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model.
type ReportData struct {
	Title       string
	GeneratedAt string // Taipei time
	OnlyChanged bool

	FundCount   int
	NoDataCount int
	Totals      holdings.Summary

	Funds []FundSection
}

// FundSection is one instrument's block of the report.
type FundSection struct {
	Ticker    string
	Name      string
	Category  string
	LeadLabel string // "經理人" or "追蹤指數"
	Lead      string
	NAV       string
	Weekly    string
	YTD       string
	Status    string
	Founded   string
	Dividend  string
	Custodian string
	Trend     string

	Changes  holdings.Summary
	Holdings []HoldingRow
	Hidden   int // unchanged rows omitted under OnlyChanged
}

// HoldingRow is one line of a fund's holdings table.
type HoldingRow struct {
	Stock   string
	Percent string
	Change  string
}

func buildReportData(records []models.InstrumentRecord, cfg ReportConfig) ReportData {
	title := cfg.Title
	if title == "" {
		title = DefaultReportConfig().Title
	}
	at := cfg.GeneratedAt
	if at.IsZero() {
		at = utils.NowTaipei()
	}

	data := ReportData{
		Title:       title,
		GeneratedAt: utils.FormatDateTimeTaipei(at),
		OnlyChanged: cfg.OnlyChanged,
	}

	for _, rec := range records {
		if cfg.Category != "" && rec.Type != cfg.Category {
			continue
		}
		sec := buildFundSection(rec, cfg.OnlyChanged)
		data.Funds = append(data.Funds, sec)
		data.FundCount++
		if rec.LatestNAV == 0 && rec.YTDReturn == 0 {
			data.NoDataCount++
		}
		data.Totals.New += sec.Changes.New
		data.Totals.Increased += sec.Changes.Increased
		data.Totals.Decreased += sec.Changes.Decreased
		data.Totals.Unchanged += sec.Changes.Unchanged
		data.Totals.Removed += sec.Changes.Removed
	}
	return data
}

func buildFundSection(rec models.InstrumentRecord, onlyChanged bool) FundSection {
	sec := FundSection{
		Ticker:    escapeCell(rec.Ticker),
		Name:      escapeCell(rec.Name),
		Category:  string(rec.Type),
		NAV:       utils.FormatPrice(rec.LatestNAV),
		Weekly:    utils.FormatPct(rec.WeeklyReturn),
		YTD:       utils.FormatPct(rec.YTDReturn),
		Status:    escapeCell(rec.ChangeStatus),
		Founded:   escapeCell(rec.FoundedDate),
		Dividend:  escapeCell(rec.DividendFreq),
		Custodian: escapeCell(rec.CustodianBank),
		Trend:     trendLine(rec.PerformanceData),
		Changes:   holdings.Summarize(rec.Holdings),
	}

	switch rec.Type {
	case models.CategoryActive:
		sec.LeadLabel, sec.Lead = "經理人", escapeCell(coalesce(rec.Manager, rec.FundManager))
	default:
		sec.LeadLabel, sec.Lead = "追蹤指數", escapeCell(coalesce(rec.Index, models.NotAvailable))
	}

	for _, h := range rec.Holdings {
		if onlyChanged && !holdings.Changed(h) {
			sec.Hidden++
			continue
		}
		sec.Holdings = append(sec.Holdings, HoldingRow{
			Stock:   escapeCell(h.Stock),
			Percent: fmt.Sprintf("%.2f%%", h.Percent),
			Change:  h.Change,
		})
	}
	return sec
}

// trendLine renders the series as "first → last (n points)".
func trendLine(points []models.TrendPoint) string {
	if len(points) == 0 {
		return ""
	}
	first, last := points[0], points[len(points)-1]
	return fmt.Sprintf("%s %s → %s %s (%d 點)",
		first.Label, utils.FormatFloat(first.Value),
		last.Label, utils.FormatFloat(last.Value),
		len(points))
}

// escapeCell keeps a value from breaking a Markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ════════════════════════════════════════════════════════════════════
// Utility
// ════════════════════════════════════════════════════════════════════

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
