// etftracker refreshes the Taiwan ETF dataset: holdings with change
// markers, NAV, returns, fund profile and a trend series per fund.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/etftracker/internal/assemble"
	"github.com/seenimoa/etftracker/internal/config"
	"github.com/seenimoa/etftracker/internal/datasource"
	"github.com/seenimoa/etftracker/internal/holdings"
	"github.com/seenimoa/etftracker/internal/logging"
	"github.com/seenimoa/etftracker/internal/pipeline"
	"github.com/seenimoa/etftracker/internal/report"
	"github.com/seenimoa/etftracker/internal/snapshot"
	"github.com/seenimoa/etftracker/pkg/models"
	"github.com/seenimoa/etftracker/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "etftracker",
	Short: "etftracker: Taiwan ETF holdings and performance updater",
	Long: `etftracker scrapes holdings, NAV, returns and fund profiles for a
roster of Taiwan-listed ETFs, marks holdings changes against the previous
run and publishes everything as one JSON dataset.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		logging.Setup(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			Color:  cfg.Logging.Color,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("etftracker %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Update Command ---

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch every fund and rewrite the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Output.Path
		}
		only, _ := cmd.Flags().GetStringSlice("only")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		instruments, err := cfg.Instruments()
		if err != nil {
			return err
		}
		instruments, err = selectInstruments(instruments, only)
		if err != nil {
			return err
		}

		fetcher, err := newFetcher(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := &pipeline.Runner{
			Fetcher:    fetcher,
			OutputPath: output,
			Steps:      cfg.Trend.Steps,
			Policy:     holdings.ParseRemovedPolicy(cfg.Reconcile.RemovedPolicy),
			Delay:      cfg.InstrumentDelay(),
			DryRun:     dryRun,
		}

		fmt.Printf("🚀 Updating %d funds → %s\n", len(instruments), output)
		res, err := runner.Run(ctx, instruments)
		if err != nil {
			return err
		}

		var totals holdings.Summary
		noData := 0
		for _, o := range res.Outcomes {
			totals.New += o.Changes.New
			totals.Increased += o.Changes.Increased
			totals.Decreased += o.Changes.Decreased
			if o.Status == assemble.StatusNoData {
				noData++
			}
		}

		fmt.Printf("🎉 Done in %s (run %s)\n", report.FormatDuration(res.Elapsed), res.RunID)
		fmt.Printf("   Records: %d (no data: %d)\n", len(res.Records), noData)
		fmt.Printf("   Holdings: %d new, %d up, %d down\n", totals.New, totals.Increased, totals.Decreased)
		if !res.Saved {
			fmt.Println("   Dry run: dataset not written")
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().String("output", "", "dataset path (default: output.path from config)")
	updateCmd.Flags().StringSlice("only", nil, "update only these tickers (comma separated)")
	updateCmd.Flags().Bool("dry-run", false, "fetch and assemble without writing the dataset")
}

// newFetcher wires the MoneyDJ and Yahoo Finance sources behind one
// shared rate-limited client.
func newFetcher(cfg *config.Config) (*datasource.Aggregator, error) {
	client := datasource.NewClient(datasource.ClientOptions{
		Timeout:        cfg.FetchTimeout(),
		RequestsPerSec: cfg.Fetch.RequestsPerSec,
		CacheTTL:       cfg.CacheTTL(),
		Headers:        map[string]string{"Referer": cfg.Fetch.Referer},
	})

	mdj := datasource.NewMoneyDJ(client, cfg.Fetch.BaseURL, cfg.Fetch.TopHoldings)

	history := datasource.HistoryOptions{
		Enabled:   cfg.History.Enabled,
		Timeframe: models.ParseTimeframe(cfg.History.Interval),
	}
	var yf *datasource.YFinance
	if cfg.History.Enabled {
		lookback, err := cfg.LookbackWindow()
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		history.Lookback = lookback
		yf = datasource.NewYFinance(client, cfg.History.BaseURL)
	}

	agg := datasource.NewDefaultAggregator(mdj, yf, history)
	for _, o := range cfg.Overrides {
		agg.SetOverride(o.Ticker, o.Holdings)
		log.Info().Str("ticker", o.Ticker).Int("holdings", len(o.Holdings)).Msg("holdings override")
	}
	return agg, nil
}

// selectInstruments keeps the instruments whose ticker is listed in only,
// in roster order. An empty only keeps everything.
func selectInstruments(all []models.Instrument, only []string) ([]models.Instrument, error) {
	if len(only) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(only))
	for _, t := range only {
		if t = strings.TrimSpace(t); t != "" {
			want[t] = true
		}
	}

	var picked []models.Instrument
	for _, inst := range all {
		if want[inst.Ticker] {
			picked = append(picked, inst)
			delete(want, inst.Ticker)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for t := range want {
			missing = append(missing, t)
		}
		return nil, fmt.Errorf("not on the roster: %s", strings.Join(missing, ", "))
	}
	return picked, nil
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the holdings-change report of the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			input = cfg.Output.Path
		}
		changed, _ := cmd.Flags().GetBool("changed")
		raw, _ := cmd.Flags().GetBool("raw")
		category, _ := cmd.Flags().GetString("type")
		width, _ := cmd.Flags().GetInt("width")

		records, err := snapshot.ReadRecords(input)
		if err != nil {
			return err
		}

		rc := report.DefaultReportConfig()
		rc.OnlyChanged = changed
		rc.Category = models.Category(category)

		md, err := report.GenerateMarkdown(records, rc)
		if err != nil {
			return err
		}
		if raw {
			fmt.Print(md)
			return nil
		}

		styled, err := report.RenderTerminal(md, width)
		if err != nil {
			return err
		}
		fmt.Print(styled)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("input", "", "dataset path (default: output.path from config)")
	reportCmd.Flags().Bool("changed", false, "list only holdings that changed")
	reportCmd.Flags().Bool("raw", false, "print Markdown without terminal styling")
	reportCmd.Flags().String("type", "", "restrict to one category (active, passive)")
	reportCmd.Flags().Int("width", report.DefaultWidth, "word-wrap width")
}

// --- Roster Command ---

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "List the configured funds",
	RunE: func(cmd *cobra.Command, args []string) error {
		instruments, err := cfg.Instruments()
		if err != nil {
			return err
		}

		fmt.Printf("  %-4s %-8s %-8s %-24s %s\n", "ID", "Ticker", "Type", "Name", "Manager / Index")
		for _, inst := range instruments {
			lead := inst.Manager()
			if inst.Category() == models.CategoryPassive {
				lead = inst.Index()
			}
			if _, ok := cfg.OverrideFor(inst.Ticker); ok {
				lead += " (holdings pinned)"
			}
			fmt.Printf("  %-4d %-8s %-8s %-24s %s\n", inst.ID, inst.Ticker, inst.Category(), inst.Name, lead)
		}
		fmt.Printf("\n  %d funds\n", len(instruments))
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and dataset status",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := utils.NowTaipei()
		tradingDay := "no"
		if utils.IsTradingDay(now) {
			tradingDay = "yes"
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  etftracker: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (Taipei): %s\n", utils.FormatDateTimeTaipei(now))
		fmt.Printf("  Trading day:   %s\n", tradingDay)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Funds:          %d (%d holdings overrides)\n", len(cfg.Roster), len(cfg.Overrides))
		fmt.Printf("    MoneyDJ:        %s (%.1f req/s, top %d)\n", cfg.Fetch.BaseURL, cfg.Fetch.RequestsPerSec, cfg.Fetch.TopHoldings)
		if cfg.History.Enabled {
			fmt.Printf("    History:        %s (%s, %s)\n", cfg.History.BaseURL, cfg.History.Lookback, cfg.History.Interval)
		} else {
			fmt.Println("    History:        disabled")
		}
		fmt.Printf("    Trend steps:    %d\n", cfg.Trend.Steps)
		fmt.Printf("    Removed policy: %s\n", holdings.ParseRemovedPolicy(cfg.Reconcile.RemovedPolicy))
		fmt.Println()

		fmt.Println("  Dataset:")
		fmt.Printf("    Path:          %s\n", cfg.Output.Path)
		info, err := os.Stat(cfg.Output.Path)
		if err != nil {
			fmt.Println("    Status:        ❌ not found")
		} else {
			store := snapshot.Load(cfg.Output.Path)
			fmt.Printf("    Updated:       %s\n", utils.FormatDateTimeTaipei(info.ModTime()))
			fmt.Printf("    Funds stored:  %d\n", store.Len())
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
