package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/sigma/internal/backtest"
	"github.com/newthinker/sigma/internal/collector/binance"
	"github.com/newthinker/sigma/internal/config"
	"github.com/newthinker/sigma/internal/llm/factory"
	"github.com/newthinker/sigma/internal/logger"
	"github.com/newthinker/sigma/internal/narrative"
	"github.com/newthinker/sigma/internal/render"
	"github.com/newthinker/sigma/internal/storage/archive"
	"github.com/newthinker/sigma/internal/strategy/registry"
)

var (
	backtestSymbol   string
	backtestFrom     string
	backtestTo       string
	backtestInterval string
	backtestCost     float64
	backtestParams   []string
	backtestHTML     string
	backtestSave     bool
	backtestExplain  bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a backtest on a strategy",
	Long:  "Run a strategy against historical data and show performance statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestInterval, "interval", "", "Bar interval, e.g. 1d or 4h")
	backtestCmd.Flags().Float64Var(&backtestCost, "cost", -1, "Fractional cost per unit of position change")
	backtestCmd.Flags().StringArrayVar(&backtestParams, "param", nil, "Strategy parameter key=value (repeatable)")
	backtestCmd.Flags().StringVar(&backtestHTML, "html", "", "Write an HTML report to this file")
	backtestCmd.Flags().BoolVar(&backtestSave, "save", false, "Archive the report to configured storage")
	backtestCmd.Flags().BoolVar(&backtestExplain, "explain", false, "Generate an LLM narrative of the results")

	backtestCmd.MarkFlagRequired("symbol")
	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if !toDate.After(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}

	params, err := parseParams(backtestParams)
	if err != nil {
		return err
	}

	strat, err := registry.New(args[0], params)
	if err != nil {
		return err
	}

	interval := backtestInterval
	if interval == "" {
		interval = cfg.Backtest.Interval
	}
	cost := backtestCost
	if cost < 0 {
		cost = cfg.Backtest.Cost
	}

	runner := backtest.New(binance.New(), logger.Named(log, "backtest"))

	report, err := runner.Run(cmd.Context(), strat, backtestSymbol, fromDate, toDate, interval, cost)
	if err != nil {
		return err
	}

	fmt.Println(render.Summary(report))

	if backtestHTML != "" {
		html, err := render.HTML(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(backtestHTML, html, 0644); err != nil {
			return fmt.Errorf("writing HTML report: %w", err)
		}
		fmt.Printf("HTML report written to %s\n", backtestHTML)
	}

	if backtestSave {
		if err := archiveReport(cmd, cfg, report); err != nil {
			return err
		}
	}

	if backtestExplain {
		if err := explainReport(cmd, cfg, report, log); err != nil {
			return err
		}
	}

	return nil
}

// archiveReport persists the report JSON and HTML to configured storage.
func archiveReport(cmd *cobra.Command, cfg *config.Config, report *backtest.Report) error {
	var store archive.Storage
	var err error

	switch cfg.Storage.Type {
	case "s3":
		store, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Endpoint:  cfg.Storage.S3.Endpoint,
			Region:    cfg.Storage.S3.Region,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Prefix:    cfg.Storage.S3.Prefix,
		})
	default:
		path := cfg.Storage.Path
		if path == "" {
			path = "reports"
		}
		store, err = archive.NewLocalFS(path)
	}
	if err != nil {
		return fmt.Errorf("creating archive storage: %w", err)
	}

	arch := archive.NewReportArchive(store)

	key, err := arch.SaveJSON(cmd.Context(), report)
	if err != nil {
		return err
	}
	fmt.Printf("Report archived to %s\n", key)

	html, err := render.HTML(report)
	if err != nil {
		return err
	}
	key, err = arch.SaveHTML(cmd.Context(), report, html)
	if err != nil {
		return err
	}
	fmt.Printf("HTML report archived to %s\n", key)

	return nil
}

// explainReport generates an LLM narrative for the report.
func explainReport(cmd *cobra.Command, cfg *config.Config, report *backtest.Report, log *zap.Logger) error {
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("no LLM provider configured, set llm.provider in the config file")
	}

	provider, err := factory.New(cfg.LLM)
	if err != nil {
		return err
	}

	analyst := narrative.New(provider, logger.Named(log, "narrative"))
	text, err := analyst.Explain(cmd.Context(), report)
	if err != nil {
		return err
	}

	fmt.Println("=== Analysis ===")
	fmt.Println(text)
	return nil
}

// parseParams turns repeated key=value flags into a typed parameter map.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", pair)
		}

		if n, err := strconv.Atoi(value); err == nil {
			params[key] = n
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = f
		} else if b, err := strconv.ParseBool(value); err == nil {
			params[key] = b
		} else {
			params[key] = value
		}
	}
	return params, nil
}
