package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/donorops/reconcile-backend/internal/domain/recon"
	"github.com/donorops/reconcile-backend/internal/domain/summary"
	"github.com/donorops/reconcile-backend/internal/infrastructure/config"
	"github.com/donorops/reconcile-backend/internal/infrastructure/logging"
	"github.com/donorops/reconcile-backend/internal/ingest"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		processor  = flag.String("processor", "", "Payment processor CSV export (source A)")
		ledger     = flag.String("ledger", "", "Donor system CSV export (source B)")
		sample     = flag.Bool("sample", false, "Run against the built-in sample datasets")
		asJSON     = flag.Bool("json", false, "Print the full result as JSON")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logCfg := config.LoggingConfig{Level: "info", Format: "text"}
	if *verbose {
		logCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(logCfg, "reconcile")

	engineCfg := recon.DefaultConfig()
	if *configFile != "" {
		fileCfg, err := config.Load(*configFile)
		if err != nil {
			logger.Error("failed to load config", "path", *configFile, "error", err)
			os.Exit(1)
		}
		engineCfg, err = fileCfg.Engine.ToEngineConfig()
		if err != nil {
			logger.Error("invalid engine configuration", "error", err)
			os.Exit(1)
		}
	}

	var sourceA, sourceB []recon.Transaction
	switch {
	case *sample:
		sourceA, sourceB = ingest.SampleSources()
	case *processor != "" && *ledger != "":
		var err error
		sourceA, err = readCSV(*processor, ingest.ReadProcessorCSV, logger)
		if err != nil {
			logger.Error("failed to read processor export", "path", *processor, "error", err)
			os.Exit(1)
		}
		sourceB, err = readCSV(*ledger, ingest.ReadLedgerCSV, logger)
		if err != nil {
			logger.Error("failed to read ledger export", "path", *ledger, "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: reconcile -processor a.csv -ledger b.csv (or -sample)")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger.Info("reconciling", "source_a", len(sourceA), "source_b", len(sourceB))

	result, err := recon.Reconcile(sourceA, sourceB, engineCfg)
	if err != nil {
		logger.Error("reconciliation failed", "error", err)
		os.Exit(1)
	}
	for _, de := range result.DateErrors {
		logger.Warn("excluded transaction", "source", de.Source, "id", de.ID, "date", de.Raw)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Error("failed to encode result", "error", err)
			os.Exit(1)
		}
		return
	}

	printSummary(result)
}

func readCSV(path string, read func(io.Reader) ([]recon.Transaction, []ingest.RowError, error), logger *slog.Logger) ([]recon.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	txs, rowErrs, err := read(f)
	if err != nil {
		return nil, err
	}
	for _, re := range rowErrs {
		logger.Warn("skipped row", "path", path, "detail", re.Error())
	}
	return txs, nil
}

func printSummary(result *recon.Result) {
	s := summary.Compute(result)

	fmt.Println("Reconciliation summary")
	fmt.Printf("  Perfect matches:  %d\n", s.PerfectMatches)
	fmt.Printf("  Partial matches:  %d\n", s.PartialMatches)
	fmt.Printf("  Unmatched (A/B):  %d / %d\n", s.UnmatchedA, s.UnmatchedB)
	fmt.Printf("  Reconciled:       S$%s\n", s.ReconciledAmount.StringFixed(2))
	fmt.Printf("  Unreconciled est: S$%s\n", s.UnreconciledAmount.StringFixed(2))

	if len(result.PartialMatches) > 0 {
		fmt.Println("\nDiscrepancies awaiting review:")
		for _, pm := range result.PartialMatches {
			fmt.Printf("  %s / %s: %s (confidence %.0f%%)\n",
				pm.SourceA.ID, pm.SourceB.ID, pm.Reason, pm.ConfidenceScore*100)
		}
	}
}
