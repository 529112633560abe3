package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fintel/internal/render"
)

var (
	plainOutput bool
	industry    string
)

// analyzeCmd runs the full report pipeline for one company
var analyzeCmd = &cobra.Command{
	Use:   "analyze [tax-id]",
	Short: "Run a full financial analysis for one company",
	Long: `Builds the comprehensive financial report for a company: ratio
analysis across all four families, health score, credit assessment,
trends, and the SWOT narrative, rendered for the terminal.

The tax ID accepts the RO/CUI/CIF prefixes and separators, so
"RO 12345678" and "12345678" name the same company.

Examples:
  fintel analyze 12345678
  fintel analyze RO12345678 --industry retail
  fintel analyze 12345678 --plain | jq .credit_assessment`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&plainOutput, "plain", false, "Emit the raw report as JSON instead of styled output")
	analyzeCmd.Flags().StringVar(&industry, "industry", "", "Also benchmark against this industry sector")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, _, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Building financial report", zap.String("tax_id", args[0]))
	rep, err := svc.Report(ctx, args[0])
	if err != nil {
		return err
	}

	if plainOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	st := render.DefaultStyles()
	fmt.Println(st.Title.Render(fmt.Sprintf("%s (CUI %s)", rep.ExecutiveSummary.CompanyName, rep.TaxID)))
	fmt.Println(st.Rating(rep.FinancialHealth.Rating).Render(fmt.Sprintf(
		"Health %d/100 (%s) | Credit %s (%s risk)",
		rep.FinancialHealth.Score, rep.FinancialHealth.Rating,
		rep.CreditAssessment.Rating, rep.CreditAssessment.RiskLevel)))
	fmt.Println()
	fmt.Println(render.Scorecard(rep).View(st))
	fmt.Println(render.RatioTable(rep.RatioAnalysis).View(st))

	if industry != "" {
		bm, err := svc.BenchmarkIndustry(ctx, args[0], industry)
		if err != nil {
			logger.Warn("Benchmarking skipped", zap.Error(err))
		} else {
			fmt.Println(render.BenchmarkTable(bm.BenchmarkComparison).View(st))
		}
	}

	fmt.Println(render.Markdown(render.ReportMarkdown(rep)))
	return nil
}
