package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"smell-bot/src/controller"
	"smell-bot/src/util"
)

func (h *Handler) analyzeCmd() *cobra.Command {
	var (
		metricsFile string
		outputDir   string
		format      string
		handle      string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify source files and report code smells",
		Long: "Loads parser metrics from the configured source (or --metrics), runs the rule engine,\n" +
			"classifies every file with the stored model and checks business-logic consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			util.Info("Analyzing (timeout: %v)", timeout)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			ensemble, err := controller.LoadEnsemble(ctx, h.cfg, handle)
			if err != nil {
				return fmt.Errorf("loading model: %w", err)
			}

			analysisCtrl := controller.NewAnalysisController(h.cfg, ensemble)
			report, err := analysisCtrl.Analyze(ctx, controller.AnalyzeRequest{MetricsFile: metricsFile})
			if err != nil {
				util.Error("Analysis failed: %v", err)
				return fmt.Errorf("analysis failed: %w", err)
			}

			if format != "" {
				h.cfg.Output.Formats = []string{format}
			}

			if outputDir != "" {
				h.cfg.Output.OutputDir = outputDir

				reportCtrl := controller.NewReportController(h.cfg)
				paths, err := reportCtrl.GenerateReports(report)
				if err != nil {
					return fmt.Errorf("generating reports: %w", err)
				}
				for _, path := range paths {
					fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
				}
			} else {
				outputFormat := "json"
				if len(h.cfg.Output.Formats) > 0 {
					outputFormat = h.cfg.Output.Formats[0]
				}

				reportCtrl := controller.NewReportController(h.cfg)
				output, err := reportCtrl.GenerateToString(report, outputFormat)
				if err != nil {
					return fmt.Errorf("generating report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), output)
			}

			printAnalysisSummary(os.Stderr, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&metricsFile, "metrics", "m", "", "Metrics dump to analyze instead of the configured source")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (json, markdown, sarif)")
	cmd.Flags().StringVar(&handle, "model", "", "Model handle (defaults to model_store.handle)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Minute, "Analysis timeout")

	return cmd
}
