package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smell-bot/src/controller"
)

func (h *Handler) predictCmd() *cobra.Command {
	var (
		metricsFile string
		handle      string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify the files of a metrics dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			ensemble, err := controller.LoadEnsemble(cmd.Context(), h.cfg, handle)
			if err != nil {
				return fmt.Errorf("loading model: %w", err)
			}

			predictions, err := controller.NewAnalysisController(h.cfg, ensemble).
				Predict(cmd.Context(), controller.AnalyzeRequest{MetricsFile: metricsFile})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), predictions)
		},
	}

	cmd.Flags().StringVarP(&metricsFile, "metrics", "m", "", "Metrics dump to classify (required)")
	cmd.Flags().StringVar(&handle, "model", "", "Model handle (defaults to model_store.handle)")
	_ = cmd.MarkFlagRequired("metrics")

	return cmd
}

func (h *Handler) featuresCmd() *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print the feature vectors of a metrics dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := controller.NewAnalysisController(h.cfg, nil).
				Features(cmd.Context(), controller.AnalyzeRequest{MetricsFile: metricsFile})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVarP(&metricsFile, "metrics", "m", "", "Metrics dump (defaults to the configured source)")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
