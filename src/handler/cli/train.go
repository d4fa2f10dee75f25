package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"smell-bot/src/controller"
)

func (h *Handler) trainCmd() *cobra.Command {
	var (
		dataPath   string
		synthetic  bool
		samples    int
		gridSearch bool
		handle     string
		asJSON     bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and store the smell classifier",
		Long: "Trains the random forest, SVM and logistic regression ensemble on labeled samples\n" +
			"(--data) or on generated data (--synthetic), then saves it to the model store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath != "" && synthetic {
				return fmt.Errorf("--data and --synthetic are mutually exclusive")
			}
			if dataPath == "" && !synthetic {
				fmt.Fprintln(os.Stderr, "No --data given, training on synthetic samples")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			trainer, err := controller.NewTrainingController(h.cfg)
			if err != nil {
				return err
			}

			result, err := trainer.Train(ctx, controller.TrainRequest{
				DataPath:   dataPath,
				Samples:    samples,
				GridSearch: gridSearch,
				Handle:     handle,
			})
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}

			if asJSON {
				data, err := json.MarshalIndent(result.Report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			printTrainingSummary(os.Stderr, result.Report, result.Handle)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Labeled samples file (JSON or YAML)")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "Train on generated samples")
	cmd.Flags().IntVarP(&samples, "samples", "n", 0, "Number of synthetic samples (defaults to classifier.synthetic.samples)")
	cmd.Flags().BoolVarP(&gridSearch, "grid-search", "g", false, "Tune hyperparameters with grid search")
	cmd.Flags().StringVar(&handle, "model", "", "Model handle (defaults to model_store.handle)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full training report as JSON")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Minute, "Training timeout")

	return cmd
}
