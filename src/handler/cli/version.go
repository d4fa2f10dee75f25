package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"smell-bot/src/config"
	"smell-bot/src/service/classifier"
	"smell-bot/src/service/detector"
	"smell-bot/src/service/features"
)

func (h *Handler) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (features %s, model format %s)\n",
				h.cfg.Agent.Name, h.cfg.Agent.Version, features.Version, classifier.FormatVersion)
		},
	}
}

func (h *Handler) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule detectors and active thresholds",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			runner := detector.NewRunner(h.cfg.Thresholds, nil)

			fmt.Fprintln(out, "Available detectors:")
			for _, d := range runner.Detectors() {
				fmt.Fprintf(out, "  - %-14s: %s\n", d.Name(), d.Description())
			}

			fmt.Fprintln(out, "")
			fmt.Fprintln(out, "Thresholds:")
			t := h.cfg.Thresholds
			fmt.Fprintf(out, "  %-28s %d\n", config.KeyLongMethodLines, t.LongMethodLines)
			fmt.Fprintf(out, "  %-28s %d\n", config.KeyLongClassLines, t.LongClassLines)
			fmt.Fprintf(out, "  %-28s %d\n", config.KeyLargeParameterCount, t.LargeParameterCount)
			fmt.Fprintf(out, "  %-28s %d\n", config.KeyComplexMethodComplexity, t.ComplexMethodComplexity)
			fmt.Fprintf(out, "  %-28s %.2f\n", config.KeyLowCommentRatio, t.LowCommentRatio)
		},
	}
}
