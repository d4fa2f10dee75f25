package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"smell-bot/src/model"
)

// styles holds the terminal styles; all of them are no-ops off a TTY
type styles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	smelly  lipgloss.Style
	clean   lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		plain := lipgloss.NewStyle()
		return styles{header: plain, muted: plain, smelly: plain, clean: plain, warning: plain, info: plain}
	}
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		smelly:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		clean:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// label renders the result label padded to a fixed width
func (s styles) label(r model.DetectionResult) string {
	pad := func(text string) string { return fmt.Sprintf("%-12s", text) }
	switch r.Status {
	case model.StatusParseError:
		return s.warning.Render(pad("parse error"))
	case model.StatusRulesOnly:
		return s.muted.Render(pad("rules only"))
	}
	if r.Label == model.LabelSmelly {
		return s.smelly.Render(pad(r.LabelName))
	}
	return s.clean.Render(pad(r.LabelName))
}

func printAnalysisSummary(w io.Writer, report *model.AnalysisReport) {
	s := newStyles(w)
	sum := report.Summary

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.header.Render("Analysis complete"))
	fmt.Fprintf(w, "  Files:        %d\n", sum.TotalFiles)
	fmt.Fprintf(w, "  Smelly:       %s (%.1f%% of classified)\n", s.smelly.Render(fmt.Sprint(sum.Smelly)), sum.SmellyRatio*100)
	fmt.Fprintf(w, "  Clean:        %s\n", s.clean.Render(fmt.Sprint(sum.Clean)))
	if sum.Unclassified > 0 {
		fmt.Fprintf(w, "  Rules only:   %s\n", s.muted.Render(fmt.Sprint(sum.Unclassified)))
	}
	if sum.ParseErrors > 0 {
		fmt.Fprintf(w, "  Parse errors: %s\n", s.warning.Render(fmt.Sprint(sum.ParseErrors)))
	}
	fmt.Fprintf(w, "  Issues:       %d error, %d warning, %d info\n",
		sum.IssuesBySeverity[model.IssueError], sum.IssuesBySeverity[model.IssueWarning], sum.IssuesBySeverity[model.IssueInfo])
	if sum.ConsistencyFinding > 0 {
		fmt.Fprintf(w, "  Consistency:  %s\n", s.info.Render(fmt.Sprint(sum.ConsistencyFinding)))
	}

	if len(sum.Top) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.header.Render("Top files"))
		for _, r := range sum.Top {
			fmt.Fprintf(w, "  %s %.2f  %s %s\n", s.label(r), r.Confidence, r.Path,
				s.muted.Render(fmt.Sprintf("(%s, %d issues)", r.SmellType, len(r.Issues))))
		}
	}
}

func printTrainingSummary(w io.Writer, report *model.TrainingReport, handle string) {
	s := newStyles(w)

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.header.Render("Training complete"))
	fmt.Fprintf(w, "  Model:     %s (saved as %q)\n", report.ModelID, handle)
	fmt.Fprintf(w, "  Samples:   %d (%d clean, %d smelly; %d train / %d test)\n",
		report.Samples, report.LabelCounts[model.LabelClean], report.LabelCounts[model.LabelSmelly],
		report.TrainSamples, report.TestSamples)
	fmt.Fprintf(w, "  Holdout:   %.3f\n", report.HoldoutAccuracy)
	fmt.Fprintf(w, "  CV:        %.3f (+/- %.3f)\n", report.CV.Mean, report.CV.Std*2)

	var rows []string
	for _, c := range report.Classifiers {
		rows = append(rows, fmt.Sprintf("    %-20s holdout %.3f  cv %.3f", c.Name, c.HoldoutAccuracy, c.CV.Mean))
	}
	for _, m := range report.PerClass {
		rows = append(rows, fmt.Sprintf("    %-20s precision %.3f  recall %.3f  f1 %.3f  (%d)", m.Label, m.Precision, m.Recall, m.F1, m.Support))
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, s.muted.Render(strings.Join(rows, "\n")))
	}
	if report.Warning != "" {
		fmt.Fprintln(w, s.warning.Render("  Warning: "+report.Warning))
	}
}
