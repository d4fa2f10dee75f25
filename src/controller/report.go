package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/report"
	"smell-bot/src/util"
)

// ReportController renders analysis reports and writes them to the output directory
type ReportController struct {
	output    config.OutputConfig
	prefix    string
	generator *report.Generator
}

// NewReportController creates a new report controller
func NewReportController(cfg *config.Config) *ReportController {
	return &ReportController{
		output:    cfg.Output,
		prefix:    cfg.Agent.Name,
		generator: report.NewGenerator(cfg.Output, cfg.Agent),
	}
}

// GenerateReports writes one file per configured format and returns their
// paths in format order. Aliases of one format ("md", "markdown") are written once.
func (c *ReportController) GenerateReports(analysisReport *model.AnalysisReport) ([]string, error) {
	if err := os.MkdirAll(c.output.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	written := make(map[string]bool, len(c.output.Formats))
	var paths []string
	for _, format := range c.output.Formats {
		path := c.reportPath(format)
		if written[path] {
			continue
		}

		rendered, err := c.generator.Generate(analysisReport, format)
		if err != nil {
			return nil, fmt.Errorf("rendering %s report: %w", format, err)
		}
		if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s report: %w", format, err)
		}

		util.Info("Wrote %s report for run %s: %s", format, analysisReport.RunID, path)
		written[path] = true
		paths = append(paths, path)
	}
	return paths, nil
}

// GenerateToString renders the report in one format without touching disk
func (c *ReportController) GenerateToString(analysisReport *model.AnalysisReport, format string) (string, error) {
	return c.generator.Generate(analysisReport, format)
}

// reportPath is <output_dir>/<agent name>-report.<ext>
func (c *ReportController) reportPath(format string) string {
	return filepath.Join(c.output.OutputDir, c.prefix+"-report."+report.Extension(format))
}
