// Package reporting renders analysis results into CSV sheets and a markdown
// summary, mirroring the sheet layout of the original spreadsheet report.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smart-money-lab/internal/analysis"
)

// Sheet filenames inside a report directory.
const (
	fileOverview        = "wallet_overview.csv"
	fileRankedTokens    = "ranked_tokens.csv"
	fileCoverage        = "token_coverage.csv"
	fileRankedPositions = "ranked_positions.csv"
	fileTiming          = "timing_similarity.csv"
	fileBehavior        = "behavior_similarity.csv"
	fileSummary         = "summary.md"
)

// Writer persists a rendered report to disk. Each run gets its own
// timestamped directory under the base directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a report writer rooted at baseDir. The directory is
// created on first write, not here.
func NewWriter(baseDir string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("reporting: base directory is required")
	}
	return &Writer{baseDir: baseDir}, nil
}

// DirName returns the report directory name for a run generated at the given
// epoch-millisecond timestamp, e.g. smart_money_report_20250601_120000.
func DirName(generatedAtMs int64) string {
	return "smart_money_report_" + time.UnixMilli(generatedAtMs).UTC().Format("20060102_150405")
}

// Write renders every sheet of the result and writes them into a fresh run
// directory. Returns the directory path.
func (w *Writer) Write(result *analysis.Result) (string, error) {
	dir := filepath.Join(w.baseDir, DirName(result.GeneratedAt))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	sheets := map[string]string{
		fileOverview:        RenderOverviewCSV(result.Overviews),
		fileRankedTokens:    RenderRankedTokensCSV(result.Ranked),
		fileCoverage:        RenderCoverageCSV(result.Coverage, result.Ranked),
		fileRankedPositions: RenderRankedPositionsCSV(result),
		fileTiming:          RenderTimingCSV(result.TimingEdges),
		fileBehavior:        RenderBehaviorCSV(result.BehaviorEdges),
		fileSummary:         RenderMarkdown(result),
	}

	for name, content := range sheets {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
	}

	return dir, nil
}
