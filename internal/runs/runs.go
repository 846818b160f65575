// Package runs lays out the output folders of offline analyses: one folder per
// run with reports/ and logs/ subfolders, plus the file naming convention.
package runs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Output modes.
const (
	ModeRuns   = "runs"
	ModeLatest = "latest"
)

// Tool names used as the first folder level.
const (
	ToolTMYAnalysis = "TMY_Analysis"
	ToolTMYCompare  = "TMY_Compare"
	ToolHourly      = "hourly_results"
)

var (
	ErrUnknownMode = errors.New("runs: unknown output mode")
	ErrEmptyRoot   = errors.New("runs: output root required")
	ErrEmptyTool   = errors.New("runs: tool name required")
)

// Paths are the folders of one run.
type Paths struct {
	ID         string
	RunDir     string
	ReportsDir string
	LogsDir    string
}

// Create makes the folders of a new run under root/tool. In ModeRuns each call
// gets a fresh timestamped folder; in ModeLatest the single latest/ folder is
// wiped and recreated.
func Create(root, tool, mode string, now time.Time) (Paths, error) {
	if strings.TrimSpace(root) == "" {
		return Paths{}, ErrEmptyRoot
	}
	if strings.TrimSpace(tool) == "" {
		return Paths{}, ErrEmptyTool
	}

	var p Paths
	switch mode {
	case ModeRuns:
		id := uuid.NewString()
		p.ID = id
		p.RunDir = filepath.Join(root, tool, ModeRuns, now.UTC().Format("20060102_150405")+"_"+id[:8])
	case ModeLatest:
		p.ID = ModeLatest
		p.RunDir = filepath.Join(root, tool, ModeLatest)
		if err := os.RemoveAll(p.RunDir); err != nil {
			return Paths{}, fmt.Errorf("runs: clear latest: %w", err)
		}
	default:
		return Paths{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	p.ReportsDir = filepath.Join(p.RunDir, "reports")
	p.LogsDir = filepath.Join(p.RunDir, "logs")
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("runs: create %s: %w", dir, err)
		}
	}
	return p, nil
}

// Stem returns the file name without folder or extension.
func Stem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func TMYReportName(source string) string {
	return Stem(source) + "__TMY_Report.pdf"
}

func TMYWorkbookName(source string) string {
	return Stem(source) + "__TMY_Report.xlsx"
}

func TMYLogName(source string) string {
	return Stem(source) + "__TMY_Analysis.log"
}

func ComparisonReportName(first, second string) string {
	return fmt.Sprintf("TMY_Comparison__%s__VS__%s.pdf", Stem(first), Stem(second))
}

func ComparisonLogName(first, second string) string {
	return fmt.Sprintf("TMY_Compare__%s__VS__%s.log", Stem(first), Stem(second))
}

// Hourly report and log names.
const (
	HourlyWorkbookName = "hourly_results_analysis.xlsx"
	HourlyReportName   = "hourly_results_analysis.pdf"
	HourlyLogName      = "hourly_results.log"
)

// WriteFile writes data into dir, creating dir if needed, and returns the path.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveInput keeps a copy of the analysed file in the run folder.
func (p Paths) SaveInput(source string, data []byte) (string, error) {
	name := filepath.Base(strings.ReplaceAll(source, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "input.csv"
	}
	return WriteFile(p.RunDir, name, data)
}
