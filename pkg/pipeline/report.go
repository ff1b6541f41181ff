package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"densify/pkg/discovery"

	"go.uber.org/zap"
)

const failureReportName = "failed_files.json"

// failureReport is the on-disk shape of failed_files.json.
type failureReport struct {
	GeneratedAt      string              `json:"generated_at"`
	SourceDirectory  string              `json:"source_directory"`
	OutputDirectory  string              `json:"output_directory"`
	FailedGroups     []GroupFailure      `json:"failed_groups,omitempty"`
	ConversionErrors []map[string]string `json:"conversion_errors,omitempty"`
}

// writeFailureReport persists per-group and per-file failures next to the
// PDFs. When there is nothing to report, a stale report from a previous run
// is removed instead. Returns the report path, or empty.
func writeFailureReport(outputDir string, result *Result, logger *zap.Logger) string {
	path := filepath.Join(outputDir, failureReportName)

	if len(result.FailedGroups) == 0 && len(result.Conversion.Errors) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Could not delete stale failure report", zap.Error(err))
		}
		return ""
	}

	report := failureReport{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		SourceDirectory: result.SourceDirectory,
		OutputDirectory: result.OutputDirectory,
		FailedGroups:    result.FailedGroups,
	}
	for _, e := range result.Conversion.Errors {
		report.ConversionErrors = append(report.ConversionErrors, map[string]string{
			"file":  e.File,
			"error": e.Error,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Warn("Could not marshal failure report", zap.Error(err))
		return ""
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn("Could not write failure report", zap.String("path", path), zap.Error(err))
		return ""
	}
	return path
}

// noFilesMessage builds the error text for a scan that found nothing usable.
func noFilesMessage(stats discovery.Stats) string {
	if len(stats.Unsupported) == 0 {
		return "no files discovered in the specified directory; ensure it contains supported source code files"
	}

	type extCount struct {
		ext   string
		count int
	}
	counts := make([]extCount, 0, len(stats.Unsupported))
	for ext, n := range stats.Unsupported {
		counts = append(counts, extCount{ext, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].ext < counts[j].ext
	})

	shown := counts
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, len(shown))
	for i, c := range shown {
		parts[i] = fmt.Sprintf("%s (%d)", c.ext, c.count)
	}
	list := strings.Join(parts, ", ")
	if len(counts) > 5 {
		list += fmt.Sprintf(" and %d more", len(counts)-5)
	}

	return fmt.Sprintf(
		"no supported files discovered: found %d file(s) total, but they are unsupported types: %s; only text-based source code files are processed",
		stats.TotalScanned, list)
}

// Summary renders a human-readable run summary for terminal output.
func (r *Result) Summary() string {
	var b strings.Builder
	divider := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\nConversion Summary\n%s\n", divider, divider)
	fmt.Fprintf(&b, "Duration: %.2f seconds\n", r.DurationSeconds)
	fmt.Fprintf(&b, "Files Discovered: %d\n", r.FilesDiscovered)
	fmt.Fprintf(&b, "Files Included: %d\n", r.Conversion.FilesIncluded)
	if r.Conversion.FilesSkippedSize > 0 {
		fmt.Fprintf(&b, "Files Skipped (size limit): %d\n", r.Conversion.FilesSkippedSize)
	}
	if r.Conversion.FilesFailed > 0 {
		fmt.Fprintf(&b, "Files Failed: %d\n", r.Conversion.FilesFailed)
	}
	fmt.Fprintf(&b, "PDFs Created: %d\n", len(r.PDFs))
	for _, pdf := range r.PDFs {
		fmt.Fprintf(&b, "  - %s: %d files, %d pages, %s\n",
			pdf.Name, pdf.FileCount, pdf.PageCount, discovery.FormatSize(pdf.SizeBytes))
	}

	fmt.Fprintf(&b, "\nSize Statistics:\n")
	fmt.Fprintf(&b, "  Original: %s\n", discovery.FormatSize(r.Conversion.TotalSizeOriginal))
	fmt.Fprintf(&b, "  PDF:      %s\n", discovery.FormatSize(r.Conversion.TotalSizePDF))
	fmt.Fprintf(&b, "  Ratio:    %.2fx\n", r.Conversion.CompressionRatio())

	fmt.Fprintf(&b, "\nToken Estimates:\n")
	fmt.Fprintf(&b, "  Original:   %d tokens", r.Tokens.Pre.TotalTokens)
	if r.Tokens.Pre.Heuristic {
		b.WriteString(" (heuristic)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Compressed: %d tokens (%.1f%% savings)\n",
		r.Tokens.Post.EstimatedTokens, r.Tokens.Post.SavingsPercent)

	if len(r.FailedGroups) > 0 {
		fmt.Fprintf(&b, "\nFailed Groups (%d):\n", len(r.FailedGroups))
		for _, f := range r.FailedGroups {
			fmt.Fprintf(&b, "  - %s: %s\n", f.Group, f.Error)
		}
	}
	if r.FailureReport != "" {
		fmt.Fprintf(&b, "\nFailure report: %s\n", r.FailureReport)
	}

	b.WriteString(divider + "\n")
	return b.String()
}

func baseName(path string) string {
	return filepath.Base(path)
}
