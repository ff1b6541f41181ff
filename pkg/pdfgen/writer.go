// Package pdfgen renders groups of source files into dense, OCR-friendly
// PDF documents: small monospace type, minimal margins, one header banner
// per file.
package pdfgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"densify/pkg/discovery"
	"densify/pkg/grouping"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// Dense layout settings for maximum information density.
const (
	bodyFontSize  = 8.0
	lineHeight    = bodyFontSize * 1.2
	pageMargin    = 22.0 // points, ~0.3 inch
	maxLineLength = 110  // characters per line; longer lines are truncated
)

// FileError records a per-file failure during rendering. Failures never
// abort the group they occur in.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Stats aggregates conversion counters across all rendered groups.
type Stats struct {
	FilesIncluded     int         `json:"files_included"`
	FilesSkippedSize  int         `json:"files_skipped_size_limit"`
	FilesFailed       int         `json:"files_failed"`
	TotalSizeOriginal int64       `json:"total_size_original"`
	TotalSizePDF      int64       `json:"total_size_pdf"`
	Errors            []FileError `json:"errors,omitempty"`
}

// CompressionRatio reports PDF bytes over original bytes, 0 when nothing
// was rendered.
func (s Stats) CompressionRatio() float64 {
	if s.TotalSizeOriginal == 0 {
		return 0
	}
	return float64(s.TotalSizePDF) / float64(s.TotalSizeOriginal)
}

// RenderResult describes one generated PDF.
type RenderResult struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	FileCount     int    `json:"file_count"`
	FilesSkipped  int    `json:"files_skipped"`
	PageCount     int    `json:"page_count"`
	SizeBytes     int64  `json:"size_bytes"`
	OriginalBytes int64  `json:"original_bytes"`
}

// Converter renders PDFGroups into PDF files under a single output
// directory. Safe for concurrent use; the stats are mutex-protected.
type Converter struct {
	outputDir string
	logger    *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// NewConverter creates a Converter, ensuring the output directory exists.
func NewConverter(outputDir string, logger *zap.Logger) (*Converter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Converter{outputDir: outputDir, logger: logger}, nil
}

// Stats returns a snapshot of the accumulated conversion counters.
func (c *Converter) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := c.stats
	snapshot.Errors = append([]FileError(nil), c.stats.Errors...)
	return snapshot
}

// RenderGroup concatenates a group's files into one PDF. Files are rendered
// in sorted-by-relative-path order, each preceded by a header banner. When
// the group carries a size ceiling, files that would overflow it are
// skipped — but only after at least one file has been placed, so a
// non-empty group always yields a non-empty PDF.
func (c *Converter) RenderGroup(group grouping.PDFGroup, limits grouping.Config) (RenderResult, error) {
	baseName := strings.TrimSuffix(group.Name, ".pdf")
	pdfPath := filepath.Join(c.outputDir, baseName+".pdf")

	var maxSizeBytes int64
	if limits.MaxSizePerPDFMB > 0 {
		maxSizeBytes = int64(limits.MaxSizePerPDFMB) * 1024 * 1024
	}

	sorted := make([]discovery.FileRecord, len(group.Files))
	copy(sorted, group.Files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RelativePath < sorted[j].RelativePath
	})

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	var (
		included      int
		skipped       int
		originalBytes int64
	)

	for _, file := range sorted {
		if maxSizeBytes > 0 && included > 0 && originalBytes+file.Size > maxSizeBytes {
			skipped++
			continue
		}

		raw, err := os.ReadFile(file.Path)
		if err != nil {
			c.recordError(file.RelativePath, err)
			c.logger.Warn("Failed to read file for rendering",
				zap.String("file", file.RelativePath),
				zap.Error(err))
			continue
		}

		content := formatContent(string(raw), file.FileType)
		c.writeFileSection(pdf, tr, file, content)

		originalBytes += file.Size
		included++
	}

	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		c.mu.Lock()
		c.stats.FilesFailed += len(group.Files)
		c.mu.Unlock()
		return RenderResult{}, fmt.Errorf("failed to write PDF %s: %w", pdfPath, err)
	}

	info, err := os.Stat(pdfPath)
	if err != nil {
		return RenderResult{}, fmt.Errorf("failed to stat generated PDF: %w", err)
	}

	c.mu.Lock()
	c.stats.FilesIncluded += included
	c.stats.FilesSkippedSize += skipped
	c.stats.TotalSizeOriginal += originalBytes
	c.stats.TotalSizePDF += info.Size()
	c.mu.Unlock()

	if skipped > 0 {
		c.logger.Warn("Files skipped due to per-PDF size limit",
			zap.String("pdf", group.Name),
			zap.Int("skipped", skipped),
			zap.Int("maxSizeMB", limits.MaxSizePerPDFMB))
	}

	return RenderResult{
		Name:          baseName + ".pdf",
		Path:          pdfPath,
		FileCount:     included,
		FilesSkipped:  skipped,
		PageCount:     pdf.PageCount(),
		SizeBytes:     info.Size(),
		OriginalBytes: originalBytes,
	}, nil
}

// writeFileSection emits the header banner and body lines for one file.
func (c *Converter) writeFileSection(pdf *fpdf.Fpdf, tr func(string) string, file discovery.FileRecord, content string) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 12, tr(fmt.Sprintf("File: %s", file.RelativePath)), "", "L", false)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 10, tr(fmt.Sprintf("Type: %s | Size: %d bytes", file.FileType, file.Size)), "", "L", false)
	pdf.Ln(3)

	pdf.SetFont("Courier", "", bodyFontSize)
	for _, line := range strings.Split(content, "\n") {
		if len(line) > maxLineLength {
			line = line[:maxLineLength] + "..."
		}
		// Expand tabs so indentation survives the monospace cell
		line = strings.ReplaceAll(line, "\t", "    ")
		pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
}

func (c *Converter) recordError(relPath string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.FilesFailed++
	c.stats.Errors = append(c.stats.Errors, FileError{File: relPath, Error: err.Error()})
}
