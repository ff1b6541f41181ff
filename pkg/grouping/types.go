// Package grouping implements the smart concatenation engine: it packs a
// codebase's files into a bounded number of PDF groups, preserving directory
// boundaries where possible and rolling deep directories up into their
// parents under pressure.
package grouping

import "densify/pkg/discovery"

// Config holds the limits consumed by the grouping engine. Only MaxPDFs is
// enforced here; the per-PDF limits are advisory and forwarded to the
// rendering stage.
type Config struct {
	MaxPDFs         int // Hard cap on the number of output groups
	MaxPagesPerPDF  int // Advisory page ceiling per rendered PDF
	MaxSizePerPDFMB int // Advisory source-size ceiling per rendered PDF
	MaxTotalPages   int // Advisory total page ceiling across all PDFs
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxPDFs:         10,
		MaxPagesPerPDF:  100,
		MaxSizePerPDFMB: 10,
		MaxTotalPages:   1000,
	}
}

// PDFGroup is a named bundle of files destined for one rendered PDF.
type PDFGroup struct {
	Name          string                 // Output base name, e.g. "src_components.pdf"
	Files         []discovery.FileRecord // Files concatenated into this PDF
	DirectoryPath string                 // Originating directory path, or a synthetic label
	Priority      int                    // Higher sorts first when trimming to the cap
}

// Engine groups discovered files into at most Config.MaxPDFs PDFGroups.
// It is a pure in-memory computation: no I/O, no shared state, safe to use
// from multiple goroutines on independent inputs.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine. A non-positive MaxPDFs falls back to the
// default cap.
func NewEngine(cfg Config) *Engine {
	if cfg.MaxPDFs <= 0 {
		cfg.MaxPDFs = DefaultConfig().MaxPDFs
	}
	return &Engine{cfg: cfg}
}

// Config returns the limits the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}
