// Package pipeline wires discovery, grouping, and PDF rendering into one
// run. Grouping happens synchronously before any rendering starts; only the
// per-group rendering work is spread across a worker pool.
package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"densify/pkg/discovery"
	"densify/pkg/grouping"
	"densify/pkg/pdfgen"
	"densify/pkg/telemetry"
	"densify/pkg/tokens"

	"go.uber.org/zap"
)

// Options configures a pipeline run.
type Options struct {
	SourceDir  string          // Codebase to convert
	OutputDir  string          // Where PDFs and reports land
	Exclusions []string        // Extra exclusion patterns, gitignore syntax
	MaxWorkers int             // Rendering workers; <=0 means NumCPU
	Grouping   grouping.Config // Cap and advisory per-PDF limits
}

// GroupFailure records a group whose PDF could not be produced.
type GroupFailure struct {
	Group string   `json:"group"`
	Files []string `json:"files"`
	Error string   `json:"error"`
}

// TokenSummary pairs the pre-compression count with the post-compression
// projection.
type TokenSummary struct {
	Pre  tokens.Estimate     `json:"pre"`
	Post tokens.PostEstimate `json:"post"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	Success         bool                  `json:"success"`
	Error           string                `json:"error,omitempty"`
	SourceDirectory string                `json:"source_directory"` // basename only
	OutputDirectory string                `json:"output_directory"` // basename only
	DurationSeconds float64               `json:"duration_seconds"`
	FilesDiscovered int                   `json:"files_discovered"`
	Discovery       discovery.Stats       `json:"discovery"`
	Groups          []grouping.PDFGroup   `json:"-"`
	PDFs            []pdfgen.RenderResult `json:"pdf_groups"`
	FailedGroups    []GroupFailure        `json:"failed_groups,omitempty"`
	Conversion      pdfgen.Stats          `json:"conversion"`
	Tokens          TokenSummary          `json:"tokens"`
	FailureReport   string                `json:"failure_report,omitempty"`
	TelemetryLog    string                `json:"telemetry_log,omitempty"`
}

// Run executes the full conversion: discover files, compute the grouping
// plan, render one PDF per group, and write reports. Per-file and per-group
// failures are collected into the result, never raised.
func Run(opts Options, logger *zap.Logger) (*Result, error) {
	start := time.Now()
	logger.Info("Starting conversion pipeline",
		zap.String("source", opts.SourceDir),
		zap.String("output", opts.OutputDir),
		zap.Int("maxPDFs", opts.Grouping.MaxPDFs))

	tel := telemetry.New(opts.OutputDir, logger)
	defer tel.Close()

	scanner, err := discovery.NewScanner(opts.SourceDir, opts.Exclusions, logger)
	if err != nil {
		return nil, err
	}

	files, err := scanner.Discover()
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}

	result := &Result{
		SourceDirectory: baseName(scanner.Root()),
		OutputDirectory: baseName(opts.OutputDir),
		FilesDiscovered: len(files),
		Discovery:       scanner.Stats(),
		TelemetryLog:    tel.Path(),
	}

	if len(files) == 0 {
		result.Error = noFilesMessage(scanner.Stats())
		result.DurationSeconds = time.Since(start).Seconds()
		logger.Warn("No files found to process", zap.String("source", opts.SourceDir))
		tel.LogEvent("pipeline_run", map[string]interface{}{
			"success": false,
			"reason":  "no_files",
			"scanned": scanner.Stats().TotalScanned,
		})
		return result, nil
	}

	// Grouping is a single synchronous pass; the plan is fixed before any
	// rendering begins.
	engine := grouping.NewEngine(opts.Grouping)
	result.Groups = engine.GroupFiles(files)
	logger.Info("Grouping plan computed",
		zap.Int("files", len(files)),
		zap.Int("pdfs", len(result.Groups)))

	converter, err := pdfgen.NewConverter(opts.OutputDir, logger)
	if err != nil {
		return nil, err
	}

	result.PDFs, result.FailedGroups = renderGroups(result.Groups, converter, opts, logger)
	result.Conversion = converter.Stats()

	estimator := tokens.NewEstimator(logger)
	result.Tokens.Pre = estimator.EstimatePreCompression(files)
	result.Tokens.Post = tokens.EstimatePostCompression(result.Tokens.Pre.TotalTokens)

	result.Success = len(result.FailedGroups) == 0
	result.DurationSeconds = time.Since(start).Seconds()

	result.FailureReport = writeFailureReport(opts.OutputDir, result, logger)

	tel.LogEvent("pipeline_run", map[string]interface{}{
		"success":          result.Success,
		"files_discovered": result.FilesDiscovered,
		"pdfs_created":     len(result.PDFs),
		"failed_groups":    len(result.FailedGroups),
		"duration_seconds": result.DurationSeconds,
	})

	logger.Info("Conversion pipeline complete",
		zap.Int("pdfsCreated", len(result.PDFs)),
		zap.Int("failedGroups", len(result.FailedGroups)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// renderOutcome carries one group's rendering result across the pool.
type renderOutcome struct {
	result  pdfgen.RenderResult
	failure *GroupFailure
}

// renderGroups fans the groups out over a worker pool and collects the
// per-group outcomes. Results are re-sorted by name so output is stable
// regardless of completion order.
func renderGroups(groups []grouping.PDFGroup, converter *pdfgen.Converter, opts Options, logger *zap.Logger) ([]pdfgen.RenderResult, []GroupFailure) {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", maxWorkers))
	}
	if maxWorkers > len(groups) {
		maxWorkers = len(groups)
	}

	jobs := make(chan grouping.PDFGroup, len(groups))
	outcomes := make(chan renderOutcome, len(groups))
	var wg sync.WaitGroup

	logger.Debug("Initializing render worker pool", zap.Int("workers", maxWorkers))
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		workerLogger := logger.With(zap.Int("workerID", w))
		go renderWorker(jobs, outcomes, converter, opts.Grouping, &wg, workerLogger)
	}

	for _, group := range groups {
		jobs <- group
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var results []pdfgen.RenderResult
	var failures []GroupFailure
	for outcome := range outcomes {
		if outcome.failure != nil {
			failures = append(failures, *outcome.failure)
			continue
		}
		results = append(results, outcome.result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	sort.Slice(failures, func(i, j int) bool { return failures[i].Group < failures[j].Group })
	return results, failures
}

// renderWorker consumes groups from the jobs channel until it closes.
func renderWorker(jobs <-chan grouping.PDFGroup, outcomes chan<- renderOutcome, converter *pdfgen.Converter, limits grouping.Config, wg *sync.WaitGroup, logger *zap.Logger) {
	defer wg.Done()

	for group := range jobs {
		logger.Debug("Rendering group",
			zap.String("group", group.Name),
			zap.Int("files", len(group.Files)))

		res, err := converter.RenderGroup(group, limits)
		if err != nil {
			logger.Error("Failed to render group",
				zap.String("group", group.Name),
				zap.Error(err))
			outcomes <- renderOutcome{failure: &GroupFailure{
				Group: group.Name,
				Files: relativePaths(group.Files),
				Error: err.Error(),
			}}
			continue
		}

		outcomes <- renderOutcome{result: res}
	}
}

func relativePaths(files []discovery.FileRecord) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelativePath
	}
	return out
}
