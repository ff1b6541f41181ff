package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"densify/pkg/discovery"
	"densify/pkg/grouping"
	"densify/pkg/pdfgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/index.ts":         "export const main = () => 1\n",
		"src/components/ui.ts": "export const ui = 'button'\n",
		"tests/index.test.ts":  "test('main', () => {})\n",
		"package.json":         "{\"name\": \"demo\"}\n",
		"README.md":            "# Demo\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRunEndToEnd(t *testing.T) {
	source := seedProject(t)
	output := t.TempDir()

	result, err := Run(Options{
		SourceDir: source,
		OutputDir: output,
		Grouping:  grouping.DefaultConfig(),
	}, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.FailedGroups)
	assert.Equal(t, 5, result.FilesDiscovered)
	require.NotEmpty(t, result.PDFs)

	names := make([]string, 0, len(result.PDFs))
	totalFiles := 0
	for _, pdf := range result.PDFs {
		names = append(names, pdf.Name)
		totalFiles += pdf.FileCount
		info, err := os.Stat(pdf.Path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, names, "src.pdf")
	assert.Contains(t, names, "root_config.pdf")
	assert.Equal(t, 5, totalFiles, "every discovered file lands in exactly one PDF")

	assert.Positive(t, result.Tokens.Pre.TotalTokens)
	assert.Positive(t, result.Tokens.Post.EstimatedTokens)
	assert.Empty(t, result.FailureReport)
	assert.FileExists(t, filepath.Join(output, "telemetry.jsonl"))
}

func TestRunRespectsMaxPDFsCap(t *testing.T) {
	source := t.TempDir()
	for _, dir := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		path := filepath.Join(source, dir, "mod.ts")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("export const v = 1\n"), 0o644))
	}

	cfg := grouping.DefaultConfig()
	cfg.MaxPDFs = 3

	result, err := Run(Options{
		SourceDir: source,
		OutputDir: t.TempDir(),
		Grouping:  cfg,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.LessOrEqual(t, len(result.PDFs), 3)
}

func TestRunEmptySource(t *testing.T) {
	result, err := Run(Options{
		SourceDir: t.TempDir(),
		OutputDir: t.TempDir(),
		Grouping:  grouping.DefaultConfig(),
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no files discovered")
	assert.Empty(t, result.PDFs)
}

func TestRunUnsupportedOnlySource(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "data.bin"), []byte("bin"), 0o644))

	result, err := Run(Options{
		SourceDir: source,
		OutputDir: t.TempDir(),
		Grouping:  grouping.DefaultConfig(),
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported types")
	assert.Contains(t, result.Error, ".png")
}

func TestRunMissingSource(t *testing.T) {
	_, err := Run(Options{
		SourceDir: filepath.Join(t.TempDir(), "absent"),
		OutputDir: t.TempDir(),
		Grouping:  grouping.DefaultConfig(),
	}, zap.NewNop())
	require.Error(t, err)
}

func TestNoFilesMessageListsTopExtensions(t *testing.T) {
	stats := discovery.Stats{
		TotalScanned: 12,
		Unsupported: map[string]int{
			".png": 5, ".jpg": 3, ".ico": 1, ".bin": 1, ".dat": 1, ".obj": 1,
		},
	}

	msg := noFilesMessage(stats)
	assert.Contains(t, msg, ".png (5)")
	assert.Contains(t, msg, "and 1 more")
}

func TestSummaryIncludesKeySections(t *testing.T) {
	result := &Result{
		FilesDiscovered: 3,
		PDFs: []pdfgen.RenderResult{
			{Name: "src.pdf", FileCount: 3, PageCount: 2, SizeBytes: 2048},
		},
	}
	result.Conversion.FilesIncluded = 3
	result.Conversion.TotalSizeOriginal = 4096
	result.Conversion.TotalSizePDF = 2048
	result.Tokens.Pre.TotalTokens = 1000
	result.Tokens.Post.EstimatedTokens = 100
	result.Tokens.Post.SavingsPercent = 90

	summary := result.Summary()
	assert.Contains(t, summary, "Conversion Summary")
	assert.Contains(t, summary, "PDFs Created: 1")
	assert.Contains(t, summary, "src.pdf: 3 files, 2 pages")
	assert.Contains(t, summary, "Compressed: 100 tokens (90.0% savings)")
}

func TestWriteFailureReport(t *testing.T) {
	output := t.TempDir()
	result := &Result{
		SourceDirectory: "demo",
		OutputDirectory: "demo_pdf_ready",
		FailedGroups: []GroupFailure{
			{Group: "src.pdf", Files: []string{"src/a.ts"}, Error: "disk full"},
		},
	}

	path := writeFailureReport(output, result, zap.NewNop())
	require.NotEmpty(t, path)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "src.pdf")
	assert.Contains(t, string(data), "disk full")

	// A clean follow-up run removes the stale report.
	clean := &Result{SourceDirectory: "demo", OutputDirectory: "demo_pdf_ready"}
	assert.Empty(t, writeFailureReport(output, clean, zap.NewNop()))
	assert.NoFileExists(t, path)
}
