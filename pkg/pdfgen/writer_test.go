package pdfgen

import (
	"os"
	"path/filepath"
	"testing"

	"densify/pkg/discovery"
	"densify/pkg/grouping"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stageFile(t *testing.T, dir, rel, content string) discovery.FileRecord {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	ext := filepath.Ext(rel)
	fileType := "no-extension"
	if ext != "" {
		fileType = ext[1:]
	}
	return discovery.FileRecord{
		Path:         path,
		RelativePath: rel,
		Size:         int64(len(content)),
		FileType:     fileType,
		Category:     discovery.CategorySource,
	}
}

func TestRenderGroupProducesPDF(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	group := grouping.PDFGroup{
		Name: "src.pdf",
		Files: []discovery.FileRecord{
			stageFile(t, srcDir, "src/b.ts", "export const b = 2\n"),
			stageFile(t, srcDir, "src/a.ts", "export const a = 1\n"),
		},
		DirectoryPath: "src",
	}

	conv, err := NewConverter(outDir, zap.NewNop())
	require.NoError(t, err)

	result, err := conv.RenderGroup(group, grouping.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "src.pdf", result.Name)
	assert.Equal(t, 2, result.FileCount)
	assert.Zero(t, result.FilesSkipped)
	assert.Positive(t, result.PageCount)
	assert.Equal(t, int64(len("export const a = 1\n")+len("export const b = 2\n")), result.OriginalBytes)

	info, err := os.Stat(result.Path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Equal(t, info.Size(), result.SizeBytes)

	stats := conv.Stats()
	assert.Equal(t, 2, stats.FilesIncluded)
	assert.Positive(t, stats.TotalSizePDF)
}

func TestRenderGroupSkipsOverflowAfterFirstFile(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	big := make([]byte, 1024*1024)
	for i := range big {
		big[i] = 'x'
	}

	group := grouping.PDFGroup{
		Name: "bulk.pdf",
		Files: []discovery.FileRecord{
			stageFile(t, srcDir, "a_first.txt", string(big)),
			stageFile(t, srcDir, "b_second.txt", string(big)),
			stageFile(t, srcDir, "c_third.txt", string(big)),
		},
	}

	conv, err := NewConverter(outDir, zap.NewNop())
	require.NoError(t, err)

	cfg := grouping.DefaultConfig()
	cfg.MaxSizePerPDFMB = 1

	result, err := conv.RenderGroup(group, cfg)
	require.NoError(t, err)

	// The first file always lands even when it alone fills the ceiling.
	assert.Equal(t, 1, result.FileCount)
	assert.Equal(t, 2, result.FilesSkipped)
	assert.Equal(t, 1, conv.Stats().FilesIncluded)
	assert.Equal(t, 2, conv.Stats().FilesSkippedSize)
}

func TestRenderGroupRecordsUnreadableFiles(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	good := stageFile(t, srcDir, "ok.ts", "const ok = true\n")
	missing := discovery.FileRecord{
		Path:         filepath.Join(srcDir, "gone.ts"),
		RelativePath: "gone.ts",
		Size:         10,
		FileType:     "ts",
	}

	group := grouping.PDFGroup{Name: "partial.pdf", Files: []discovery.FileRecord{good, missing}}

	conv, err := NewConverter(outDir, zap.NewNop())
	require.NoError(t, err)

	result, err := conv.RenderGroup(group, grouping.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FileCount)

	stats := conv.Stats()
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "gone.ts", stats.Errors[0].File)
}

func TestCompressionRatio(t *testing.T) {
	assert.Zero(t, Stats{}.CompressionRatio())
	assert.InDelta(t, 0.5, Stats{TotalSizeOriginal: 100, TotalSizePDF: 50}.CompressionRatio(), 1e-9)
}

func TestFormatContentJSON(t *testing.T) {
	out := formatContent(`{"b":1,"a":[2,3]}`, "json")
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, "  \"b\": 1")
}

func TestFormatContentJSONInvalidFallsBack(t *testing.T) {
	in := `{"broken":`
	assert.Equal(t, in, formatContent(in, "json"))
}

func TestFormatContentYAML(t *testing.T) {
	out := formatContent("a:\n    b: 1\n", "yaml")
	assert.Contains(t, out, "b: 1")
}

func TestFormatContentPassthrough(t *testing.T) {
	in := "const x = 1\n"
	assert.Equal(t, in, formatContent(in, "ts"))
}
