package tokens

import (
	"testing"

	"densify/pkg/discovery"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func heuristicEstimator() *Estimator {
	return &Estimator{logger: zap.NewNop()}
}

func TestEstimatePostCompression(t *testing.T) {
	tests := []struct {
		name       string
		preTokens  int
		wantTokens int
		wantLevel  string
	}{
		{"exact below small threshold", 4_000, 400, "error"},
		{"small result stays exact", 1_234, 124, "error"},
		{"rounds up to nearest 1k", 50_000, 5_000, "error"},
		{"mid range rounds up", 123_456, 13_000, "warning"},
		{"warning band upper edge", 499_000, 50_000, "ok"},
		{"large rounds up to nearest 10k", 1_000_000, 100_000, "ok"},
		{"large odd value", 1_234_567, 130_000, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimatePostCompression(tt.preTokens)
			assert.Equal(t, tt.wantTokens, got.EstimatedTokens)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.preTokens, got.PreTokens)
			assert.Equal(t, tt.preTokens-tt.wantTokens, got.Savings)
			assert.Greater(t, got.CompressionRatio, 1.0)
		})
	}
}

func TestEstimatePostCompressionZeroInput(t *testing.T) {
	got := EstimatePostCompression(0)
	assert.Zero(t, got.EstimatedTokens)
	assert.Equal(t, "error", got.Level)
}

func TestEstimatePostCompressionNeverZeroForPositiveInput(t *testing.T) {
	got := EstimatePostCompression(3)
	assert.Equal(t, 1, got.EstimatedTokens)
}

func TestHeuristicCount(t *testing.T) {
	assert.Equal(t, 0, heuristicCount(3))
	assert.Equal(t, 1, heuristicCount(4))
	assert.Equal(t, 250, heuristicCount(1000))
}

func TestCountHeuristicFallback(t *testing.T) {
	est := heuristicEstimator()
	assert.Equal(t, 4, est.Count("0123456789abcdef"))
}

func TestEstimatePreCompressionHeuristic(t *testing.T) {
	est := heuristicEstimator()
	files := []discovery.FileRecord{
		{RelativePath: "a.ts", Size: 400},
		{RelativePath: "b.ts", Size: 800},
	}

	got := est.EstimatePreCompression(files)

	assert.True(t, got.Heuristic)
	assert.Equal(t, 2, got.FileCount)
	assert.Equal(t, 100, got.FileTokens["a.ts"])
	assert.Equal(t, 200, got.FileTokens["b.ts"])
	assert.Equal(t, 300, got.TotalTokens)
	assert.Zero(t, got.FilesWithErrors)
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 1000, roundUp(1, 1000))
	assert.Equal(t, 1000, roundUp(1000, 1000))
	assert.Equal(t, 2000, roundUp(1001, 1000))
	assert.Equal(t, 130_000, roundUp(123_457, 10_000))
}
