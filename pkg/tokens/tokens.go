// Package tokens estimates token counts before and after PDF compression
// so users can judge whether the output fits a model's context window.
package tokens

import (
	"os"

	"densify/pkg/discovery"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const (
	// tokenEncoding is the GPT-4 tokenizer, a good approximation across
	// providers.
	tokenEncoding = "cl100k_base"

	// compressionRatio is the assumed 10x token reduction of the
	// vision-model ingestion path.
	compressionRatio = 10

	// Hybrid rounding thresholds: exact below small, round to 1k up to
	// large, round to 10k above.
	smallTokenThreshold = 5_000
	largeTokenThreshold = 500_000
	roundingMedium      = 1_000
	roundingLarge       = 10_000

	// Advisory floors for the post-compression estimate.
	warningThreshold = 50_000
	errorThreshold   = 10_000

	// heuristicBytesPerToken is the fallback ratio when the BPE encoding
	// cannot be loaded.
	heuristicBytesPerToken = 4
)

// Estimate summarizes a pre-compression token count.
type Estimate struct {
	TotalTokens     int            `json:"total_tokens"`
	FileTokens      map[string]int `json:"file_tokens,omitempty"`
	FileCount       int            `json:"file_count"`
	FilesWithErrors int            `json:"files_with_errors"`
	Heuristic       bool           `json:"heuristic"` // true when the bytes/4 fallback was used
}

// PostEstimate is the projected token count after compression.
type PostEstimate struct {
	EstimatedTokens  int     `json:"estimated_tokens"`
	PreTokens        int     `json:"pre_tokens"`
	Savings          int     `json:"savings"`
	SavingsPercent   float64 `json:"savings_percent"`
	CompressionRatio float64 `json:"compression_ratio"`
	Level            string  `json:"level"` // "ok", "warning", or "error"
}

// Estimator counts tokens with the cl100k_base encoding, falling back to a
// size heuristic when the encoding data is unavailable (for example when
// running offline on a cold cache).
type Estimator struct {
	enc    *tiktoken.Tiktoken
	logger *zap.Logger
}

// NewEstimator creates an Estimator. Encoding load failures are logged, not
// fatal: the estimator degrades to the heuristic.
func NewEstimator(logger *zap.Logger) *Estimator {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		logger.Warn("Could not load token encoding, using size heuristic",
			zap.String("encoding", tokenEncoding),
			zap.Error(err))
		enc = nil
	}
	return &Estimator{enc: enc, logger: logger}
}

// Count returns the token count for a string.
func (e *Estimator) Count(s string) int {
	if e.enc == nil {
		return heuristicCount(int64(len(s)))
	}
	return len(e.enc.Encode(s, nil, nil))
}

// EstimatePreCompression counts tokens across a file list, reading each
// file from disk. Unreadable files are counted by the size heuristic and
// tallied as errors.
func (e *Estimator) EstimatePreCompression(files []discovery.FileRecord) Estimate {
	est := Estimate{
		FileTokens: make(map[string]int, len(files)),
		FileCount:  len(files),
		Heuristic:  e.enc == nil,
	}

	for _, f := range files {
		var count int
		if e.enc == nil {
			count = heuristicCount(f.Size)
		} else {
			raw, err := os.ReadFile(f.Path)
			if err != nil {
				est.FilesWithErrors++
				count = heuristicCount(f.Size)
			} else {
				count = len(e.enc.Encode(string(raw), nil, nil))
			}
		}
		est.FileTokens[f.RelativePath] = count
		est.TotalTokens += count
	}

	return est
}

// EstimatePostCompression projects the token count after the 10x
// compression path, with hybrid rounding: exact under 5k, up to the nearest
// 1k between 5k and 500k, up to the nearest 10k above.
func EstimatePostCompression(preTokens int) PostEstimate {
	if preTokens <= 0 {
		return PostEstimate{Level: "error"}
	}

	compressed := ceilDiv(preTokens, compressionRatio)
	if compressed < 1 {
		compressed = 1
	}

	switch {
	case preTokens < smallTokenThreshold:
		// exact
	case preTokens <= largeTokenThreshold:
		compressed = roundUp(compressed, roundingMedium)
	default:
		compressed = roundUp(compressed, roundingLarge)
	}

	savings := preTokens - compressed
	level := "ok"
	if compressed < errorThreshold {
		level = "error"
	} else if compressed < warningThreshold {
		level = "warning"
	}

	return PostEstimate{
		EstimatedTokens:  compressed,
		PreTokens:        preTokens,
		Savings:          savings,
		SavingsPercent:   float64(savings) / float64(preTokens) * 100,
		CompressionRatio: float64(preTokens) / float64(compressed),
		Level:            level,
	}
}

func heuristicCount(sizeBytes int64) int {
	return int(sizeBytes / heuristicBytesPerToken)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func roundUp(n, increment int) int {
	return ceilDiv(n, increment) * increment
}
