package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

// Stats aggregates counts gathered while scanning the source tree.
type Stats struct {
	TotalScanned int            // Every file encountered, supported or not
	TotalFiles   int            // Files that produced a FileRecord
	TotalSize    int64          // Combined size of discovered files
	ByType       map[string]int // FileRecord count per file type
	ByCategory   map[string]int // FileRecord count per category
	Unsupported  map[string]int // Skipped-extension census
}

// Scanner discovers and categorizes the files of a codebase.
type Scanner struct {
	root   string
	extra  *ignore.GitIgnore // user-supplied exclusion patterns, may be nil
	cache  *gitIgnoreCache
	logger *zap.Logger
	stats  Stats
}

// NewScanner creates a Scanner rooted at root. Extra exclusion patterns use
// gitignore syntax and are applied on top of the built-in exclusion set and
// any .gitignore files found in the tree.
func NewScanner(root string, exclusions []string, logger *zap.Logger) (*Scanner, error) {
	absRoot, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("source directory does not exist: %s", absRoot)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", absRoot)
	}

	s := &Scanner{
		root:   absRoot,
		cache:  newGitIgnoreCache(absRoot),
		logger: logger,
	}
	if len(exclusions) > 0 {
		s.extra = ignore.CompileIgnoreLines(exclusions...)
		logger.Debug("Compiled user exclusion patterns", zap.Int("count", len(exclusions)))
	}
	return s, nil
}

// Root returns the absolute source root the scanner operates on.
func (s *Scanner) Root() string {
	return s.root
}

// Stats returns the counters collected by the most recent Discover call.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Discover walks the source tree and returns a FileRecord for every
// qualifying, non-empty file. Directories in the built-in exclusion set,
// paths matched by .gitignore rules or user patterns, binary files, and
// unsupported extensions are skipped.
func (s *Scanner) Discover() ([]FileRecord, error) {
	s.stats = Stats{
		ByType:      make(map[string]int),
		ByCategory:  make(map[string]int),
		Unsupported: make(map[string]int),
	}

	var records []FileRecord
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Error accessing path during discovery", zap.String("path", path), zap.Error(err))
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != s.root && defaultExcludedDirs[name] {
				return filepath.SkipDir
			}
			relPath, _ := filepath.Rel(s.root, path)
			if path != s.root && s.excluded(path, relPath) {
				return filepath.SkipDir
			}
			s.cache.tryLoad(path)
			return nil
		}

		s.stats.TotalScanned++

		relPath, _ := filepath.Rel(s.root, path)
		relPath = filepath.ToSlash(relPath)
		if s.excluded(path, relPath) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtension(ext) {
			s.stats.Unsupported[ext]++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("Failed to stat file during discovery", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.Size() == 0 {
			return nil // Empty files carry no content worth rendering
		}

		binary, err := isBinaryFile(path)
		if err != nil {
			s.logger.Warn("Failed to sniff file content", zap.String("path", path), zap.Error(err))
			return nil
		}
		if binary {
			s.logger.Debug("Skipping binary file", zap.String("path", path))
			return nil
		}

		record := FileRecord{
			Path:         path,
			RelativePath: relPath,
			Size:         info.Size(),
			FileType:     fileType(path),
			Category:     categorize(path),
		}
		records = append(records, record)

		s.stats.TotalFiles++
		s.stats.TotalSize += record.Size
		s.stats.ByType[record.FileType]++
		s.stats.ByCategory[record.Category]++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory: %w", err)
	}

	s.logger.Info("File discovery complete",
		zap.Int("scanned", s.stats.TotalScanned),
		zap.Int("discovered", s.stats.TotalFiles),
		zap.Int64("totalSizeBytes", s.stats.TotalSize))
	return records, nil
}

// excluded checks user patterns and all applicable .gitignore rules.
func (s *Scanner) excluded(absPath, relPath string) bool {
	if s.extra != nil && s.extra.MatchesPath(filepath.ToSlash(relPath)) {
		return true
	}
	return s.cache.shouldIgnore(absPath)
}

// fileType derives the type tag from the extension.
func fileType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "no-extension"
	}
	return ext[1:]
}

// categorize assigns a category from the extension and, for markup, the
// filename. README/LICENSE/CHANGELOG-style files count as documentation.
func categorize(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case sourceExtensions[ext]:
		return CategorySource
	case configExtensions[ext]:
		return CategoryConfig
	case styleExtensions[ext]:
		return CategoryStyle
	case markupExtensions[ext]:
		name := strings.ToLower(filepath.Base(path))
		if name == "readme.md" || name == "readme.txt" || name == "license" || name == "changelog" {
			return CategoryDocumentation
		}
		return CategoryMarkup
	default:
		return CategoryOther
	}
}

// InventorySummary renders a short human-readable summary of the scan.
func (s *Scanner) InventorySummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source Directory: %s\n", filepath.Base(s.root))
	fmt.Fprintf(&b, "Total Files Scanned: %d\n", s.stats.TotalScanned)
	fmt.Fprintf(&b, "Total Files Found: %d\n", s.stats.TotalFiles)
	fmt.Fprintf(&b, "Total Size: %s\n", FormatSize(s.stats.TotalSize))

	if len(s.stats.ByCategory) > 0 {
		b.WriteString("\nBreakdown by Category:\n")
		for _, kv := range sortedCounts(s.stats.ByCategory) {
			fmt.Fprintf(&b, "  %-15s: %4d files\n", kv.key, kv.count)
		}
	}
	if len(s.stats.ByType) > 0 {
		b.WriteString("\nBreakdown by Type:\n")
		byType := sortedCounts(s.stats.ByType)
		if len(byType) > 10 {
			byType = byType[:10]
		}
		for _, kv := range byType {
			fmt.Fprintf(&b, "  .%-10s: %4d files\n", kv.key, kv.count)
		}
	}
	if len(s.stats.Unsupported) > 0 {
		b.WriteString("\nUnsupported File Types Found:\n")
		for _, kv := range sortedCounts(s.stats.Unsupported) {
			label := kv.key
			if label == "" {
				label = "(no extension)"
			}
			fmt.Fprintf(&b, "  %-15s: %4d file(s)\n", label, kv.count)
		}
	}
	return b.String()
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders a counter map by descending count, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

// FormatSize formats bytes into a human-readable size.
func FormatSize(sizeBytes int64) string {
	size := float64(sizeBytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.2f TB", size)
}
