package grouping

import (
	"sort"
	"strings"

	"densify/pkg/discovery"
)

// RollUpDirectories merges child directories into their parents until the
// tree holds at most e.cfg.MaxPDFs entries, working from the deepest
// directories up. A child only merges when its parent path already exists
// in the tree; shallow single-segment directories have no parent to merge
// into and are left as-is even if the cap is still exceeded — the
// orchestrator enforces the cap later. The input map is not mutated.
func (e *Engine) RollUpDirectories(tree map[string][]discovery.FileRecord) map[string][]discovery.FileRecord {
	if len(tree) <= e.cfg.MaxPDFs {
		return tree
	}

	// Snapshot the keys per depth before any mutation so iteration never
	// touches a map being modified.
	depthMap := make(map[int][]string)
	maxDepth := 0
	for dirPath := range tree {
		depth := len(strings.Split(dirPath, "/"))
		depthMap[depth] = append(depthMap[depth], dirPath)
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	merged := make(map[string][]discovery.FileRecord, len(tree))
	for dirPath, files := range tree {
		merged[dirPath] = files
	}

	// Deepest first; sorted path order within a depth for determinism.
	for depth := maxDepth; depth >= 1; depth-- {
		if len(merged) <= e.cfg.MaxPDFs {
			break
		}

		dirsAtDepth := depthMap[depth]
		sort.Strings(dirsAtDepth)

		for _, dirPath := range dirsAtDepth {
			if len(merged) <= e.cfg.MaxPDFs {
				break
			}
			if _, ok := merged[dirPath]; !ok {
				continue
			}

			parts := strings.Split(dirPath, "/")
			if len(parts) <= 1 {
				continue // No parent to merge into
			}
			parentPath := strings.Join(parts[:len(parts)-1], "/")

			if _, ok := merged[parentPath]; ok {
				merged[parentPath] = append(merged[parentPath], merged[dirPath]...)
				delete(merged, dirPath)
			}
		}
	}

	return merged
}

// applyMiscBucket keeps the top (MaxPDFs − 1) groups by priority and merges
// every remaining group's files into a single "misc.pdf" group appended
// after them. When the merged remainder is empty no misc group is created,
// so the result never contains an empty group.
func (e *Engine) applyMiscBucket(groups []PDFGroup) []PDFGroup {
	sorted := make([]PDFGroup, len(groups))
	copy(sorted, groups)
	sortByPriority(sorted)

	keep := e.cfg.MaxPDFs - 1
	if keep > len(sorted) {
		keep = len(sorted)
	}
	if keep < 0 {
		keep = 0
	}
	top := sorted[:keep]

	var miscFiles []discovery.FileRecord
	for _, g := range sorted[keep:] {
		miscFiles = append(miscFiles, g.Files...)
	}

	if len(miscFiles) > 0 {
		top = append(top, PDFGroup{
			Name:          "misc.pdf",
			Files:         miscFiles,
			DirectoryPath: "misc",
			Priority:      0,
		})
	}

	return top
}

// sortByPriority orders groups by descending priority. Stable so that
// equal-priority groups keep their insertion order across runs.
func sortByPriority(groups []PDFGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Priority > groups[j].Priority
	})
}
