package grouping

import "strings"

// DirectoryPriority scores a directory for cap-pressure decisions. Higher
// means more important, i.e. kept separate longer. Pure function of its
// inputs:
//
//   - +1000 when the top-level segment is a key folder
//   - +10 per path segment (deeper directories stay granular)
//   - +file count, capped at 100
//   - +size in KB, capped at 500
func DirectoryPriority(dirPath string, fileCount int, totalBytes int64) int {
	priority := 0

	var parts []string
	if dirPath != "" {
		parts = strings.Split(dirPath, "/")
	}
	if len(parts) > 0 && keyFolderNames[parts[0]] {
		priority += 1000
	}

	priority += len(parts) * 10

	if fileCount > 100 {
		fileCount = 100
	}
	priority += fileCount

	sizeKB := totalBytes / 1024
	if sizeKB > 500 {
		sizeKB = 500
	}
	priority += int(sizeKB)

	return priority
}

// SanitizeName converts a directory path into a PDF base name: '/' becomes
// '_', leading and trailing underscores are stripped, and runs of
// underscores collapse to one. An empty result becomes "misc".
func SanitizeName(dirPath string) string {
	name := strings.ReplaceAll(dirPath, "/", "_")
	name = strings.Trim(name, "_")
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	if name == "" {
		return "misc"
	}
	return name
}
