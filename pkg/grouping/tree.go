package grouping

import (
	"strings"

	"densify/pkg/discovery"
)

// keyFolderNames are top-level project folders that get priority treatment.
var keyFolderNames = map[string]bool{
	"src":        true,
	"components": true,
	"api":        true,
	"services":   true,
	"utils":      true,
	"lib":        true,
	"public":     true,
	"tests":      true,
	"test":       true,
	"specs":      true,
	"config":     true,
	"scripts":    true,
}

// BuildDirectoryTree partitions files into a mapping from directory path to
// the files whose parent is that directory, plus a separate list of files
// living directly under the source root. Directory paths keep their original
// case and '/' separators; no file is dropped and none appears in both
// structures.
func BuildDirectoryTree(files []discovery.FileRecord) (map[string][]discovery.FileRecord, []discovery.FileRecord) {
	tree := make(map[string][]discovery.FileRecord)
	var rootFiles []discovery.FileRecord

	for _, f := range files {
		parts := strings.Split(f.RelativePath, "/")
		if len(parts) > 1 {
			dirPath := strings.Join(parts[:len(parts)-1], "/")
			tree[dirPath] = append(tree[dirPath], f)
		} else {
			rootFiles = append(rootFiles, f)
		}
	}

	return tree, rootFiles
}

// IdentifyKeyFolders returns the set of top-level path segments present in
// the tree that belong to the key-folder allow-list. Directories nested
// under a key segment count toward that segment; only the top segment is
// recorded.
func IdentifyKeyFolders(tree map[string][]discovery.FileRecord) map[string]bool {
	keyFolders := make(map[string]bool)

	for dirPath := range tree {
		if dirPath == "" {
			continue
		}
		top := strings.SplitN(dirPath, "/", 2)[0]
		if keyFolderNames[top] {
			keyFolders[top] = true
		}
	}

	return keyFolders
}
