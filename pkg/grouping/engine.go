package grouping

import (
	"sort"
	"strings"

	"densify/pkg/discovery"
)

// GroupFiles packs files into at most MaxPDFs groups. Every input file ends
// up in exactly one group; an empty input yields an empty result. Key
// folders are handled before the remaining directories, reproducing the
// slot arithmetic order that callers depend on.
func (e *Engine) GroupFiles(files []discovery.FileRecord) []PDFGroup {
	tree, rootFiles := BuildDirectoryTree(files)

	var groups []PDFGroup

	if len(tree) <= e.cfg.MaxPDFs {
		// Within the cap: every directory becomes its own PDF.
		for _, dirPath := range sortedKeys(tree) {
			groups = append(groups, e.directoryGroup(dirPath, tree[dirPath]))
		}
	} else {
		groups = e.groupUnderPressure(tree)
	}

	groups = e.placeRootFiles(groups, rootFiles)

	// Safety check: the branches above should already respect the cap.
	if len(groups) > e.cfg.MaxPDFs {
		groups = e.applyMiscBucket(groups)
	}

	// Belt and suspenders: trim to the top cap−1 and sweep the rest into
	// misc if anything still slipped through.
	if len(groups) > e.cfg.MaxPDFs {
		sortByPriority(groups)
		top := groups[:e.cfg.MaxPDFs-1]
		var miscFiles []discovery.FileRecord
		for _, g := range groups[e.cfg.MaxPDFs-1:] {
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
		groups = top
	}

	return groups
}

// groupUnderPressure handles the over-cap case: key folders are given their
// subdirectories separately when slots allow, or collapsed into one group
// per key folder otherwise; the remaining directories are rolled up into
// their parents as needed.
func (e *Engine) groupUnderPressure(tree map[string][]discovery.FileRecord) []PDFGroup {
	keyFolders := IdentifyKeyFolders(tree)

	// Partition the tree into key-folder-owned entries and the rest.
	keyFolderGroups := make(map[string]map[string][]discovery.FileRecord)
	otherDirs := make(map[string][]discovery.FileRecord)

	for dirPath, dirFiles := range tree {
		top := strings.SplitN(dirPath, "/", 2)[0]
		if keyFolders[top] {
			if keyFolderGroups[top] == nil {
				keyFolderGroups[top] = make(map[string][]discovery.FileRecord)
			}
			keyFolderGroups[top][dirPath] = dirFiles
		} else {
			otherDirs[dirPath] = dirFiles
		}
	}

	var groups []PDFGroup

	// Key folders first: keep their subdirectories separate when the slot
	// budget allows, otherwise collapse the whole folder into one PDF. One
	// slot is held back for a potential root/misc bucket.
	for _, folderName := range sortedKeys(keyFolderGroups) {
		subdirs := keyFolderGroups[folderName]
		slots := e.cfg.MaxPDFs - len(otherDirs) - 1

		if len(subdirs) <= slots {
			for _, dirPath := range sortedKeys(subdirs) {
				groups = append(groups, e.directoryGroup(dirPath, subdirs[dirPath]))
			}
		} else {
			var allFiles []discovery.FileRecord
			for _, dirPath := range sortedKeys(subdirs) {
				allFiles = append(allFiles, subdirs[dirPath]...)
			}
			groups = append(groups, PDFGroup{
				Name:          SanitizeName(folderName) + ".pdf",
				Files:         allFiles,
				DirectoryPath: folderName,
				Priority:      DirectoryPriority(folderName, len(allFiles), totalSize(allFiles)),
			})
		}
	}

	// Remaining directories: roll up only when they would blow the cap.
	if len(groups)+len(otherDirs) > e.cfg.MaxPDFs {
		otherDirs = e.RollUpDirectories(otherDirs)
	}
	for _, dirPath := range sortedKeys(otherDirs) {
		groups = append(groups, e.directoryGroup(dirPath, otherDirs[dirPath]))
	}

	return groups
}

// placeRootFiles assigns files living directly under the source root. With
// a free slot they get their own "root_config.pdf"; otherwise they join an
// existing misc bucket, or the lowest-priority group is replaced by a misc
// bucket absorbing both its files and the root files.
func (e *Engine) placeRootFiles(groups []PDFGroup, rootFiles []discovery.FileRecord) []PDFGroup {
	if len(rootFiles) == 0 {
		return groups
	}

	slotsRemaining := e.cfg.MaxPDFs - len(groups)
	if slotsRemaining > 0 {
		return append(groups, PDFGroup{
			Name:          "root_config.pdf",
			Files:         rootFiles,
			DirectoryPath: "",
			Priority:      50,
		})
	}

	// No slots left: extend an existing misc bucket when there is one. The
	// group value is replaced rather than its Files slice mutated.
	for i, g := range groups {
		if g.Name == "misc.pdf" {
			merged := make([]discovery.FileRecord, 0, len(g.Files)+len(rootFiles))
			merged = append(merged, g.Files...)
			merged = append(merged, rootFiles...)
			groups[i] = PDFGroup{
				Name:          g.Name,
				Files:         merged,
				DirectoryPath: g.DirectoryPath,
				Priority:      g.Priority,
			}
			return groups
		}
	}

	// Demote the lowest-priority group into a misc bucket holding both its
	// files and the root files.
	if len(groups) > 0 {
		sortByPriority(groups)
		last := groups[len(groups)-1]
		miscFiles := make([]discovery.FileRecord, 0, len(last.Files)+len(rootFiles))
		miscFiles = append(miscFiles, last.Files...)
		miscFiles = append(miscFiles, rootFiles...)
		groups[len(groups)-1] = PDFGroup{
			Name:          "misc.pdf",
			Files:         miscFiles,
			DirectoryPath: "misc",
			Priority:      0,
		}
	}

	return groups
}

// directoryGroup builds the PDFGroup for a single directory entry.
func (e *Engine) directoryGroup(dirPath string, dirFiles []discovery.FileRecord) PDFGroup {
	return PDFGroup{
		Name:          SanitizeName(dirPath) + ".pdf",
		Files:         dirFiles,
		DirectoryPath: dirPath,
		Priority:      DirectoryPriority(dirPath, len(dirFiles), totalSize(dirFiles)),
	}
}

// totalSize sums the byte sizes of a file list.
func totalSize(files []discovery.FileRecord) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

// sortedKeys returns the keys of m in ascending order. Map iteration order
// is random in Go; every place the engine walks a map goes through this so
// runs are reproducible.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
