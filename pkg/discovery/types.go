package discovery

// FileRecord holds the metadata for a single discovered file. Records are
// immutable once discovery completes; downstream stages consume them by
// reference.
type FileRecord struct {
	Path         string // Absolute path on disk
	RelativePath string // Path relative to the source root, '/'-separated
	Size         int64  // Size in bytes
	FileType     string // Extension without the leading dot, or "no-extension"
	Category     string // One of the Category* constants
}

// File categories assigned from extension and filename.
const (
	CategorySource        = "source"
	CategoryConfig        = "config"
	CategoryStyle         = "style"
	CategoryMarkup        = "markup"
	CategoryDocumentation = "documentation"
	CategoryOther         = "other"
)

// sourceExtensions covers the languages the converter understands as code.
var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".pyx": true,
	".java": true, ".kt": true,
	".go": true, ".rs": true, ".cpp": true, ".c": true, ".h": true, ".hpp": true,
	".rb": true, ".php": true, ".swift": true, ".dart": true,
}

var configExtensions = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".ini": true, ".cfg": true, ".conf": true,
	".xml": true, ".properties": true, ".env": true, ".config": true,
}

var styleExtensions = map[string]bool{
	".css": true, ".scss": true, ".sass": true, ".less": true, ".styl": true,
}

var markupExtensions = map[string]bool{
	".html": true, ".htm": true, ".xhtml": true,
	".md": true, ".markdown": true, ".txt": true,
}

// supportedExtension reports whether the extension belongs to any of the
// allow-listed sets above.
func supportedExtension(ext string) bool {
	return sourceExtensions[ext] || configExtensions[ext] ||
		styleExtensions[ext] || markupExtensions[ext]
}

// defaultExcludedDirs are directory names skipped during scanning regardless
// of gitignore rules. Mirrors the usual build/VCS/cache noise.
var defaultExcludedDirs = map[string]bool{
	"node_modules":  true,
	"dist":          true,
	"build":         true,
	"out":           true,
	".git":          true,
	".svn":          true,
	".hg":           true,
	"__pycache__":   true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	".env":          true,
	".idea":         true,
	".vscode":       true,
	".vs":           true,
	".gradle":       true,
	"gradle":        true,
	"bin":           true,
	"obj":           true,
	".next":         true,
	".nuxt":         true,
	"coverage":      true,
	".nyc_output":   true,
	"vendor":        true,
	"target":        true,
}
