package discovery

import (
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// gitIgnoreCache manages nested .gitignore files throughout a project.
// It lazily loads gitignore files as directories are visited and checks
// paths against all applicable rules.
type gitIgnoreCache struct {
	root    string
	cache   map[string]*ignore.GitIgnore // abs dir path -> compiled gitignore (only dirs WITH gitignores)
	visited map[string]struct{}          // tracks visited dirs to avoid re-checking for .gitignore
}

// newGitIgnoreCache creates a cache rooted at the project root directory.
func newGitIgnoreCache(root string) *gitIgnoreCache {
	absRoot, _ := filepath.Abs(root)
	c := &gitIgnoreCache{
		root:    absRoot,
		cache:   make(map[string]*ignore.GitIgnore),
		visited: make(map[string]struct{}),
	}
	c.tryLoad(absRoot)
	return c
}

// tryLoad attempts to load a .gitignore from dir if not already visited.
// Only adds to cache if a valid .gitignore exists.
func (c *gitIgnoreCache) tryLoad(dir string) {
	if _, seen := c.visited[dir]; seen {
		return
	}
	c.visited[dir] = struct{}{}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if gi, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
		c.cache[dir] = gi
	}
}

// shouldIgnore checks if a path should be ignored based on all applicable
// .gitignore files. absPath must be inside the cache's root.
func (c *gitIgnoreCache) shouldIgnore(absPath string) bool {
	// Fast path: no gitignores loaded
	if len(c.cache) == 0 {
		return false
	}

	// Walk up from the file's parent to root, checking each cached gitignore
	dir := filepath.Dir(absPath)
	for {
		if gi, ok := c.cache[dir]; ok {
			relToGitignore, _ := filepath.Rel(dir, absPath)
			if gi.MatchesPath(relToGitignore) {
				return true
			}
		}

		if dir == c.root {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Filesystem root, guard against infinite loop
			break
		}
		dir = parent
	}

	return false
}
