package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// alwaysSkipDirNames are directory entries the walker never descends into,
// independent of any .gitignore content.
var alwaysSkipDirNames = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"node_modules": {},
	"vendor":       {},
	"target":       {},
	"dist":         {},
	"build":        {},
	"__pycache__":  {},
	".idea":        {},
	".vscode":      {},
	".next":        {},
	"coverage":     {},
}

// defaultIgnorePatterns seed every compiled rule set before the
// directory's own .gitignore is merged in.
var defaultIgnorePatterns = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"target",
	"dist",
	"build",
	"__pycache__",
	".idea",
	".vscode",
	".next",
	"coverage",
	".gitignore",
	".gitattributes",
	".DS_Store",
	"*.min.js",
	"*.lock",
	"package-lock.json",
}

// IgnoreRules loads and caches one compiled rule set per directory. A rule
// set combines the built-in default exclusions with that directory's
// .gitignore, and once compiled it is reused for the process lifetime.
type IgnoreRules struct {
	fs       afero.Fs
	logger   *zap.Logger
	noIgnore bool // skip .gitignore files, keep the built-in defaults

	mu    sync.Mutex
	cache map[string]*gitignore.GitIgnore
}

func NewIgnoreRules(fs afero.Fs, logger *zap.Logger) *IgnoreRules {
	return &IgnoreRules{
		fs:     fs,
		logger: logger,
		cache:  make(map[string]*gitignore.GitIgnore),
	}
}

// RuleSet returns the compiled matcher for dir, building and caching it on
// first use. A missing .gitignore is normal; an unreadable one is reported
// as a warning and the defaults are used alone.
func (ir *IgnoreRules) RuleSet(dir string) *gitignore.GitIgnore {
	ir.mu.Lock()
	defer ir.mu.Unlock()

	if rs, ok := ir.cache[dir]; ok {
		return rs
	}

	lines := make([]string, 0, len(defaultIgnorePatterns))
	lines = append(lines, defaultIgnorePatterns...)

	if !ir.noIgnore {
		data, err := afero.ReadFile(ir.fs, filepath.Join(dir, ".gitignore"))
		switch {
		case err == nil:
			lines = append(lines, strings.Split(string(data), "\n")...)
		case os.IsNotExist(err):
			// no .gitignore in this directory
		default:
			ir.logger.Warn("could not read .gitignore, using default exclusions only",
				zap.String("dir", dir), zap.Error(err))
		}
	}

	rs := gitignore.CompileIgnoreLines(lines...)
	ir.cache[dir] = rs
	return rs
}

// ShouldIgnore reports whether candidate, evaluated relative to base,
// matches base's rule set. A trailing slash marks the candidate as a
// directory so that directory-only patterns like "logs/" apply; the slash
// is re-appended after normalization because path.Clean strips it. Later
// patterns win, so negations behave the way .gitignore files define them.
func (ir *IgnoreRules) ShouldIgnore(base, candidate string) bool {
	isDir := strings.HasSuffix(candidate, "/") || strings.HasSuffix(candidate, `\`)
	rel := normalizeForMatching(candidate, base)
	if rel == "." {
		return false
	}
	if isDir {
		rel += "/"
	}
	return ir.RuleSet(base).MatchesPath(rel)
}

// ClearCache drops every cached rule set.
func (ir *IgnoreRules) ClearCache() {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	ir.cache = make(map[string]*gitignore.GitIgnore)
}
