package main

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIgnoreRules(t *testing.T) (*IgnoreRules, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewIgnoreRules(fs, zap.NewNop()), fs
}

func writeTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestShouldIgnoreGitignorePatterns(t *testing.T) {
	ir, fs := newTestIgnoreRules(t)
	writeTestFile(t, fs, "/proj/.gitignore", "*.log\n!keep.log\n")

	assert.True(t, ir.ShouldIgnore("/proj", "/proj/app.log"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/sub/deep.log"))
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/app.txt"))

	// Later negation wins over the earlier wildcard.
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/keep.log"))
}

func TestShouldIgnoreDefaultsWithoutGitignore(t *testing.T) {
	ir, _ := newTestIgnoreRules(t)

	assert.True(t, ir.ShouldIgnore("/proj", "/proj/node_modules"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/yarn.lock"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/bundle.min.js"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/.DS_Store"))
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/main.go"))
}

func TestShouldIgnoreDirectoryOnlyPatterns(t *testing.T) {
	ir, fs := newTestIgnoreRules(t)
	writeTestFile(t, fs, "/proj/.gitignore", "logs/\n")

	// A trailing slash on the candidate marks it as a directory.
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/logs/"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/logs/x.log"))

	// A plain file named "logs" is not matched by the directory pattern.
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/logs"))
}

func TestShouldIgnoreBaseItself(t *testing.T) {
	ir, _ := newTestIgnoreRules(t)

	// The base directory can never be ignored by its own rules.
	assert.False(t, ir.ShouldIgnore("/proj", "/proj"))
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/"))
}

func TestShouldIgnoreNoIgnoreMode(t *testing.T) {
	ir, fs := newTestIgnoreRules(t)
	ir.noIgnore = true
	writeTestFile(t, fs, "/proj/.gitignore", "*.log\n")

	// .gitignore content is skipped but the built-in defaults still hold.
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/app.log"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/node_modules"))
}

func TestRuleSetCaching(t *testing.T) {
	ir, fs := newTestIgnoreRules(t)
	writeTestFile(t, fs, "/proj/.gitignore", "*.log\n")

	assert.True(t, ir.ShouldIgnore("/proj", "/proj/app.log"))

	// The compiled rule set is cached, so a rewrite is invisible until the
	// cache is cleared.
	writeTestFile(t, fs, "/proj/.gitignore", "*.tmp\n")
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/app.log"))
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/scratch.tmp"))

	ir.ClearCache()
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/app.log"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/scratch.tmp"))
}

// failingOpenFs makes Open fail with a permission error for paths ending
// in failSuffix, passing everything else through.
type failingOpenFs struct {
	afero.Fs
	failSuffix string
}

func (f *failingOpenFs) Open(name string) (afero.File, error) {
	if strings.HasSuffix(name, f.failSuffix) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.Open(name)
}

func TestRuleSetUnreadableGitignore(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeTestFile(t, mem, "/proj/.gitignore", "*.log\n")
	ir := NewIgnoreRules(&failingOpenFs{Fs: mem, failSuffix: ".gitignore"}, zap.NewNop())

	// An unreadable .gitignore degrades to the defaults alone.
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/app.log"))
	assert.True(t, ir.ShouldIgnore("/proj", "/proj/node_modules"))
}

func TestRuleSetPerDirectory(t *testing.T) {
	ir, fs := newTestIgnoreRules(t)
	writeTestFile(t, fs, "/proj/sub/.gitignore", "secret.txt\n")

	// Rules load per directory: sub's rules don't leak to the parent.
	assert.True(t, ir.ShouldIgnore("/proj/sub", "/proj/sub/secret.txt"))
	assert.False(t, ir.ShouldIgnore("/proj", "/proj/secret.txt"))
}
