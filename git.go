package main

import (
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// isGitURL reports whether input names a remote git repository rather than
// a local path. Plain https URLs are ambiguous and treated as web URLs.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") || strings.HasPrefix(input, "git@")
}

// cloneRepo shallow-clones the default branch of url into a fresh temp
// directory and returns its path. Callers own cleanup.
func cloneRepo(url string) (string, error) {
	tempDir, err := os.MkdirTemp("", "parley-git-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	logger.Info("cloning repository", zap.String("url", url), zap.String("dir", tempDir))
	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return tempDir, nil
}
