package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const gitCommandTimeout = 10 * time.Second

func runGitCommand(repoPath string, args ...string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), gitCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoPath

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrText := strings.TrimSpace(stderr.String())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, stderrText, fmt.Errorf("git command timed out after %s", gitCommandTimeout)
		}
		return nil, stderrText, err
	}

	return stdout.Bytes(), strings.TrimSpace(stderr.String()), nil
}

func gitCommandError(err error, stderr string) error {
	if err == nil {
		return nil
	}
	if stderr != "" {
		return fmt.Errorf("git command failed: %s", stderr)
	}
	return err
}

// IsRepository reports whether the given directory is inside a git work tree.
func IsRepository(path string) bool {
	out, _, err := runGitCommand(path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// StagedDiff returns the diff of staged changes in the repository.
func StagedDiff(repoPath string) (string, error) {
	out, stderr, err := runGitCommand(repoPath, "diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("failed to get staged diff: %w", gitCommandError(err, stderr))
	}
	return string(out), nil
}

// DiffBranches returns the diff between two branches (base...compare).
func DiffBranches(repoPath, base, compare string) (string, error) {
	out, stderr, err := runGitCommand(repoPath, "diff", base+"..."+compare)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s...%s: %w", base, compare, gitCommandError(err, stderr))
	}
	return string(out), nil
}

// LogBranches returns the one-line commit log of commits reachable from
// compare but not from base.
func LogBranches(repoPath, base, compare string) (string, error) {
	out, stderr, err := runGitCommand(repoPath, "log", "--oneline", base+".."+compare)
	if err != nil {
		return "", fmt.Errorf("failed to log %s..%s: %w", base, compare, gitCommandError(err, stderr))
	}
	return string(out), nil
}
