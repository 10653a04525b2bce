// Package workspace implements pipeline stage 1 (spec §4.1): acquiring an
// isolated scratch directory holding a shallow checkout of the requested
// repository, and releasing it unconditionally when the request ends.
//
// The clone itself shells out to the configured git binary (CommandContext,
// CombinedOutput, stderr classified into user-facing reasons) rather than
// reaching for an embedded Go git implementation.
package workspace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/codeatlas-dev/codeatlas/internal/apierr"
	"github.com/codeatlas-dev/codeatlas/internal/config"
)

// FetchTimeout is the hard wall-clock budget for the shallow fetch (spec §4.1).
const FetchTimeout = 120 * time.Second

const dirPrefix = "codeatlas-"

// Workspace is an exclusive scratch directory holding a checked-out tree.
type Workspace struct {
	Root   string
	Commit string // resolved HEAD, empty if unresolvable
}

var scpLikeURL = regexp.MustCompile(`^[\w.-]+@[\w.-]+:`)

// NormalizeURL prepends https:// when raw has no recognized transport
// scheme or scp-like user@host: form (spec §4.1).
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, scheme := range []string{"http://", "https://", "git://", "ssh://"} {
		if strings.HasPrefix(raw, scheme) {
			return raw
		}
	}
	if scpLikeURL.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

func randomToken() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Acquire creates a fresh scratch directory and shallow-clones repoURL
// (optionally at branch) into it.
func Acquire(ctx context.Context, cfg config.Config, repoURL, branch string) (*Workspace, error) {
	token, err := randomToken()
	if err != nil {
		return nil, apierr.Wrap(apierr.InternalError, "failed to generate workspace token", err)
	}
	root := filepath.Join(cfg.ScratchRoot, dirPrefix+token)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apierr.Wrap(apierr.InternalError, "failed to create scratch directory", err)
	}

	ws := &Workspace{Root: root}
	if err := clone(ctx, cfg.GitBin, repoURL, branch, root); err != nil {
		_ = Release(ws)
		return nil, err
	}

	ws.Commit = resolveHead(ctx, cfg.GitBin, root)
	return ws, nil
}

func clone(ctx context.Context, gitBin, repoURL, branch, dest string) error {
	fetchCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	args := []string{
		"clone",
		"--depth", "1",
		"--single-branch",
		"--no-tags",
		"-c", "core.longpaths=true",
	}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, NormalizeURL(repoURL), dest)

	cmd := exec.CommandContext(fetchCtx, gitBin, args...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if fetchCtx.Err() == context.DeadlineExceeded {
		return apierr.New(apierr.Timeout, "repository fetch exceeded the 120s budget")
	}

	stderr := string(out)
	if isLongPathOnlyFailure(stderr) {
		return nil
	}
	return apierr.Wrap(apierr.CloneFailed, classifyCloneFailure(stderr), err)
}

func isLongPathOnlyFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	if !strings.Contains(lower, "filename too long") && !strings.Contains(lower, "unable to create file") {
		return false
	}
	return !strings.Contains(lower, "fatal: could not read from remote repository") &&
		!strings.Contains(lower, "repository not found") &&
		!strings.Contains(lower, "could not resolve host")
}

func classifyCloneFailure(stderr string) string {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "repository not found"), strings.Contains(lower, "not found"):
		return "not-found: " + strings.TrimSpace(stderr)
	case strings.Contains(lower, "permission denied"), strings.Contains(lower, "authentication failed"):
		return "permission-denied: " + strings.TrimSpace(stderr)
	case strings.Contains(lower, "could not resolve host"), strings.Contains(lower, "network is unreachable"):
		return "network-failure: " + strings.TrimSpace(stderr)
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"):
		return "timeout: " + strings.TrimSpace(stderr)
	default:
		return "other: " + strings.TrimSpace(stderr)
	}
}

func resolveHead(ctx context.Context, gitBin, dir string) string {
	cmd := exec.CommandContext(ctx, gitBin, "-C", dir, "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Release deletes the workspace directory tree unconditionally and
// returns any removal error for the caller to log. The pipeline discards
// it: a scratch directory that fails to clean up does not affect a
// response that has already been computed (spec §4.1, §7).
func Release(ws *Workspace) error {
	if ws == nil || ws.Root == "" {
		return nil
	}
	clearReadOnly(ws.Root)
	return os.RemoveAll(ws.Root)
}

func clearReadOnly(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		_ = os.Chmod(path, 0o700|info.Mode()&0o077)
		return nil
	})
}
