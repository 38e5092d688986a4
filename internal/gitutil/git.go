package gitutil

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var remoteRe = regexp.MustCompile(`[:/](?P<owner>[^/]+)/(?P<repo>[^/]+?)(?:\.git)?$`)

// InferRepoName returns "owner/repo" from the origin remote, or the
// directory name.
func InferRepoName(repoRoot string) string {
	out, err := git(repoRoot, "remote", "get-url", "origin")
	if err != nil {
		return filepath.Base(repoRoot)
	}
	m := remoteRe.FindStringSubmatch(strings.TrimSpace(out))
	if len(m) == 0 {
		return filepath.Base(repoRoot)
	}
	return m[1] + "/" + m[2]
}

// ResolveCommit resolves commitRef, falling back to HEAD, then "unknown".
func ResolveCommit(repoRoot, commitRef string) string {
	if commitRef != "" {
		if out, err := git(repoRoot, "rev-parse", commitRef); err == nil {
			return strings.TrimSpace(out)
		}
	}
	out, err := git(repoRoot, "rev-parse", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}

// Dirty returns those of paths (relative to repoRoot) that have uncommitted
// changes. Outside a git work tree nothing is dirty.
func Dirty(repoRoot string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	out, err := git(repoRoot, args...)
	if err != nil {
		return nil
	}
	return parsePorcelain(out)
}

// parsePorcelain extracts paths from "XY path" or "XY old -> new" lines.
func parsePorcelain(out string) []string {
	var dirty []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		p := line[3:]
		if i := strings.Index(p, " -> "); i >= 0 {
			p = p[i+4:]
		}
		dirty = append(dirty, strings.Trim(p, `"`))
	}
	return dirty
}

func git(repoRoot string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", repoRoot}, args...)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}
