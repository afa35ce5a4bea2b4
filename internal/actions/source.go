// SPDX-License-Identifier: MPL-2.0

package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type (
	// SourceFetcher obtains the OpenMC source checkout.
	SourceFetcher interface {
		// Clone checks out url into dir. An empty ref means the remote's
		// default branch.
		Clone(ctx context.Context, url, ref, dir string) error
		// Inspect reports the checked-out revision of an existing dir.
		Inspect(dir string) (string, error)
	}

	// GitSource clones with go-git, so no git binary is required.
	GitSource struct {
		// Progress receives clone progress. Nil discards it.
		Progress io.Writer
	}

	// DrySource reports clones without performing them.
	DrySource struct {
		Out io.Writer
	}
)

// Clone clones url into dir with submodules. A ref is tried as a branch
// first and then as a tag. dir must not exist or be an empty directory; only
// a dir created by this call is removed after a failed attempt.
func (g *GitSource) Clone(ctx context.Context, url, ref, dir string) error {
	info, err := os.Lstat(dir)
	existed := err == nil
	if existed && !info.IsDir() {
		return fmt.Errorf("failed to clone %s: %s exists and is not a directory", url, dir)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	refs := []plumbing.ReferenceName{""}
	if ref != "" {
		refs = []plumbing.ReferenceName{plumbing.NewBranchReferenceName(ref), plumbing.NewTagReferenceName(ref)}
	}

	var lastErr error
	for _, name := range refs {
		_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:               url,
			ReferenceName:     name,
			SingleBranch:      name != "",
			RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
			Progress:          g.Progress,
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if !existed {
			// a failed clone leaves a partial directory behind
			_ = os.RemoveAll(dir) //nolint:errcheck // Best-effort cleanup before retry
		}
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("failed to clone %s: %w", url, lastErr)
}

// Inspect opens dir as a git repository and returns its short HEAD hash.
func (g *GitSource) Inspect(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%s is not a git repository", dir)
		}
		return "", fmt.Errorf("failed to open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	return head.Hash().String()[:7], nil
}

// Clone prints the clone it would perform.
func (d *DrySource) Clone(_ context.Context, url, ref, dir string) error {
	if ref == "" {
		ref = "default branch"
	}
	fmt.Fprintf(d.Out, "would clone: %s (%s) into %s\n", url, ref, dir)
	return nil
}

// Inspect never fails in a dry run.
func (d *DrySource) Inspect(string) (string, error) {
	return "unknown", nil
}
