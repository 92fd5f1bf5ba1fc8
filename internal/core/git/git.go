// Package git provides the read-only git queries the uncommitted-work check
// runs against site directories.
package git

import "context"

// Git defines the git operations pl needs.
type Git interface {
	// IsRepo reports whether dir is inside a git work tree.
	IsRepo(ctx context.Context, dir string) bool
	// Branch returns the current branch name, or short commit SHA if in detached HEAD state.
	Branch(ctx context.Context, dir string) (string, error)
	// Changes returns the number of modified, staged and untracked paths in dir.
	Changes(ctx context.Context, dir string) (int, error)
	// Unpushed returns the number of commits on HEAD missing from its upstream.
	// A branch without an upstream reports zero.
	Unpushed(ctx context.Context, dir string) (int, error)
}
