// Package paths provides path resolution utilities for mcpmerge.
//
// It wraps github.com/adrg/xdg for the tool's own configuration directory
// and normalizes operator-supplied target paths, expanding a leading "~"
// to the home directory:
//
//	target, err := paths.Clean("~/.claude.json")
//
// Directory creation goes through [EnsureDir] and [EnsureParentDir], which
// are idempotent.
package paths
