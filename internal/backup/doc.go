// Package backup writes pre-modification snapshots of configuration files.
//
// Before mcpmerge overwrites an existing file it copies the exact bytes it
// read to a sibling path formed by appending [Suffix]:
//
//	~/.claude.json      target
//	~/.claude.json.bak  snapshot of the previous contents
//
// Only one generation is kept; each snapshot replaces the last. Snapshots
// are never taken for files that did not exist, and they are never read
// back by mcpmerge. Recovery is a manual copy by the operator.
//
// Each [Record] carries a SHA256 hash of the snapshot so [Verify] can
// confirm the file on disk still matches.
package backup
