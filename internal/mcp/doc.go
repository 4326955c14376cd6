// Package mcp installs named server entries into JSON configuration files.
//
// A configuration file is a JSON object. The reserved key "mcpServers"
// maps server names to arbitrary JSON values; every other top-level key is
// owned by someone else and is carried through a merge byte-for-byte.
//
// The Merger performs one install:
//
//	m := mcp.NewMerger(mcp.WithLogger(logger))
//	res, err := m.Merge(ctx, mcp.Request{
//		Path:  "~/.config/app/settings.json",
//		Name:  "fcm-rag",
//		Entry: `{"command":"node","args":["server.js"]}`,
//	})
//
// An existing file that does not parse is never modified and never backed
// up; the error is marked with apperrors.ErrCorruptConfigFile. An existing file
// that does parse is copied verbatim to "<path>.bak" before it is replaced.
// The replacement is written to a temporary file in the same directory and
// renamed over the target.
package mcp
