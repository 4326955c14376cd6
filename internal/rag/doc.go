// Package rag relays questions to a retrieval-augmented knowledge service.
//
// Client POSTs {"question": ..., "topK": ...} to a configured URL and
// returns the JSON answer unchanged. Server exposes the same relay as a
// single MCP tool, built on the official MCP Go SDK and served over stdio.
// That server is what the config entries installed by mcpmerge typically
// launch.
//
// Nothing in this package touches configuration files.
package rag
