// Package cmd holds mcpmerge build metadata, injected at link time:
//
//	go build -ldflags "-X github.com/thoreinstein/mcpmerge/cmd.Version=v1.2.0 \
//	    -X github.com/thoreinstein/mcpmerge/cmd.Commit=$(git rev-parse --short HEAD)"
package cmd

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
