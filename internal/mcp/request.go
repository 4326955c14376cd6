package mcp

import (
	"strings"

	"github.com/cockroachdb/errors"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
)

// Request holds the parameters of one merge.
type Request struct {
	// Path is the configuration file to create or update. A leading "~"
	// is expanded to the home directory.
	Path string

	// Name is the key the entry is stored under in ServersKey.
	Name string

	// Entry is the JSON-encoded value to install.
	Entry string

	// DryRun computes the merged document without writing anything.
	DryRun bool
}

// Validate checks that all required parameters are present. It never
// touches the filesystem and does not parse Entry.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Path) == "" {
		missing = append(missing, "config path")
	}
	if r.Name == "" {
		missing = append(missing, "entry name")
	}
	if r.Entry == "" {
		missing = append(missing, "entry JSON")
	}
	if len(missing) == 0 {
		return nil
	}

	err := errors.Newf("missing %s", strings.Join(missing, ", "))
	if r.Name == "" {
		err = errors.Mark(err, apperrors.ErrMissingName)
	}
	return errors.Mark(err, apperrors.ErrUsage)
}
