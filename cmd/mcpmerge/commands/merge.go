package commands

import (
	"fmt"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpmerge/internal/config"
	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/logging"
	"github.com/thoreinstein/mcpmerge/internal/mcp"
)

// dryRun holds the value of the --dry-run flag.
var dryRun bool

func runMerge(cmd *cobra.Command, args []string) error {
	req := mcp.Request{
		Path:   args[0],
		Name:   args[1],
		Entry:  args[2],
		DryRun: dryRun,
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewUserError(err, "")
	}

	c, err := loadedConfig()
	if err != nil {
		return err
	}
	mode, err := config.ParseFileMode(c.FileMode)
	if err != nil {
		return apperrors.NewConfigError(err)
	}

	merger := mcp.NewMerger(
		mcp.WithLogger(logging.FromContext(cmd.Context())),
		mcp.WithFileMode(fs.FileMode(mode)),
	)

	res, err := merger.Merge(cmd.Context(), req)
	if err != nil {
		return mergeError(err)
	}

	out := cmd.OutOrStdout()
	if res.DryRun {
		_, err := out.Write(res.Document)
		return errors.Wrap(err, "writing dry-run output")
	}

	if quiet {
		return nil
	}
	verb := "Added"
	if res.Change.Replaced {
		verb = "Updated"
	}
	fmt.Fprintf(out, "%s %q in %s\n", verb, req.Name, res.Path)
	if res.Backup != nil {
		fmt.Fprintf(out, "Backup: %s\n", res.Backup.Path)
	}
	return nil
}

// mergeError attaches the exit code and operator guidance for err.
func mergeError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrCorruptConfigFile):
		var corrupt *mcp.CorruptFileError
		path := "the file"
		if errors.As(err, &corrupt) {
			path = corrupt.Path
		}
		return apperrors.NewUserError(err, fmt.Sprintf("No changes were made. Fix the JSON in %s manually, then re-run.", path))
	case errors.Is(err, apperrors.ErrInvalidEntryPayload):
		return apperrors.NewUserError(err, "The entry argument must be a single JSON value; quote it for your shell.")
	case errors.Is(err, apperrors.ErrFilesystem):
		return apperrors.NewSystemError(err, "Check that the path is writable and the disk is not full.")
	default:
		return apperrors.NewUserError(err, "")
	}
}
