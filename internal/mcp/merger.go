package mcp

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mcpmerge/internal/backup"
	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/logging"
	"github.com/thoreinstein/mcpmerge/internal/paths"
	"github.com/thoreinstein/mcpmerge/pkg/fileutil"
)

// DefaultDirPerm is used for parent directories created for a new file.
const DefaultDirPerm fs.FileMode = 0o755

// CorruptFileError reports an existing config file that cannot be parsed
// as a JSON object. When it is returned the file was not modified and no
// backup was written.
type CorruptFileError struct {
	Path string
	Err  error
}

func (e *CorruptFileError) Error() string {
	return "config file contains invalid JSON and cannot be safely updated: " + e.Path +
		": " + e.Err.Error() +
		" (no changes were made; fix the JSON manually, then re-run)"
}

func (e *CorruptFileError) Unwrap() error {
	return e.Err
}

// Result describes a completed merge.
type Result struct {
	// Path is the file that was (or, for a dry run, would be) written.
	Path string

	// Backup is the snapshot taken before the write. Nil when the file did
	// not exist beforehand or for a dry run.
	Backup *backup.Record

	// Created is true when the file did not exist before the merge.
	Created bool

	// Change describes the effect on the server collection.
	Change Change

	// Document is the serialized merged document.
	Document []byte

	// DryRun mirrors the request; nothing was written when true.
	DryRun bool
}

// Merger installs named entries into JSON configuration files.
//
// A Merger holds no per-call state and may be reused. It assumes exclusive
// access to the target for the duration of Merge: concurrent merges into
// the same file are not coordinated and one update may be lost, although
// the atomic rename means the file is always one complete version.
type Merger struct {
	logger       *slog.Logger
	fileMode     fs.FileMode
	dirPerm      fs.FileMode
	backupSuffix string
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger. Without it the logger is taken from the
// context passed to Merge.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// WithFileMode sets the permissions for files that did not exist before.
// Existing files keep their own permissions.
func WithFileMode(mode fs.FileMode) Option {
	return func(m *Merger) {
		if mode != 0 {
			m.fileMode = mode.Perm()
		}
	}
}

// WithBackupSuffix overrides backup.Suffix.
func WithBackupSuffix(suffix string) Option {
	return func(m *Merger) {
		if suffix != "" {
			m.backupSuffix = suffix
		}
	}
}

// NewMerger creates a Merger with the given options.
func NewMerger(opts ...Option) *Merger {
	m := &Merger{
		fileMode:     fileutil.DefaultFilePerm,
		dirPerm:      DefaultDirPerm,
		backupSuffix: backup.Suffix,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge installs req.Entry under mcpServers[req.Name] in the file at req.Path.
//
// The steps run strictly in order and each is a terminal failure point:
//
//  1. The entry is parsed. Failure is ErrInvalidEntryPayload and happens
//     before any filesystem access.
//  2. The file is read. A missing file starts from an empty document. A
//     file that is not a JSON object fails with ErrCorruptConfigFile and is
//     left untouched, with no backup.
//  3. The entry is set in memory and the document serialized.
//  4. For an existing file, its exact bytes are written to the backup path
//     and read back against their hash. The target is not touched unless
//     the backup verifies.
//  5. Parent directories are created and the document is written via a
//     temp file and rename.
//
// I/O failures are marked with ErrFilesystem.
func (m *Merger) Merge(ctx context.Context, req Request) (*Result, error) {
	logger := m.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := ParseEntry(req.Entry)
	if err != nil {
		return nil, err
	}
	if !IsObject(entry) {
		logger.Warn("entry is not a JSON object; installing as given", "name", req.Name)
	}
	logger.Debug("parsed entry", "name", req.Name, "bytes", len(entry))

	target, err := paths.Clean(req.Path)
	if err != nil {
		return nil, errors.Mark(err, apperrors.ErrUsage)
	}
	target, err = resolveTarget(target)
	if err != nil {
		return nil, err
	}

	doc, raw, info, err := m.load(target)
	if err != nil {
		return nil, err
	}
	created := info == nil
	logger.Debug("loaded config", "path", target, "exists", !created, "keys", len(doc))

	change, err := doc.SetServer(req.Name, entry)
	if err != nil {
		return nil, err
	}
	if change.ResetCollection {
		logger.Warn("existing "+ServersKey+" value was not an object and has been replaced",
			"path", target)
	}

	out, err := doc.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "serializing merged config")
	}

	result := &Result{
		Path:     target,
		Created:  created,
		Change:   change,
		Document: out,
		DryRun:   req.DryRun,
	}
	if req.DryRun {
		logger.Debug("dry run; nothing written", "path", target)
		return result, nil
	}

	mode := m.fileMode
	if !created {
		mode = info.Mode().Perm()
		rec, err := backup.Snapshot(target, raw, mode, m.backupSuffix)
		if err != nil {
			return nil, errors.Mark(err, apperrors.ErrFilesystem)
		}
		if err := backup.Verify(rec); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "verifying backup before write"), apperrors.ErrFilesystem)
		}
		result.Backup = rec
		logger.Info("backup written", "path", rec.Path, "bytes", rec.Size, "sha256", rec.SHA256Hash)
	}

	if err := paths.EnsureParentDir(target, m.dirPerm); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "creating directory for %s", target), apperrors.ErrFilesystem)
	}

	if err := fileutil.AtomicWriteFile(target, out, mode); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "writing %s", target), apperrors.ErrFilesystem)
	}

	logger.Info("config written", "path", target, "name", req.Name,
		"created", created, "replaced", change.Replaced)

	return result, nil
}

// load reads and parses target. A nil info means the file does not exist.
func (m *Merger) load(target string) (Document, []byte, fs.FileInfo, error) {
	raw, info, err := fileutil.ReadFileInfo(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument(), nil, nil, nil
		}
		return nil, nil, nil, errors.Mark(errors.Wrapf(err, "reading %s", target), apperrors.ErrFilesystem)
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, nil, nil, errors.Mark(&CorruptFileError{Path: target, Err: err}, apperrors.ErrCorruptConfigFile)
	}

	return doc, raw, info, nil
}

// resolveTarget follows a symlink at target so the rename replaces the
// linked file rather than the link itself.
func resolveTarget(target string) (string, error) {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return target, nil
	}
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Dangling link: create the file it points at.
			dest, readErr := os.Readlink(target)
			if readErr != nil {
				return "", errors.Mark(errors.Wrapf(readErr, "reading link %s", target), apperrors.ErrFilesystem)
			}
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(target), dest)
			}
			return filepath.Clean(dest), nil
		}
		return "", errors.Mark(errors.Wrapf(err, "resolving %s", target), apperrors.ErrFilesystem)
	}
	return resolved, nil
}
