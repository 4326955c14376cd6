package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mcpmerge/pkg/fileutil"
)

// Suffix is appended to a target path to form its backup path.
const Suffix = ".bak"

// ErrBackupCorrupted indicates a backup no longer matches the bytes it was
// taken from.
var ErrBackupCorrupted = errors.New("backup corrupted")

// Record describes a backup that was written.
type Record struct {
	// Source is the file the snapshot was taken from.
	Source string

	// Path is where the snapshot was written.
	Path string

	// Size is the number of bytes written.
	Size int64

	// SHA256Hash is the hex-encoded SHA256 hash of the snapshot contents.
	SHA256Hash string

	// Mode is the permission applied to the snapshot (same as the source).
	Mode fs.FileMode

	// CreatedAt is when the snapshot was written.
	CreatedAt time.Time
}

// PathFor returns the backup path for target. An empty suffix means Suffix.
func PathFor(target, suffix string) string {
	if suffix == "" {
		suffix = Suffix
	}
	return target + suffix
}

// Snapshot writes data, the bytes just read from target, to the sibling
// backup path. Any previous backup at that path is replaced. The write is
// atomic, so a failed snapshot never leaves a truncated backup behind.
//
// Passing the bytes rather than re-reading target guarantees the backup is
// identical to what the caller parsed.
func Snapshot(target string, data []byte, mode fs.FileMode, suffix string) (*Record, error) {
	if target == "" {
		return nil, errors.New("backup target is required")
	}
	if mode == 0 {
		mode = fileutil.DefaultFilePerm
	}

	path := PathFor(target, suffix)
	if err := fileutil.AtomicWriteFile(path, data, mode.Perm()); err != nil {
		return nil, errors.Wrapf(err, "writing backup %s", path)
	}

	return &Record{
		Source:     target,
		Path:       path,
		Size:       int64(len(data)),
		SHA256Hash: hashBytes(data),
		Mode:       mode.Perm(),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Verify re-reads the snapshot and checks it against the recorded hash.
// The merger calls it before replacing the target. Returns
// ErrBackupCorrupted on mismatch.
func Verify(rec *Record) error {
	if rec == nil {
		return errors.New("backup record is nil")
	}
	data, err := fileutil.ReadFileWithLimit(rec.Path)
	if err != nil {
		return errors.Wrapf(err, "reading backup %s", rec.Path)
	}
	if int64(len(data)) != rec.Size || hashBytes(data) != rec.SHA256Hash {
		return errors.Wrapf(ErrBackupCorrupted, "%s hash mismatch", rec.Path)
	}
	return nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
