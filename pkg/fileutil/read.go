package fileutil

import (
	"io"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
)

// MaxFileSize is the largest file ReadFileWithLimit will load (16MB).
// Tool config files grow with history and project state, so the bound is
// generous; it only guards against reading something that is clearly not
// a config file.
const MaxFileSize = 16 * 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	data, _, err := ReadFileInfo(path)
	return data, err
}

// ReadFileInfo reads a file up to MaxFileSize and returns its contents with
// the file info observed on the open handle. The handle is closed before
// returning on every path.
func ReadFileInfo(path string) ([]byte, fs.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Wrap(err, "stat file")
	}
	if info.IsDir() {
		return nil, nil, errors.Newf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, nil, ErrFileTooLarge
	}

	return data, info, nil
}
