// Package errors provides error handling conventions for the mcpmerge CLI.
//
// This package defines sentinel errors for the failure classes the merge
// operation can report, an ExitError type for CLI exit code handling, and
// exit code constants following standard Unix conventions. Wrapping and
// inspection use github.com/cockroachdb/errors directly.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using errors.Is:
//
//	if errors.Is(err, apperrors.ErrCorruptConfigFile) {
//	    // nothing was written; tell the operator to fix the file
//	}
//
// Causes are attached to a sentinel with errors.Mark, which keeps the original
// message intact while making the sentinel matchable.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Usage, payload, or config file content error
//   - ExitSystem (2): I/O, network, or permission error
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. [ExitCode] resolves the code for any error chain.
package errors
