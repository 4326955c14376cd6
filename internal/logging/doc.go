// Package logging provides structured logging for the mcpmerge CLI using slog.
//
// The package supports a colorized text format for terminals and a JSON
// format for machine consumption, configurable log levels including
// [LevelTrace], and helpers for testing. All loggers are based on the
// standard library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("config written", "path", path)
//
// Attribute values under credential-looking keys, values with known token
// prefixes, and passwords embedded in URLs are masked by the text handler.
//
// # Context
//
// Commands store their logger with [NewContext]; library code retrieves it
// with [FromContext], which falls back to slog.Default().
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
