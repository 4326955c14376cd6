package config

import (
	"net/url"

	"github.com/cockroachdb/errors"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidFileMode indicates file_mode is not an octal permission.
	ErrInvalidFileMode = errors.New("invalid file mode")

	// ErrInvalidURL indicates query.url is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid query url")

	// ErrInvalidTopK indicates query.top_k is not positive.
	ErrInvalidTopK = errors.New("query.top_k must be > 0")

	// ErrInvalidTimeout indicates query.timeout is not positive.
	ErrInvalidTimeout = errors.New("query.timeout must be > 0")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if _, err := ParseFileMode(cfg.FileMode); err != nil {
		errs = append(errs, &FieldError{Field: "file_mode", Value: cfg.FileMode, Err: err})
	}

	if err := ValidateURL(cfg.Query.URL); err != nil {
		errs = append(errs, &FieldError{Field: "query.url", Value: cfg.Query.URL, Err: err})
	}

	if cfg.Query.TopK <= 0 {
		errs = append(errs, ErrInvalidTopK)
	}

	if cfg.Query.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}

	return errs
}

// ValidateURL checks that raw is an absolute http or https URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Mark(err, ErrInvalidURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// FieldError represents an error for a specific configuration field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
