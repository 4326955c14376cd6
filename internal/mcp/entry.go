package mcp

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
)

// ParseEntry validates s as a single JSON value and returns it verbatim.
// Errors carry the decoder's diagnostic and, for syntax errors, the byte
// offset where decoding stopped.
func ParseEntry(s string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			err = errors.Wrapf(err, "at offset %d", syntaxErr.Offset)
		}
		return nil, errors.Mark(errors.Wrap(err, "invalid entry JSON"), apperrors.ErrInvalidEntryPayload)
	}
	return raw, nil
}

// IsObject reports whether raw holds a JSON object.
func IsObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
