package rag

import (
	"bytes"
	"encoding/json"
)

// Indent re-renders a JSON answer with 2-space indentation for display.
func Indent(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
