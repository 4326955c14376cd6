package mcp

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/pkg/fileutil"
)

// ServersKey is the reserved top-level key holding named server entries.
const ServersKey = "mcpServers"

// ErrNotObject indicates a JSON document whose top-level value is not an object.
var ErrNotObject = errors.New("top-level JSON value is not an object")

// Document is a configuration file held as raw JSON per top-level key.
// Values other than ServersKey are never decoded, so they round-trip
// without loss (number precision, string escapes, nested key order).
type Document map[string]json.RawMessage

// Change reports what SetServer did to a Document.
type Change struct {
	// Replaced is true when an entry with the same name already existed.
	Replaced bool

	// ResetCollection is true when ServersKey held something other than an
	// object and was replaced with a fresh one.
	ResetCollection bool
}

// NewDocument returns an empty document, the starting point for files that
// do not exist yet.
func NewDocument() Document {
	return Document{}
}

// ParseDocument decodes data as a JSON object.
// Arrays, scalars and null are rejected with ErrNotObject.
func ParseDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			var v any
			return nil, json.Unmarshal(trimmed, &v)
		}
		return nil, ErrNotObject
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotObject
	}
	return doc, nil
}

// Servers returns the decoded ServersKey collection.
// ok is false when the key is absent or does not hold a JSON object.
func (d Document) Servers() (servers map[string]json.RawMessage, ok bool) {
	raw, found := d[ServersKey]
	if !found {
		return nil, false
	}
	if err := json.Unmarshal(raw, &servers); err != nil || servers == nil {
		return nil, false
	}
	return servers, true
}

// Server returns the raw entry stored under name.
func (d Document) Server(name string) (json.RawMessage, bool) {
	servers, ok := d.Servers()
	if !ok {
		return nil, false
	}
	entry, ok := servers[name]
	return entry, ok
}

// SetServer installs entry under ServersKey[name], replacing any previous
// value for name. Other entries in the collection and all other top-level
// keys are left untouched.
func (d Document) SetServer(name string, entry json.RawMessage) (Change, error) {
	var change Change
	if name == "" {
		return change, apperrors.ErrMissingName
	}
	if !json.Valid(entry) {
		return change, errors.Wrapf(apperrors.ErrInvalidEntryPayload, "entry for %q", name)
	}

	servers, ok := d.Servers()
	if !ok {
		_, change.ResetCollection = d[ServersKey]
		servers = make(map[string]json.RawMessage, 1)
	}

	_, change.Replaced = servers[name]
	servers[name] = entry

	raw, err := encodeCompact(servers)
	if err != nil {
		return Change{}, errors.Wrap(err, "encoding server collection")
	}
	d[ServersKey] = raw

	return change, nil
}

// Marshal renders the document with 2-space indentation and a trailing
// newline. Keys are emitted in sorted order.
func (d Document) Marshal() ([]byte, error) {
	return fileutil.MarshalJSON(d)
}

// encodeCompact is json.Marshal without HTML escaping, so entries such as
// "cmd && other" are stored as written rather than as \u0026 escapes.
func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
