package doctor

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mcpmerge/internal/backup"
	"github.com/thoreinstein/mcpmerge/internal/logging"
	"github.com/thoreinstein/mcpmerge/internal/mcp"
	"github.com/thoreinstein/mcpmerge/pkg/fileutil"
)

// maxSecureFilePerm is the loosest permission not flagged (-rw-r--r--).
const maxSecureFilePerm fs.FileMode = 0o644

// Target is a configuration file read once and shared by the checks.
type Target struct {
	Path    string
	Data    []byte
	Info    fs.FileInfo
	ReadErr error
}

// Exists reports whether the file was found.
func (t *Target) Exists() bool {
	return t.ReadErr == nil
}

// Missing reports whether the file does not exist. A missing file is not a
// problem: a merge creates it.
func (t *Target) Missing() bool {
	return errors.Is(t.ReadErr, fs.ErrNotExist)
}

// LoadTarget reads path for inspection. Read failures are recorded on the
// Target rather than returned, so every check can report on them.
func LoadTarget(path string) *Target {
	data, info, err := fileutil.ReadFileInfo(path)
	return &Target{Path: path, Data: data, Info: info, ReadErr: err}
}

// DefaultChecks returns the checks run by `mcpmerge doctor`, in order.
func DefaultChecks(t *Target) []Check {
	return []Check{
		&FileCheck{target: t},
		&SyntaxCheck{target: t},
		&ServersCheck{target: t},
		&BackupCheck{target: t},
	}
}

// FileCheck validates that the target is a readable regular file with
// sensible permissions, and that its directory exists or can be created.
type FileCheck struct {
	target *Target
}

var _ Check = (*FileCheck)(nil)

func (c *FileCheck) Name() string     { return "config-file" }
func (c *FileCheck) Category() string { return "filesystem" }

func (c *FileCheck) Run() *CheckResult {
	t := c.target
	if t.Missing() {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "file does not exist; it will be created on first merge",
			Details: map[string]any{"parent": nearestExistingDir(filepath.Dir(t.Path))},
		}
	}
	if t.ReadErr != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot read file: %v", t.ReadErr),
			FixHint: "check the path and its permissions",
		}
	}

	perm := t.Info.Mode().Perm()
	details := map[string]any{
		"size":        t.Info.Size(),
		"permissions": fmt.Sprintf("%04o", perm),
	}
	if perm&^maxSecureFilePerm != 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("permissions %04o are broader than %04o", perm, maxSecureFilePerm),
			Details: details,
			FixHint: fmt.Sprintf("chmod 644 %s", t.Path),
		}
	}
	return &CheckResult{Status: SeverityPass, Message: "file is readable", Details: details}
}

// nearestExistingDir walks up from dir until it finds a directory that
// exists, which is where a merge would start creating directories.
func nearestExistingDir(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// SyntaxCheck validates that the target parses as a JSON object. A file
// failing this check is refused by a merge.
type SyntaxCheck struct {
	target *Target
}

var _ Check = (*SyntaxCheck)(nil)

func (c *SyntaxCheck) Name() string     { return "json-syntax" }
func (c *SyntaxCheck) Category() string { return "config" }

func (c *SyntaxCheck) Run() *CheckResult {
	t := c.target
	if !t.Exists() {
		return &CheckResult{Status: SeverityPass, Message: "nothing to parse"}
	}
	doc, err := mcp.ParseDocument(t.Data)
	if err != nil {
		details := map[string]any{}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			details["offset"] = syntaxErr.Offset
		}
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("not a JSON object: %v", err),
			Details: details,
			FixHint: "fix the JSON manually; mcpmerge will not modify this file until it parses",
		}
	}
	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("valid JSON object with %d top-level key(s)", len(doc)),
	}
}

// ServersCheck inspects the mcpServers collection: it must be an object and
// each entry should say how to reach the server.
type ServersCheck struct {
	target *Target
}

var _ Check = (*ServersCheck)(nil)

func (c *ServersCheck) Name() string     { return "mcp-servers" }
func (c *ServersCheck) Category() string { return "mcp" }

// serverEntry is the subset of an entry the check looks at.
type serverEntry struct {
	Command string            `json:"command"`
	URL     string            `json:"url"`
	Env     map[string]string `json:"env"`
}

func (c *ServersCheck) Run() *CheckResult {
	t := c.target
	if !t.Exists() {
		return &CheckResult{Status: SeverityPass, Message: "no servers configured"}
	}
	doc, err := mcp.ParseDocument(t.Data)
	if err != nil {
		return &CheckResult{Status: SeverityPass, Message: "skipped: file does not parse"}
	}

	if _, present := doc[mcp.ServersKey]; !present {
		return &CheckResult{Status: SeverityPass, Message: "no " + mcp.ServersKey + " key; it will be created"}
	}
	servers, ok := doc.Servers()
	if !ok {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: mcp.ServersKey + " is not an object and will be replaced on the next merge",
			FixHint: "move any data under " + mcp.ServersKey + " elsewhere before merging",
		}
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var incomplete []string
	entries := make(map[string]any, len(servers))
	for _, name := range names {
		var e serverEntry
		if !mcp.IsObject(servers[name]) || json.Unmarshal(servers[name], &e) != nil {
			incomplete = append(incomplete, name)
			entries[name] = "(not an object)"
			continue
		}
		if e.Command == "" && e.URL == "" {
			incomplete = append(incomplete, name)
		}
		entries[name] = describeEntry(e)
	}

	details := map[string]any{"servers": entries}
	if len(incomplete) > 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%d of %d server(s) have neither command nor url: %v", len(incomplete), len(names), incomplete),
			Details: details,
			FixHint: "re-run mcpmerge with a complete entry for each name listed",
		}
	}
	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d server(s) configured", len(names)),
		Details: details,
	}
}

// describeEntry summarizes an entry for display with env secrets masked.
func describeEntry(e serverEntry) map[string]any {
	d := map[string]any{}
	if e.Command != "" {
		d["command"] = e.Command
	}
	if e.URL != "" {
		d["url"] = logging.MaskURL(e.URL)
	}
	if len(e.Env) > 0 {
		env := make(map[string]string, len(e.Env))
		for k, v := range e.Env {
			if logging.ShouldMask(k) || logging.ContainsTokenPrefix(v) {
				v = logging.MaskValue(v)
			}
			env[k] = v
		}
		d["env"] = env
	}
	return d
}

// BackupCheck reports on the sibling backup left by the last merge.
type BackupCheck struct {
	target *Target
}

var _ Check = (*BackupCheck)(nil)

func (c *BackupCheck) Name() string     { return "backup" }
func (c *BackupCheck) Category() string { return "backup" }

func (c *BackupCheck) Run() *CheckResult {
	path := backup.PathFor(c.target.Path, "")
	data, info, err := fileutil.ReadFileInfo(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &CheckResult{Status: SeverityPass, Message: "no backup present"}
		}
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("cannot read backup: %v", err),
			Details: map[string]any{"path": path},
		}
	}

	details := map[string]any{
		"path":     path,
		"size":     info.Size(),
		"modified": info.ModTime().UTC(),
	}
	if _, err := mcp.ParseDocument(data); err != nil {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "backup is not a valid JSON object and cannot be used for recovery",
			Details: details,
		}
	}
	return &CheckResult{Status: SeverityInfo, Message: "backup available for manual recovery", Details: details}
}
