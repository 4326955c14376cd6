// Package config provides configuration management for mcpmerge using Viper.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/paths"
)

// EnvPrefix is the prefix for environment variable overrides (MCPMERGE_QUERY_URL, ...).
const EnvPrefix = "MCPMERGE"

// Defaults.
const (
	DefaultQueryURL     = "http://localhost:3000/query"
	DefaultTopK         = 5
	DefaultQueryTimeout = 30 * time.Second
	DefaultFileMode     = "0644"
)

// LegacyQueryURLEnv is honoured as a fallback for query.url; MCP server
// entries installed by this tool commonly set it in their env block.
const LegacyQueryURLEnv = "FCM_RAG_URL"

// Config represents the top-level configuration structure.
type Config struct {
	Version  int    `mapstructure:"version" yaml:"version"`
	FileMode string `mapstructure:"file_mode" yaml:"file_mode"`
	Query    Query  `mapstructure:"query" yaml:"query"`
}

// Query configures the knowledge-base endpoint used by `mcpmerge query`.
type Query struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	TopK    int           `mapstructure:"top_k" yaml:"top_k"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// FileName is the tool config file looked up in paths.AppConfigDir.
//
// The lookup is by exact name in that one directory. Viper's extension
// search would also match config.json, the usual name of the files this
// tool edits.
const FileName = "config.yaml"

// DefaultPath returns the implicit config file location.
func DefaultPath() string {
	return filepath.Join(paths.AppConfigDir(), FileName)
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("query.url", EnvPrefix+"_QUERY_URL", LegacyQueryURLEnv)

	viper.SetDefault("version", 1)
	viper.SetDefault("file_mode", DefaultFileMode)
	viper.SetDefault("query.url", DefaultQueryURL)
	viper.SetDefault("query.top_k", DefaultTopK)
	viper.SetDefault("query.timeout", DefaultQueryTimeout)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, it reads DefaultPath when that file exists
// and otherwise falls back to defaults and environment overrides.
// The current directory is never searched.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrapf(errs[0], "validating config (%d problem(s))", len(errs)), apperrors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Version:  1,
		FileMode: DefaultFileMode,
		Query: Query{
			URL:     DefaultQueryURL,
			TopK:    DefaultTopK,
			Timeout: DefaultQueryTimeout,
		},
	}
}

// ParseFileMode parses an octal permission string such as "0644" or "600".
func ParseFileMode(s string) (uint32, error) {
	mode, err := strconv.ParseUint(strings.TrimSpace(s), 8, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidFileMode, "%q", s)
	}
	if mode > 0o777 {
		return 0, errors.Wrapf(ErrInvalidFileMode, "%q exceeds 0777", s)
	}
	return uint32(mode), nil
}
