// Package commands implements the CLI commands for mcpmerge.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpmerge/cmd"
	"github.com/thoreinstein/mcpmerge/internal/config"
	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
	"github.com/thoreinstein/mcpmerge/internal/logging"
)

// usageLine is printed whenever the positional arguments are wrong.
const usageLine = "Usage: mcpmerge [flags] <config-path> <name> <entry-json>"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// cfg is the loaded tool configuration; configLoadErr holds any error from
// loading it, reported only by commands that need it.
var (
	cfg           *config.Config
	configLoadErr error
)

// logCloser closes the --log-file handle once the command finishes.
var logCloser io.Closer

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"append logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"tool config file (default: $XDG_CONFIG_HOME/mcpmerge/config.yaml)")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"print the merged document instead of writing it")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpmerge version {{.Version}}\n")

	// Errors and usage are printed by main so the exit code stays in one place.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "mcpmerge [flags] <config-path> <name> <entry-json>",
	Short: "Safely install an MCP server entry into a JSON config file",
	Long: `mcpmerge installs a single named entry under "mcpServers" in a JSON
configuration file, leaving every other key untouched.

  - If the file does not exist it is created, along with any missing
    parent directories.
  - If the file exists and is valid JSON, its exact contents are first
    copied to <config-path>.bak, then the entry is merged in.
  - If the file exists but is not valid JSON, nothing is changed and no
    backup is made. Fix the file by hand and re-run.

An entry with the same name is replaced wholesale. The file is rewritten
with two-space indentation and its keys in sorted order, so the original
key order and formatting are not kept (the .bak copy keeps them).

A target whose path is exactly a subcommand name (config, doctor, query,
serve, version, help) must be written with a directory prefix such as
./config. An entry that starts with "-", such as -1, must follow "--" so it
is not read as a flag.`,
	Example: `  # Register a server in Claude's config
  mcpmerge ~/.claude.json fcm-rag '{"command":"node","args":["server.js"]}'

  # Preview the result without writing anything
  mcpmerge --dry-run ./config.json fcm-rag '{"command":"node"}'

  # Entries that look like flags go after --
  mcpmerge -- ./config.json retries -1

  See Also: mcpmerge query, mcpmerge config show`,
	Args: exactPositionalArgs(3),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeLogFile()
	},
	RunE: runMerge,
}

// exactPositionalArgs rejects any other argument count with a usage error.
// It runs before flags are acted on and before anything is parsed.
func exactPositionalArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		return apperrors.NewUserError(errors.Mark(errors.Newf("expected %d arguments, got %d", n, len(args)), apperrors.ErrUsage), "")
	}
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return apperrors.NewUserError(errors.Mark(errors.New("cannot use --quiet and --verbose together"), apperrors.ErrUsage), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("MCPMERGE_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handlers := []slog.Handler{logging.NewFormatHandler(cmd.ErrOrStderr(), logging.Format(logFormat), opts)}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return apperrors.NewSystemError(errors.Mark(errors.Wrap(err, "opening log file"), apperrors.ErrFilesystem), "check that the --log-file directory exists")
		}
		logCloser = f
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func closeLogFile() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return errors.Wrap(err, "closing log file")
}

// loadedConfig returns the tool configuration, or a config error suitable
// for returning from RunE.
func loadedConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, apperrors.NewConfigError(configLoadErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// PrintError writes err to w in the CLI's diagnostic format. Usage errors
// are followed by the usage line.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, apperrors.ErrUsage) {
		fmt.Fprintln(w, usageLine)
	}

	var exitErr *apperrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "Suggestion: %s\n", exitErr.Suggestion)
	}
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if closeErr := closeLogFile(); err == nil {
		err = closeErr
	}
	return err
}
