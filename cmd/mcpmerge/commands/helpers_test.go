package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpmerge/internal/config"
)

// resetState restores package-level flag values and isolates viper from
// any config file or environment on the host.
func resetState(t *testing.T) {
	t.Helper()

	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	configFile = ""
	dryRun = false
	queryURL = ""
	queryTopK = 0
	cfg = nil
	configLoadErr = nil

	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	for _, key := range []string{config.LegacyQueryURLEnv, config.EnvPrefix + "_QUERY_URL", "MCPMERGE_DEBUG"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// execute runs the root command with args in an empty working directory
// and captures its output.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetState(t)
	return run(t, stdin, args)
}

// executeIn is execute with dir as the working directory.
func executeIn(t *testing.T, dir, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetState(t)
	t.Chdir(dir)
	return run(t, stdin, args)
}

func run(t *testing.T, stdin string, args []string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err = Execute()
	if err != nil {
		PrintError(&errOut, err)
	}
	return out.String(), errOut.String(), err
}
