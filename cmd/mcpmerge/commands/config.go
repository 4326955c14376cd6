package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect mcpmerge configuration",
	Long: `Inspect the tool configuration read from --config or
$XDG_CONFIG_HOME/mcpmerge/config.yaml, after MCPMERGE_* environment
overrides are applied.

Without a subcommand, shows the effective configuration.`,
	Example: `  # Show the effective configuration
  mcpmerge config

  # Show it with a specific file
  mcpmerge --config ./ci.yaml config show

See Also: mcpmerge query`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the effective configuration in YAML format, with the file it was read from.`,
	Example: `  # Show configuration
  mcpmerge config show

See Also: mcpmerge config`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# %s\n", used)
	} else {
		fmt.Fprintln(out, "# defaults (no config file found)")
	}
	fmt.Fprint(out, string(data))
	return nil
}
